// cmd/wesum/scheduler.go
package main

import (
	"context"

	"github.com/robfig/cron/v3"
)

// StartScheduler runs the pipeline on the configured cron schedule and
// returns the started cron instance so the caller can stop it on shutdown.
func StartScheduler(ctx context.Context, cfg *Config, run func(context.Context)) (*cron.Cron, error) {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		defer RecoverFromPanic("scheduled run")
		run(ctx)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	Log().Infof("scheduler started with schedule %q", schedule)
	return c, nil
}
