// cmd/wesum/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (default: "+EnvConfigPath+" or "+DefaultConfigPath+")")
	serve := flag.Bool("serve", false, "run on the configured schedule with a status server instead of once")
	flag.Parse()

	defer RecoverFromPanic("main")

	LoadEnv()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		HandleError("failed to load config", err, "startup", ErrorSeverityFatal)
	}

	if err := SetupLogging(cfg.LogPath, ParseLogLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer CloseLogging()

	SetStatePath(cfg.StateFile)
	if _, err := LoadState(); err != nil {
		HandleError("failed to load state", err, "startup", ErrorSeverityMedium)
	}

	banner()

	pipeline, err := NewPipeline(cfg)
	if err != nil {
		HandleError("startup failed", err, "startup", ErrorSeverityFatal)
	}

	if *serve {
		runServe(cfg, pipeline)
		return
	}
	runOnce(pipeline)
}

// runOnce executes a single pipeline run. Delivery failure exits non-zero
// so a scheduler wrapping the binary can tell the run needs a retry.
func runOnce(pipeline *Pipeline) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := pipeline.Run(ctx)
	printSummary(report)
	if err != nil {
		HandleError("run failed", err, "pipeline", ErrorSeverityFatal)
	}
}

// runServe schedules runs via cron and serves the status API until a
// termination signal arrives.
func runServe(cfg *Config, pipeline *Pipeline) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.StatusPort > 0 {
		StartStatusServer(cfg.StatusPort)
	}

	scheduler, err := StartScheduler(ctx, cfg, func(ctx context.Context) {
		report, err := pipeline.Run(ctx)
		printSummary(report)
		BroadcastReport(report)
		if err != nil {
			HandleError("scheduled run failed", err, "pipeline", ErrorSeverityMedium)
		}
	})
	if err != nil {
		HandleError("failed to start scheduler", err, "startup", ErrorSeverityFatal)
	}
	defer scheduler.Stop()

	Log().Infof("%s is running. Press CTRL-C to exit.", AppName)
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
	Log().Infof("shutting down...")
}

func banner() {
	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Printf("%s v%s - 公众号摘要推送助手\n", AppName, AppVersion)
	fmt.Println(line)
	fmt.Printf("Start time: %s\n", time.Now().Format("2006-01-02 15:04:05"))
}

func printSummary(report *RunReport) {
	if report == nil {
		return
	}
	line := strings.Repeat("=", 60)
	fmt.Println(line)
	switch {
	case report.Suppressed:
		fmt.Println("No new articles (quiet hours, notification suppressed).")
	case report.Candidates == 0:
		fmt.Println("No new articles found.")
	default:
		fmt.Printf("Processed %d articles (normal %d / light %d / noise %d / pr %d), delivered=%t\n",
			report.Candidates, report.Normal, report.Light, report.Noise, report.PR, report.Delivered)
	}
	fmt.Printf("Finished at %s\n", report.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(line)
}
