// cmd/wesum/pipeline.go
package main

import (
	"context"
	"fmt"
	"time"
)

// Pipeline runs one complete digest cycle: collect, classify, summarize,
// compose, deliver, persist. Everything is sequential; the only suspension
// points are the network calls.
type Pipeline struct {
	cfg        *Config
	sources    []Source
	seen       *SeenStore
	collector  *Collector
	classifier Classifier
	summarizer *Summarizer
	notifier   *Notifier
	now        func() time.Time
}

// NewPipeline validates configuration, loads sources and the seen store,
// and wires the stages. Configuration errors here are fatal before any
// network activity happens.
func NewPipeline(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sources, err := LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}

	seen := NewSeenStore(cfg.SeenFile)
	if err := seen.Load(); err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		sources:    EnabledSources(sources),
		seen:       seen,
		collector:  NewCollector(cfg, seen),
		classifier: NewClassifier(cfg.Classifier),
		summarizer: NewSummarizer(cfg),
		notifier:   NewNotifier(cfg),
		now:        time.Now,
	}, nil
}

// Run executes one cycle and returns its report. A delivery failure is
// returned as an error and leaves the seen store untouched, so the same
// articles are retried verbatim on the next run (at-least-once delivery).
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{StartedAt: p.now()}
	defer func() {
		report.FinishedAt = p.now()
		RecordRun(report)
	}()

	Log().Infof("[Step 1] Fetching new articles from %d sources...", len(p.sources))
	articles := p.collector.CollectAll(ctx, p.sources)
	report.Candidates = len(articles)

	if len(articles) == 0 {
		return report, p.handleEmptyRun(ctx, report)
	}
	Log().Infof("Found %d new articles", len(articles))

	Log().Infof("[Step 2] Classifying articles...")
	for i := range articles {
		ClassifyArticle(p.classifier, &articles[i])
		if articles[i].NoiseLevel != NoiseNone {
			Log().Infof("  %q → %s (%s)", TruncateRunes(articles[i].Title, 30),
				articles[i].NoiseLevel, articles[i].NoiseType)
		}
	}

	Log().Infof("[Step 3] Generating summaries...")
	for i := range articles {
		Log().Infof("  processing %d/%d: %s...", i+1, len(articles),
			TruncateRunes(articles[i].Title, 30))
		p.summarizer.Summarize(ctx, &articles[i])
	}

	Log().Infof("[Step 4] Composing digest...")
	digest := ComposeDigest(p.cfg.Push.TitlePrefix, articles, p.now())
	report.Normal = digest.Stats.Normal
	report.Light = digest.Stats.Light
	report.Noise = digest.Stats.Noise
	report.PR = digest.Stats.PR

	Log().Infof("[Step 5] Delivering digest (%d articles)...", len(articles))
	if !p.notifier.Deliver(ctx, digest) {
		report.Error = "delivery failed"
		return report, fmt.Errorf("digest delivery failed, seen store not updated")
	}
	report.Delivered = true

	links := make([]string, len(articles))
	for i, a := range articles {
		links[i] = a.Link
	}
	added := p.seen.Merge(links)
	if err := p.seen.Save(); err != nil {
		// Delivery succeeded; a failed save means duplicates next run, which
		// at-least-once semantics tolerate. Surface it loudly anyway.
		report.Error = fmt.Sprintf("seen store save failed: %v", err)
		return report, fmt.Errorf("save seen store: %w", err)
	}
	Log().Infof("[Step 6] Done: delivered %d articles, %d new links remembered (%d total)",
		len(articles), added, p.seen.Len())
	return report, nil
}

// handleEmptyRun decides what a run with zero candidates does: inside quiet
// hours nothing is sent at all, outside them a short "no new articles"
// notice goes out.
func (p *Pipeline) handleEmptyRun(ctx context.Context, report *RunReport) error {
	if withinQuietHours(p.now(), p.cfg.QuietHours.Start, p.cfg.QuietHours.End) {
		Log().Infof("No new articles within quiet hours, nothing to send")
		report.Suppressed = true
		return nil
	}
	Log().Infof("No new articles, sending empty notice")
	title, body := ComposeEmptyNotice(p.cfg.Push.TitlePrefix, p.now())
	if !p.notifier.Push(ctx, title, body) {
		report.Error = "empty notice delivery failed"
		return fmt.Errorf("empty notice delivery failed")
	}
	report.Delivered = true
	return nil
}

// withinQuietHours reports whether t falls inside the [start, end) hour
// window. The window may wrap past midnight; start == end disables it.
func withinQuietHours(t time.Time, start, end int) bool {
	if start == end {
		return false
	}
	h := t.Hour()
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
