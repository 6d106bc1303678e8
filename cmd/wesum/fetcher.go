// cmd/wesum/fetcher.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"
)

// Collector retrieves candidate articles from the configured feeds. Sources
// are fetched one at a time; a failing source yields zero articles without
// affecting the others.
type Collector struct {
	client       *http.Client
	parser       *gofeed.Parser
	seen         *SeenStore
	maxAge       time.Duration
	perSourceCap int
	now          func() time.Time
}

// NewCollector wires a collector against the seen store and filter settings.
func NewCollector(cfg *Config, seen *SeenStore) *Collector {
	return &Collector{
		client:       &http.Client{Timeout: RequestTimeout},
		parser:       gofeed.NewParser(),
		seen:         seen,
		maxAge:       time.Duration(cfg.Filters.MaxHours) * time.Hour,
		perSourceCap: cfg.Filters.MaxArticlesPerSource,
		now:          time.Now,
	}
}

// CollectAll gathers candidates from every enabled source. Fetch errors are
// logged per source and do not abort the run.
func (c *Collector) CollectAll(ctx context.Context, sources []Source) []Article {
	var all []Article
	for _, src := range sources {
		articles, err := c.CollectSource(ctx, src)
		if err != nil {
			Log().Warnf("fetch %s failed: %v", src.Name, err)
			RecordError(fmt.Sprintf("fetch %s: %v", src.Name, err))
			continue
		}
		Log().Infof("source %s: %d new articles", src.Name, len(articles))
		all = append(all, articles...)
	}
	return all
}

// CollectSource fetches one feed and returns the entries that pass the time
// window and are not in the seen store. Entries without a parseable
// timestamp are excluded: including them would resurface arbitrarily old
// posts on every run.
func (c *Collector) CollectSource(ctx context.Context, src Source) ([]Article, error) {
	feed, err := c.fetchFeed(ctx, src.Address)
	if err != nil {
		return nil, err
	}

	threshold := c.now().Add(-c.maxAge)
	var articles []Article
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		if c.seen.Contains(item.Link) {
			continue
		}

		published := itemTime(item)
		if published.IsZero() {
			Log().Debugf("skip %q: no parseable publish time", item.Title)
			continue
		}
		if published.Before(threshold) {
			continue
		}

		articles = append(articles, Article{
			Link:        item.Link,
			Title:       item.Title,
			Body:        TruncateRunes(StripHTML(extractBody(item)), BodyCeiling),
			SourceName:  sourceLabel(src, item),
			PublishedAt: published,
		})
	}

	// The cap truncates by recency, not by feed order, so a feed that lists
	// old entries first cannot crowd out fresh ones.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if c.perSourceCap > 0 && len(articles) > c.perSourceCap {
		articles = articles[:c.perSourceCap]
	}
	return articles, nil
}

func (c *Collector) fetchFeed(ctx context.Context, address string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", AppName+"/"+AppVersion)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Feeds from older WeChat bridges are not always UTF-8.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	feed, err := c.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// itemTime picks the best available timestamp: published, falling back to
// updated. Zero means the feed gave nothing parseable.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// extractBody picks the richest content field the entry offers.
func extractBody(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

// sourceLabel prefers the feed entry's own author name over the configured
// source name, matching how multi-account bridge feeds label entries.
func sourceLabel(src Source, item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	return src.Name
}
