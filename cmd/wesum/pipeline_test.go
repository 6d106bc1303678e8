package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionByPrompt answers the fake completion endpoint with a reply that
// matches the requested prompt shape: abbreviated prompts ask for key bullet
// points, full prompts get a regular structured summary.
func completionByPrompt(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		require.NotEmpty(t, req.Messages)

		reply := "【标签】科技、行业\n\n【总结】\n这是一篇正常文章的完整总结。"
		if strings.Contains(req.Messages[0].Content, "关键要点") {
			reply = "【标签】职场、招聘\n\n【总结】\n• 某公司招聘工程师\n• 薪资面议"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}
}

func writeSourcesFile(t *testing.T, dir string, sources []Source) string {
	t.Helper()
	path := filepath.Join(dir, "sources.yml")
	body := "sources:\n"
	for _, s := range sources {
		body += fmt.Sprintf("  - name: %s\n    address: %s\n    enabled: %t\n",
			s.Name, s.Address, s.Enabled)
	}
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// pipelineHarness stands up the whole external surface: two feeds, a fake
// completion endpoint, and a push recorder.
type pipelineHarness struct {
	cfg      *Config
	pipeline *Pipeline
	push     *pushRecorder
	seenPath string
}

func newPipelineHarness(t *testing.T, feedDocs []string) *pipelineHarness {
	t.Helper()
	dir := t.TempDir()
	SetStatePath(filepath.Join(dir, "state.json"))

	var sources []Source
	for i, doc := range feedDocs {
		server := serveRSS(t, doc)
		t.Cleanup(server.Close)
		sources = append(sources, Source{
			Name:    fmt.Sprintf("source-%d", i+1),
			Address: server.URL,
			Enabled: true,
		})
	}

	// Completion endpoint picks the reply by prompt shape: abbreviated
	// prompts ask for key bullet points, full prompts do not.
	ai := httptest.NewServer(completionByPrompt(t))
	t.Cleanup(ai.Close)

	push := &pushRecorder{code: 0}
	pushServer := httptest.NewServer(push.handler())
	t.Cleanup(pushServer.Close)

	cfg := DefaultConfig()
	cfg.AI.APIKey = "test-key"
	cfg.AI.BaseURL = ai.URL + "/v1"
	cfg.Push.Endpoint = pushServer.URL
	cfg.SeenFile = filepath.Join(dir, "seen.json")
	cfg.StateFile = filepath.Join(dir, "state.json")
	cfg.SourcesFile = writeSourcesFile(t, dir, sources)

	pipeline, err := NewPipeline(cfg)
	require.NoError(t, err)

	return &pipelineHarness{cfg: cfg, pipeline: pipeline, push: push, seenPath: cfg.SeenFile}
}

func TestPipelineEndToEnd(t *testing.T) {
	now := time.Now()
	recruitment := rssDocument([]rssItem{{
		title:   "招聘职位：简历直投",
		link:    "https://example.com/jobs",
		pubDate: now.Add(-2 * time.Hour).Format(time.RFC1123Z),
		desc:    "欢迎加入我们。",
	}})
	clean := rssDocument([]rssItem{{
		title:   "本周科技观察",
		link:    "https://example.com/weekly",
		pubDate: now.Add(-1 * time.Hour).Format(time.RFC1123Z),
		desc:    "一段普通的内容。",
	}})

	h := newPipelineHarness(t, []string{recruitment, clean})

	report, err := h.pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 1, report.Noise)
	assert.Equal(t, 1, report.Normal)
	assert.True(t, report.Delivered)

	require.Len(t, h.push.bodies, 1)
	digest := h.push.bodies[0]
	assert.Contains(t, digest, "招聘职位：简历直投")
	assert.Contains(t, digest, "本周科技观察")
	assert.Contains(t, digest, "本文识别为【招聘广告】类型，仅推送关键要点：")
	assert.Contains(t, digest, "• 某公司招聘工程师")
	assert.Contains(t, digest, "这是一篇正常文章的完整总结。")

	// The seen store grew by exactly the two delivered links.
	assert.Equal(t, 2, h.pipeline.seen.Len())
	reloaded := NewSeenStore(h.seenPath)
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.Contains("https://example.com/jobs"))
	assert.True(t, reloaded.Contains("https://example.com/weekly"))
	assert.Equal(t, 2, reloaded.Len())
}

func TestPipelineSecondRunFindsNothingNew(t *testing.T) {
	now := time.Now()
	doc := rssDocument([]rssItem{{
		title:   "只有一篇",
		link:    "https://example.com/only",
		pubDate: now.Add(-time.Hour).Format(time.RFC1123Z),
		desc:    "普通内容。",
	}})

	h := newPipelineHarness(t, []string{doc})
	// Suppress the empty-run notice so the second run is silent.
	h.cfg.QuietHours.Start = 0
	h.cfg.QuietHours.End = 24

	report, err := h.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Candidates)
	assert.True(t, report.Delivered)

	report, err = h.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Candidates)
	assert.True(t, report.Suppressed)
	assert.Equal(t, 1, h.pipeline.seen.Len())
	require.Len(t, h.push.bodies, 1)
}

func TestPipelineDeliveryFailureKeepsSeenStore(t *testing.T) {
	now := time.Now()
	doc := rssDocument([]rssItem{{
		title:   "送不出去的文章",
		link:    "https://example.com/fail",
		pubDate: now.Add(-time.Hour).Format(time.RFC1123Z),
		desc:    "普通内容。",
	}})

	h := newPipelineHarness(t, []string{doc})
	h.push.code = 40001 // provider rejects every push

	report, err := h.pipeline.Run(context.Background())
	require.Error(t, err)
	assert.False(t, report.Delivered)
	assert.NotEmpty(t, report.Error)

	// Nothing persisted: the article is retried verbatim next run.
	assert.Equal(t, 0, h.pipeline.seen.Len())
	_, statErr := os.Stat(h.seenPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipelineEmptyRunOutsideQuietHoursSendsNotice(t *testing.T) {
	h := newPipelineHarness(t, []string{rssDocument(nil)})
	h.cfg.QuietHours.Start = 0
	h.cfg.QuietHours.End = 0 // disabled

	report, err := h.pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Candidates)
	assert.False(t, report.Suppressed)
	assert.True(t, report.Delivered)
	require.Len(t, h.push.titles, 1)
	assert.Contains(t, h.push.titles[0], "暂无新文章")
}

func TestWithinQuietHours(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 30, 0, 0, time.UTC)
	}

	// Plain window.
	assert.True(t, withinQuietHours(at(23), 22, 24))
	assert.False(t, withinQuietHours(at(21), 22, 24))

	// Wrapping past midnight.
	assert.True(t, withinQuietHours(at(23), 22, 7))
	assert.True(t, withinQuietHours(at(3), 22, 7))
	assert.False(t, withinQuietHours(at(12), 22, 7))

	// start == end disables the window.
	assert.False(t, withinQuietHours(at(5), 6, 6))
}
