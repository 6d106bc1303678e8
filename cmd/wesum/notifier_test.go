package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushRecorder fakes a ServerChan-style endpoint: HTTP 200 with a JSON body
// carrying the provider's own result code.
type pushRecorder struct {
	code   int
	status int
	titles []string
	bodies []string
}

func (p *pushRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.titles = append(p.titles, r.FormValue("title"))
		p.bodies = append(p.bodies, r.FormValue("desp"))

		if p.status != 0 && p.status != http.StatusOK {
			http.Error(w, "unavailable", p.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    p.code,
			"message": "ok",
		})
	}
}

func notifierForTest(pushURL, archiveURL string) *Notifier {
	cfg := DefaultConfig()
	cfg.Push.Endpoint = pushURL
	cfg.Archive.Endpoint = archiveURL
	return NewNotifier(cfg)
}

func TestPushSucceedsOnCodeZero(t *testing.T) {
	rec := &pushRecorder{code: 0}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	n := notifierForTest(server.URL, "")
	ok := n.Push(context.Background(), "标题", "内容")

	assert.True(t, ok)
	require.Len(t, rec.titles, 1)
	assert.Equal(t, "标题", rec.titles[0])
	assert.Equal(t, "内容", rec.bodies[0])
}

func TestPushFailsOnNonZeroCodeDespite200(t *testing.T) {
	rec := &pushRecorder{code: 40001}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	n := notifierForTest(server.URL, "")
	assert.False(t, n.Push(context.Background(), "标题", "内容"))
}

func TestPushFailsOnHTTPError(t *testing.T) {
	rec := &pushRecorder{status: http.StatusInternalServerError}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	n := notifierForTest(server.URL, "")
	assert.False(t, n.Push(context.Background(), "标题", "内容"))
}

func TestDeliverUsesArchiveCard(t *testing.T) {
	archive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "每日摘要", payload["title"])
		assert.Contains(t, payload["content"], "完整正文")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"url":"https://paste.example.com/abc"}`)
	}))
	defer archive.Close()

	rec := &pushRecorder{code: 0}
	push := httptest.NewServer(rec.handler())
	defer push.Close()

	n := notifierForTest(push.URL, archive.URL)
	ok := n.Deliver(context.Background(), Digest{
		Title: "每日摘要",
		Body:  "完整正文",
		Stats: RunStats{Normal: 1},
	})

	assert.True(t, ok)
	require.Len(t, rec.bodies, 1)
	assert.Contains(t, rec.bodies[0], "https://paste.example.com/abc")
	assert.NotContains(t, rec.bodies[0], "完整正文")
}

func TestDeliverFallsBackToFullBodyWhenArchiveFails(t *testing.T) {
	archive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer archive.Close()

	rec := &pushRecorder{code: 0}
	push := httptest.NewServer(rec.handler())
	defer push.Close()

	n := notifierForTest(push.URL, archive.URL)
	ok := n.Deliver(context.Background(), Digest{Title: "每日摘要", Body: "完整正文"})

	assert.True(t, ok)
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "完整正文", rec.bodies[0])
}

func TestChunkMessageRespectsLimit(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = strings.Repeat("字", 100)
	}
	text := strings.Join(lines, "\n")

	chunks := chunkMessage(text, 500)

	require.NotEmpty(t, chunks)
	var total int
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 500)
		total += strings.Count(chunk, "字")
	}
	assert.Equal(t, 3000, total)
}

func TestChunkMessageHardCutsOversizedLine(t *testing.T) {
	chunks := chunkMessage(strings.Repeat("字", 1200), 500)

	require.Len(t, chunks, 3)
	assert.Equal(t, 500, len([]rune(chunks[0])))
	assert.Equal(t, 500, len([]rune(chunks[1])))
	assert.Equal(t, 200, len([]rune(chunks[2])))
}

func TestChunkMessageShortTextIsSingleChunk(t *testing.T) {
	chunks := chunkMessage("只有一行", 500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "只有一行", chunks[0])
}
