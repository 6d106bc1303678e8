// cmd/wesum/util.go
package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const TimeFormatDigest = "2006-01-02 15:04"

// StripHTML renders markup as plain text: script/style subtrees are dropped,
// tags removed, whitespace collapsed. Input that fails to parse as HTML is
// returned trimmed as-is.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return collapseWhitespace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}
	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes cuts s after limit runes. Limits are rune counts, not bytes,
// so CJK text is not cut mid-character.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// FormatPublished renders a publish time as the " -YYYY-MM-DD HH:MM" suffix
// used in article headings. Unparseable (zero) times render as nothing.
func FormatPublished(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return " -" + t.Format(TimeFormatDigest)
}

// respondWithJSON writes a JSON payload for the status API.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
