package main

import "time"

// NoiseLevel grades how promotional an article is. It decides which prompt
// the summarizer uses and how the digest renders the article.
type NoiseLevel string

const (
	NoiseNone  NoiseLevel = "none"  // regular editorial content, full summary
	NoiseLight NoiseLevel = "light" // mildly promotional, still summarized in full
	NoiseHeavy NoiseLevel = "noise" // promotional, abbreviated bullet summary
	NoisePR    NoiseLevel = "pr"    // announcement content, abbreviated but never filtered
)

// Article is the unit that flows through the pipeline. Link is the dedup key
// and must be stable across runs.
type Article struct {
	Link        string
	Title       string
	Body        string // plain text, tags stripped, truncated to BodyCeiling
	SourceName  string
	PublishedAt time.Time // zero when the feed entry carried no parseable time

	NoiseLevel NoiseLevel
	NoiseType  string // classifier category name, empty for NoiseNone
	Summary    string
	Categories []string // at most MaxCategories, no duplicates
}

// Source describes one feed in sources.yml.
type Source struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// RunStats counts articles per noise level for the digest trailer.
type RunStats struct {
	Normal int
	Light  int
	Noise  int
	PR     int
}

// Total returns the number of articles covered by the stats.
func (s RunStats) Total() int {
	return s.Normal + s.Light + s.Noise + s.PR
}

// RunReport summarizes one pipeline run for logs and the status server.
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Candidates int       `json:"candidates"`
	Normal     int       `json:"normal"`
	Light      int       `json:"light"`
	Noise      int       `json:"noise"`
	PR         int       `json:"pr"`
	Delivered  bool      `json:"delivered"`
	Suppressed bool      `json:"suppressed"` // quiet hours, nothing to send
	Error      string    `json:"error,omitempty"`
}
