// cmd/wesum/seen.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SeenStore is the persisted set of already-delivered article links. It is
// the only cross-run memory: loaded once at startup, merged in memory after
// a successful delivery, written back wholesale at end of run. Entries are
// never removed.
type SeenStore struct {
	path      string
	links     map[string]struct{}
	updatedAt time.Time
}

type seenFile struct {
	SeenLinks []string `json:"seen_links"`
	UpdatedAt string   `json:"updated_at"`
}

// NewSeenStore creates a store backed by the given file.
func NewSeenStore(path string) *SeenStore {
	return &SeenStore{
		path:  path,
		links: make(map[string]struct{}),
	}
}

// Load reads the backing file. A missing file means an empty set; a file
// that exists but cannot be parsed is an error, because silently starting
// over would re-deliver every article ever seen.
func (s *SeenStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read seen store %s: %w", s.path, err)
	}

	var f seenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("seen store %s is corrupt: %w", s.path, err)
	}
	for _, link := range f.SeenLinks {
		s.links[link] = struct{}{}
	}
	if f.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, f.UpdatedAt); err == nil {
			s.updatedAt = t
		}
	}
	return nil
}

// Contains reports whether the link was already delivered.
func (s *SeenStore) Contains(link string) bool {
	_, ok := s.links[link]
	return ok
}

// Merge adds links to the in-memory set and returns how many were new.
// Merging the same links twice is a no-op.
func (s *SeenStore) Merge(links []string) int {
	added := 0
	for _, link := range links {
		if link == "" {
			continue
		}
		if _, ok := s.links[link]; !ok {
			s.links[link] = struct{}{}
			added++
		}
	}
	return added
}

// Len returns the size of the set.
func (s *SeenStore) Len() int {
	return len(s.links)
}

// Save writes the full set plus an update timestamp. The write goes to a
// temp file first and is renamed into place, so a crash mid-write leaves the
// previous valid file intact.
func (s *SeenStore) Save() error {
	links := make([]string, 0, len(s.links))
	for link := range s.links {
		links = append(links, link)
	}
	sort.Strings(links)

	s.updatedAt = time.Now()
	data, err := json.MarshalIndent(seenFile{
		SeenLinks: links,
		UpdatedAt: s.updatedAt.Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempFile, s.path)
}
