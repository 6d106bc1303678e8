// cmd/wesum/state.go
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State represents the application runtime state, persisted between runs so
// the status server can report across restarts.
type State struct {
	StartupTime   time.Time  `json:"startupTime"`
	RunCount      int        `json:"runCount"`
	TotalArticles int        `json:"totalArticles"`
	ErrorCount    int        `json:"errorCount"`
	LastRunTime   time.Time  `json:"lastRunTime"`
	LastError     string     `json:"lastError"`
	LastErrorTime time.Time  `json:"lastErrorTime"`
	LastReport    *RunReport `json:"lastReport,omitempty"`
	Version       string     `json:"version"`
}

var (
	state = &State{
		StartupTime: time.Now(),
		Version:     AppVersion,
	}
	stateMutex sync.Mutex
	statePath  = DefaultStatePath
)

// SetStatePath points state persistence at the configured file.
func SetStatePath(path string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	if path != "" {
		statePath = path
	}
}

// LoadState loads the persisted runtime state. A missing or empty file keeps
// the in-memory defaults.
func LoadState() (*State, error) {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return state, nil
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}
	loaded.StartupTime = state.StartupTime
	loaded.Version = AppVersion
	state = &loaded
	return state, nil
}

// SaveState persists the runtime state with a temp-file-then-rename write so
// a crash mid-save cannot corrupt the previous file.
func SaveState() error {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	return saveStateLocked()
}

func saveStateLocked() error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(statePath), 0755); err != nil {
		return err
	}
	tempFile := statePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempFile, statePath)
}

// RecordRun folds a finished pipeline run into the state.
func RecordRun(report *RunReport) {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	state.RunCount++
	state.TotalArticles += report.Candidates
	state.LastRunTime = report.FinishedAt
	state.LastReport = report
	if err := saveStateLocked(); err != nil {
		Log().Warnf("cannot save state: %v", err)
	}
}

// RecordError records an error in the state
func RecordError(errorMsg string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	state.ErrorCount++
	state.LastError = errorMsg
	state.LastErrorTime = time.Now()
}

// SnapshotState returns a copy of the current state for the status API.
func SnapshotState() State {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	return *state
}
