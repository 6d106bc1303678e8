// cmd/wesum/logger.go
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarning
	LogError
)

var logLevelStrings = map[LogLevel]string{
	LogDebug:   "DEBUG",
	LogInfo:    "INFO",
	LogWarning: "WARN",
	LogError:   "ERROR",
}

// ParseLogLevel maps a config string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogDebug
	case "warn", "warning":
		return LogWarning
	case "error":
		return LogError
	default:
		return LogInfo
	}
}

// Logger writes leveled messages to the log file and stdout.
type Logger struct {
	logger *log.Logger
	file   *os.File
	level  LogLevel
	mu     sync.Mutex
}

var logInstance = &Logger{
	logger: log.New(os.Stdout, "", log.LstdFlags),
	level:  LogInfo,
}

// SetupLogging points the global logger at the configured file. Failure to
// open the file keeps the stdout-only logger and reports the error.
func SetupLogging(path string, level LogLevel) error {
	logInstance.mu.Lock()
	defer logInstance.mu.Unlock()

	logInstance.level = level
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logInstance.file = file
	logInstance.logger = log.New(io.MultiWriter(file, os.Stdout), "", log.LstdFlags)
	return nil
}

// Log returns the global logger instance.
func Log() *Logger {
	return logInstance
}

// CloseLogging releases the log file, if one was opened.
func CloseLogging() {
	logInstance.mu.Lock()
	defer logInstance.mu.Unlock()
	if logInstance.file != nil {
		logInstance.file.Close()
		logInstance.file = nil
	}
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[%s] %s", logLevelStrings[level], fmt.Sprintf(format, args...))
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LogDebug, format, args...)
}

// Infof logs an info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LogInfo, format, args...)
}

// Warnf logs a warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LogWarning, format, args...)
}

// Errorf logs an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LogError, format, args...)
}
