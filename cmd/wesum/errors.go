// cmd/wesum/errors.go
package main

import (
	"fmt"
	"os"
)

// Error severity levels
const (
	ErrorSeverityLow = iota
	ErrorSeverityMedium
	ErrorSeverityHigh
	ErrorSeverityFatal
)

// HandleError logs an error with its component and severity. Fatal severity
// terminates the process with a non-zero exit code; already-saved state on
// disk is never touched on the way out.
func HandleError(message string, err error, component string, severity int) {
	errorMsg := message
	if err != nil {
		errorMsg = fmt.Sprintf("%s: %v", message, err)
	}

	Log().Errorf("[%s] %s", component, errorMsg)
	RecordError(errorMsg)

	if severity >= ErrorSeverityFatal {
		CloseLogging()
		os.Exit(1)
	}
}

// RecoverFromPanic recovers from panics and logs the error
func RecoverFromPanic(component string) {
	if r := recover(); r != nil {
		Log().Errorf("PANIC in %s: %v", component, r)
		RecordError(fmt.Sprintf("panic in %s: %v", component, r))
	}
}
