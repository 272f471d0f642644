// Package logger provides verbose logging for clausecheck.
// When verbose mode is enabled via the --verbose flag, pipeline progress
// is printed to stderr. Errors are always printed.
//
// Every line passes through the registered redactors before it is written,
// so a registered API key can never reach the log output.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Redactor scrubs sensitive values from a log line.
type Redactor interface {
	Redact(s string) string
}

var (
	mu        sync.RWMutex
	verbose   bool
	output    io.Writer = os.Stderr
	redactors []Redactor
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// RegisterSecret adds a redactor applied to every subsequent line.
// Registering an equal redactor twice is a no-op. Redactors must be
// comparable.
func RegisterSecret(r Redactor) {
	mu.Lock()
	defer mu.Unlock()
	for _, existing := range redactors {
		if existing == r {
			return
		}
	}
	redactors = append(redactors, r)
}

// ResetSecrets drops all registered redactors.
func ResetSecrets() {
	mu.Lock()
	defer mu.Unlock()
	redactors = nil
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(false, "[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(false, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(false, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	logf(true, "[ERROR] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// logf holds the write lock so concurrent lines never interleave.
func logf(always bool, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !always && !verbose {
		return
	}
	line := fmt.Sprintf(format, args...)
	for _, r := range redactors {
		line = r.Redact(line)
	}
	fmt.Fprintf(output, "%s%s\n", prefix, line)
}
