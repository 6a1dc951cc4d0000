// Package logger provides levelled logging for the ragbot CLI.
// Warnings and errors are always written. When verbose mode is enabled via
// the --verbose flag, debug and info messages are written too, so users can
// follow the ingest and retrieval pipelines.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields are structured key/value pairs attached to a log entry.
type Fields = logrus.Fields

var (
	mu      sync.RWMutex
	verbose bool
	log     = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
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
	log.SetOutput(w)
}

// SetJSON switches between JSON and logfmt-style text output.
func SetJSON(enabled bool) {
	if enabled {
		log.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: true})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
}

// WithFields returns an entry carrying structured fields.
func WithFields(f Fields) *logrus.Entry {
	return log.WithFields(f)
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

// Section logs a pipeline stage header if verbose mode is enabled.
func Section(name string) {
	log.WithField("section", name).Debug("=== " + name + " ===")
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	log.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	log.Errorf(format, args...)
}
