// Package logger provides leveled logging for pulsrag.
// Info, Warn and Error always reach stderr. Debug messages and section
// headers are printed only in verbose mode (--verbose), to help users
// follow the retrieval pipeline.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	verbose bool
	log     = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(plainFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// plainFormatter renders "[LEVEL] message key=value" lines.
type plainFormatter struct{}

func (plainFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s", levelTag(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelTag(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(l.String())
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
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
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// Silence discards all output until the returned func restores the
// previous writer. Full-screen UIs use it so log lines do not draw over
// the screen.
func Silence() (restore func()) {
	mu.Lock()
	prev := log.Out
	log.SetOutput(io.Discard)
	mu.Unlock()
	return func() { SetOutput(prev) }
}

// SetJSON switches between JSON lines (for servers) and plain text.
func SetJSON(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(plainFormatter{})
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(log.Out, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	log.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

// Error prints an error message. Errors are never suppressed.
func Error(format string, args ...any) {
	log.Errorf(format, args...)
}

// WithFields returns an entry carrying structured fields.
// The entry obeys the same verbosity rules as the package functions.
func WithFields(fields map[string]any) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}
