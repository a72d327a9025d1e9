// Package debug provides a minimal, allocation-cheap diagnostic logger for
// the listing pipeline. It is not a general logging façade: callers tag
// each line with an area ("filter", "manifest", "adapter:python", ...) so a
// single stream stays greppable, and output is entirely suppressed unless
// explicitly enabled.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	out     io.Writer
	logFile *os.File
	enabled bool
)

func init() {
	if os.Getenv("LG_DEBUG") != "" {
		enabled = true
		out = os.Stderr
	}
}

// SetOutput directs debug output to w. Passing nil disables output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	enabled = w != nil
}

// Enabled reports whether debug logging is currently active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// InitLogFile opens a timestamped log file under the OS temp directory and
// directs debug output there. Returns the path for diagnostics reporting.
func InitLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "lg-debug-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("lg-%s.log", time.Now().Format("2006-01-02T150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open debug log file: %w", err)
	}

	logFile = f
	out = f
	enabled = true
	return path, nil
}

// Close closes the log file opened by InitLogFile, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Logf writes one tagged diagnostic line. It is a no-op unless debug output
// is enabled.
func Logf(area, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || out == nil {
		return
	}
	fmt.Fprintf(out, "[%s] %s\n", area, fmt.Sprintf(format, args...))
}
