// Package logger is the leveled process logger used by pyplay front ends.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is the verbosity threshold. Lower values are more verbose.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

var (
	mu    sync.RWMutex
	level = LevelInfo
	std   = log.New(os.Stderr, "", log.LstdFlags)
)

// ParseLevel parses trace, debug, info, warn or error (case-insensitive).
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

// SetOutput replaces the writer used by the global logger.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetFlags sets the underlying log flags.
func SetFlags(flags int) {
	std.SetFlags(flags)
}

// SetLevel sets the global threshold.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// Enabled reports whether l would be emitted.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func logf(l Level, format string, args ...any) {
	if !Enabled(l) {
		return
	}
	std.Printf("[%s] %s", l, fmt.Sprintf(format, args...))
}

func Tracef(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debugf(format string, args ...any) { logf(LevelDebug, format, args...) }
func Infof(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...any) { logf(LevelError, format, args...) }
