package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (lv Level) String() string {
	if lv < LevelDebug || lv > LevelError {
		return fmt.Sprintf("LEVEL(%d)", int(lv))
	}
	return levelNames[lv]
}

// Logger writes "[LEVEL] hh:mm:ss: message" lines. Info lines need Verbose,
// debug lines need DebugMode; warnings and errors are always written. A nil
// *Logger is valid and discards everything. It is safe for concurrent use.
type Logger struct {
	out       io.Writer
	now       func() time.Time
	Verbose   bool
	DebugMode bool
	mu        sync.Mutex
}

// NewLogger creates a logger writing to stderr.
func NewLogger(verbose, debug bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose, debug)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, verbose, debug bool) *Logger {
	return &Logger{out: w, now: time.Now, Verbose: verbose, DebugMode: debug}
}

// Enabled reports whether lines of level lv are written.
func (l *Logger) Enabled(lv Level) bool {
	if l == nil {
		return false
	}
	switch lv {
	case LevelDebug:
		return l.DebugMode
	case LevelInfo:
		return l.Verbose
	}
	return true
}

func (l *Logger) logf(lv Level, format string, args ...interface{}) {
	if !l.Enabled(lv) {
		return
	}

	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s] %s: %s\n", lv, l.now().Format("15:04:05"), msg)
}

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
