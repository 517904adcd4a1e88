// Package logging writes the debug log. The TUI owns the terminal, so log
// output goes to a dated file and never to stdout.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger is a leveled wrapper around log.Logger. A nil *Logger discards everything.
type Logger struct {
	mu     sync.Mutex
	out    *log.Logger
	closer io.Closer
}

// New returns a Logger writing to w
func New(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

// Open creates dir if needed and appends to openxai-chat-YYYY-MM-DD.log inside it
func Open(dir string, now time.Time) (*Logger, string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("openxai-chat-%s.log", now.Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(f)
	l.closer = f
	l.Infof("=== openxai-chat log started ===")
	return l, path, nil
}

func (l *Logger) printf(level, format string, v ...interface{}) {
	if l == nil || l.out == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Printf("["+level+"] "+format, v...)
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.printf("DEBUG", format, v...)
}

// Infof logs an info message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.printf("INFO", format, v...)
}

// Errorf logs an error message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.printf("ERROR", format, v...)
}

// Close flushes the end marker and closes the underlying file, if any
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	l.Infof("=== openxai-chat log ended ===")
	return l.closer.Close()
}
