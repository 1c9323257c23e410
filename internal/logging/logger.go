// Package logging holds the process-wide line logger shared by every
// notification channel.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const prefix = "[LOG] "

// Logger writes one prefixed line per call. It is safe for concurrent use.
type Logger struct {
	l *log.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide Logger, creating it on first use.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stdout)
	})
	return defaultLogger
}

// New builds a standalone Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{l: log.New(w, prefix, 0)}
}

// OrDefault returns l, or the process-wide Logger when l is nil.
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return Default()
	}
	return l
}

func (lg *Logger) Log(msg string) {
	lg.l.Print(msg)
}

func (lg *Logger) Logf(format string, args ...any) {
	lg.l.Output(2, fmt.Sprintf(format, args...))
}

// SetOutput redirects the sink for every holder of this Logger.
func (lg *Logger) SetOutput(w io.Writer) {
	lg.l.SetOutput(w)
}

// Writer returns the current sink.
func (lg *Logger) Writer() io.Writer {
	return lg.l.Writer()
}
