// Package logfile implements the server's append-only log: one line per
// entry in the form "<timestamp> [<CATEGORY>] - <message>".
package logfile

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const (
	DefaultPath = "myOwnWebServer.log"

	timestampFormat = "2006-01-02 15:04:05"
)

type Category string

const (
	CategoryError       Category = "ERROR"
	CategoryRequest     Category = "REQUEST"
	CategoryResponse    Category = "RESPONSE"
	CategoryServerStart Category = "SERVER START"
	CategoryStartup     Category = "APPLICATION STARTUP"
)

var categoryColors = map[Category]*color.Color{
	CategoryError:    color.New(color.FgRed, color.Bold),
	CategoryRequest:  color.New(color.FgCyan),
	CategoryResponse: color.New(color.FgGreen),
}

var defaultColor = color.New(color.FgYellow)

// Logger serializes entries from any number of callers. Failing to write an
// entry is never reported to the caller.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	console io.Writer
	now     func() time.Time

	// set only for file-backed loggers
	path    string
	file    *os.File
	size    int64
	maxSize int64
}

type Option func(*Logger)

// WithConsole mirrors every entry to w with a colorized category.
func WithConsole(w io.Writer) Option {
	return func(l *Logger) {
		l.console = w
	}
}

// WithMaxSize rotates the log file to "<path>.1" once it would grow past n
// bytes. Zero disables rotation.
func WithMaxSize(n int64) Option {
	return func(l *Logger) {
		l.maxSize = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New returns a Logger writing to w.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{out: w, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discard returns a Logger that drops every entry.
func Discard() *Logger {
	return New(io.Discard)
}

// Open truncates (or creates) the file at path and returns a Logger
// appending to it.
func Open(path string, opts ...Option) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := New(f, opts...)
	l.path = path
	l.file = f
	return l, nil
}

func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.out = io.Discard
	return err
}

// rotate must be called with mu held.
func (l *Logger) rotate() {
	_ = l.file.Close()

	flag := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if err := os.Rename(l.path, l.path+".1"); err == nil {
		flag |= os.O_TRUNC
		l.size = 0
	} else {
		// rotation is unavailable, keep appending to the current file
		l.maxSize = 0
	}

	f, err := os.OpenFile(l.path, flag, 0o644)
	if err != nil {
		l.file = nil
		l.out = io.Discard
		return
	}
	l.file = f
	l.out = f
}

func (l *Logger) Log(category Category, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	// one entry per line
	msg = strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(msg)
	ts := l.now().Format(timestampFormat)
	line := fmt.Sprintf("%s [%s] - %s\n", ts, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil && l.maxSize > 0 && l.size > 0 && l.size+int64(len(line)) > l.maxSize {
		l.rotate()
	}

	n, _ := io.WriteString(l.out, line)
	l.size += int64(n)

	if l.console != nil {
		c, ok := categoryColors[category]
		if !ok {
			c = defaultColor
		}
		_, _ = fmt.Fprintf(l.console, "%s [%s] - %s\n", ts, c.Sprint(string(category)), msg)
	}
}

func (l *Logger) Error(format string, args ...any) {
	l.Log(CategoryError, format, args...)
}

func (l *Logger) Request(format string, args ...any) {
	l.Log(CategoryRequest, format, args...)
}

func (l *Logger) Response(format string, args ...any) {
	l.Log(CategoryResponse, format, args...)
}

func (l *Logger) ServerStart(format string, args ...any) {
	l.Log(CategoryServerStart, format, args...)
}

func (l *Logger) Startup(format string, args ...any) {
	l.Log(CategoryStartup, format, args...)
}
