package common

import (
	"fmt"
	"os"
)

// Logger represents a minimal levelled logger
type Logger interface {
	// Debugf handles debug level messages
	Debugf(format string, args ...interface{})
	// Infof handles info level messages
	Infof(format string, args ...interface{})
	// Warnf handles warn level messages
	Warnf(format string, args ...interface{})
	// Errorf handles error level messages
	Errorf(format string, args ...interface{})
	// Fatalf handles fatal level messages, and must exit the application
	Fatalf(format string, args ...interface{})
}

// StubLogger satisfies the Logger interface, and simply does nothing with
// received messages
type StubLogger struct{}

// Debugf handles debug level messages
func (l *StubLogger) Debugf(format string, args ...interface{}) {}

// Infof handles info level messages
func (l *StubLogger) Infof(format string, args ...interface{}) {}

// Warnf handles warn level messages
func (l *StubLogger) Warnf(format string, args ...interface{}) {}

// Errorf handles error level messages
func (l *StubLogger) Errorf(format string, args ...interface{}) {}

// Fatalf handles fatal level messages, exits the application
func (l *StubLogger) Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

type logPrefixer struct {
	log Logger
}

func (l *logPrefixer) Debugf(format string, args ...interface{}) {
	l.log.Debugf(l.prefix(format), args...)
}

func (l *logPrefixer) Infof(format string, args ...interface{}) {
	l.log.Infof(l.prefix(format), args...)
}

func (l *logPrefixer) Warnf(format string, args ...interface{}) {
	l.log.Warnf(l.prefix(format), args...)
}

func (l *logPrefixer) Errorf(format string, args ...interface{}) {
	l.log.Errorf(l.prefix(format), args...)
}

func (l *logPrefixer) Fatalf(format string, args ...interface{}) {
	l.log.Fatalf(l.prefix(format), args...)
}

func (l *logPrefixer) prefix(format string) string {
	return `[golight] ` + format
}

// Log holds the global logger used by golight, can be set via SetLogger() in
// the golight package
var Log Logger

func init() {
	Log = &logPrefixer{log: new(StubLogger)}
}

// SetLogger wraps the supplied logger with a logPrefixer to denote golight
// logs
func SetLogger(logger Logger) {
	Log = &logPrefixer{log: logger}
}
