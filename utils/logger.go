package utils

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger provides leveled logging throughout the application.
// It is also the diagnostic channel for failures that the user only sees as an alert.
type Logger struct {
	entry *logrus.Entry
}

// NewLoggerTo creates a Logger writing to w. An unknown or empty level means info.
func NewLoggerTo(w io.Writer, level string) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return &Logger{entry: logrus.NewEntry(l)}
}

// NewNopLogger discards everything. Handy in tests.
func NewNopLogger() *Logger {
	return NewLoggerTo(io.Discard, "panic")
}

// With returns a child Logger that adds key=value to every line.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// Logrus exposes the underlying logger for libraries that want one (gin middleware).
func (l *Logger) Logrus() *logrus.Logger {
	return l.entry.Logger
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
