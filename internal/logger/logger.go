package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"mockraft/internal/config"
)

// New builds the process logger. Production uses JSON lines; everything else
// uses the text formatter with full timestamps.
func New(cfg config.Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if cfg.App.IsProduction() {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return l
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
