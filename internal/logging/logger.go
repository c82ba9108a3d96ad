package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/codyseavey/tcg-binder/internal/config"
)

// New builds the process logger from config. Unknown levels fall back to info.
func New(conf config.Logger) *logrus.Logger {
	return NewWithOutput(conf, os.Stdout)
}

func NewWithOutput(conf config.Logger, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if conf.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(conf.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
