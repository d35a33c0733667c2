package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// New создает logrus логгер с заданным уровнем и форматом ("json" или "text")
func New(level, format string) *log.Logger {
	logger := log.New()
	logger.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&log.JSONFormatter{})
	}
	return logger
}

// Component возвращает запись с полем component
func Component(logger log.FieldLogger, name string) *log.Entry {
	return logger.WithField("component", name)
}
