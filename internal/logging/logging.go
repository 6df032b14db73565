// Package logging sets up the structured file logger. The terminal belongs
// to the panel, so logs always go to a file (or are discarded entirely when
// no file is configured).
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a JSON-formatted logger writing to the given file path. An
// unopenable or empty path degrades to a discard logger rather than failing
// startup.
func New(level, file string) *logrus.Logger {
	log := logrus.New()

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	log.SetFormatter(&logrus.JSONFormatter{})

	var out io.Writer = io.Discard
	if file != "" {
		if f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
		}
	}
	log.SetOutput(out)
	return log
}
