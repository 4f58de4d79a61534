package logger

import (
	"github.com/sirupsen/logrus"
)

// New builds the process-wide logger. It is constructed once in main and
// passed by reference to every consumer; nothing in this codebase reaches
// for a package-level logger.
func New(level string, production bool) *logrus.Logger {
	log := logrus.New()

	if production {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
