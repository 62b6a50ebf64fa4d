// Package logging builds the logger shared by the pipeline stages.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// TimestampFormat is the clock-only format used in log lines.
const TimestampFormat = "15:04:05"

// LevelFor maps the -v counter to a log level: 0 is info, 1 debug and
// anything above trace.
func LevelFor(verbosity int) logrus.Level {
	switch {
	case verbosity <= 0:
		return logrus.InfoLevel
	case verbosity == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// New returns a text logger writing to out at the level selected by
// verbosity.
func New(out io.Writer, verbosity int) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(LevelFor(verbosity))
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	})
	return log
}

// Discard returns a logger that drops everything, for tests and quiet runs.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
