package download

import (
	"github.com/sirupsen/logrus"
)

// LogEvents returns a progress callback that writes message events to log.
// Verbose events are logged at debug level. Byte progress events are passed
// to onBytes, which may be nil.
func LogEvents(log logrus.FieldLogger, onBytes func(ByteProgress)) func(ProgressEvent) {
	return func(event ProgressEvent) {
		if event.Bytes != nil {
			if onBytes != nil {
				onBytes(*event.Bytes)
			}
			return
		}

		switch event.Level {
		case LevelVerbose:
			log.Debug(event.Message)
		case LevelWarning:
			log.Warn(event.Message)
		case LevelError:
			log.Error(event.Message)
		default:
			log.Info(event.Message)
		}
	}
}

// EventHook is a logrus hook that turns log entries into progress events,
// so components logging through logrus show up wherever events are shown.
type EventHook struct {
	OnProgress func(ProgressEvent)
}

// Levels implements logrus.Hook.
func (h *EventHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *EventHook) Fire(entry *logrus.Entry) error {
	if h.OnProgress == nil {
		return nil
	}

	level := LevelInfo
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		level = LevelError
	case logrus.WarnLevel:
		level = LevelWarning
	case logrus.DebugLevel, logrus.TraceLevel:
		level = LevelVerbose
	}

	h.OnProgress(ProgressEvent{Message: entry.Message, Level: level})
	return nil
}
