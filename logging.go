package exsave

import (
	"time"

	"github.com/apex/log"
)

// HookLogEvent describes one lifecycle hook or transfer step for logging.
type HookLogEvent struct {
	Hook     string
	Slot     int
	Path     string
	Detail   string
	Duration time.Duration
	Err      error
}

// Logger records hook events.
type Logger interface {
	LogHook(HookLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(HookLogEvent)

// LogHook implements Logger.
func (f LoggerFunc) LogHook(event HookLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogHook(HookLogEvent) {}

type apexLogger struct {
	log log.Interface
}

// NewApexLogger writes hook events as structured apex/log entries. A nil
// logger uses the apex package default.
func NewApexLogger(logger log.Interface) Logger {
	if logger == nil {
		logger = log.Log
	}
	return apexLogger{log: logger}
}

func (l apexLogger) LogHook(event HookLogEvent) {
	fields := log.Fields{
		"hook":     event.Hook,
		"duration": event.Duration.String(),
	}
	if event.Slot >= 0 {
		fields["slot"] = event.Slot
	}
	if event.Path != "" {
		fields["path"] = event.Path
	}
	if event.Detail != "" {
		fields["detail"] = event.Detail
	}
	entry := l.log.WithFields(fields)
	if event.Err != nil {
		entry.WithError(event.Err).Error("exsave hook failed")
		return
	}
	entry.Debug("exsave hook completed")
}
