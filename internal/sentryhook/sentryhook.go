// Package sentryhook reports log entries and panics to Sentry.
package sentryhook

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// FlushTimeout bounds how long fatal entries and panics wait for their
// event to be delivered.
const FlushTimeout = 10 * time.Second

// Hook is a logrus hook that sends entries to Sentry.
type Hook struct {
	hub      *sentry.Hub
	hostname string
	levels   []logrus.Level
}

var _ logrus.Hook = &Hook{}

// New returns a hook reporting through client. It fires for the given
// levels, or for Error, Fatal and Panic entries if none are given.
func New(client *sentry.Client, hostname string, levels ...logrus.Level) *Hook {
	if len(levels) == 0 {
		levels = []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
	}
	return &Hook{
		hub:      sentry.NewHub(client, sentry.NewScope()),
		hostname: hostname,
		levels:   levels,
	}
}

// Hub returns the hub the hook reports to.
func (h *Hook) Hub() *sentry.Hub {
	return h.hub
}

func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	event := sentry.NewEvent()
	event.ServerName = h.hostname
	event.Timestamp = e.Time
	event.Level = level(e.Level)

	if err, ok := e.Data[logrus.ErrorKey].(error); ok {
		event.Message = err.Error()
		event.Exception = []sentry.Exception{{
			Type:       fmt.Sprintf("%T", err),
			Value:      err.Error(),
			Stacktrace: sentry.ExtractStacktrace(err),
		}}
	} else {
		event.Message = e.Message
	}

	for k, v := range e.Data {
		if k == logrus.ErrorKey {
			continue // already handled this key
		}
		event.Extra[k] = v
	}
	if e.Message != event.Message {
		event.Extra["log_message"] = e.Message
	}

	h.hub.CaptureEvent(event)
	if e.Level == logrus.PanicLevel || e.Level == logrus.FatalLevel {
		// we don't want the program to terminate before reporting
		if !h.hub.Flush(FlushTimeout) {
			return fmt.Errorf("timed out reporting %s entry to sentry", e.Level)
		}
	}
	return nil
}

func level(l logrus.Level) sentry.Level {
	switch l {
	case logrus.FatalLevel, logrus.PanicLevel:
		return sentry.LevelFatal
	case logrus.ErrorLevel:
		return sentry.LevelError
	case logrus.WarnLevel:
		return sentry.LevelWarning
	case logrus.InfoLevel:
		return sentry.LevelInfo
	}
	return sentry.LevelDebug
}

// ConsumePanic reports a recovered panic value to hub and re-panics
// with it. Call it inside a deferred recover, eg
//
//	defer func() {
//		sentryhook.ConsumePanic(hub, hostname, recover())
//	}()
//
// A nil value does nothing. A nil hub only re-panics.
func ConsumePanic(hub *sentry.Hub, hostname string, err interface{}) {
	if err == nil {
		return
	}
	if hub != nil {
		event := sentry.NewEvent()
		event.Level = sentry.LevelFatal
		event.ServerName = hostname
		switch e := err.(type) {
		case error:
			event.Message = e.Error()
		case fmt.Stringer:
			event.Message = e.String()
		default:
			event.Message = fmt.Sprintf("%#v", e)
		}
		event.Threads = []sentry.Thread{{
			Stacktrace: sentry.NewStacktrace(),
			Crashed:    true,
			Current:    true,
		}}
		hub.CaptureEvent(event)
		// we don't want the program to terminate before reporting
		hub.Flush(FlushTimeout)
	}
	panic(err)
}
