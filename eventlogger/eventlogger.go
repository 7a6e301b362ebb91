// Package eventlogger provides an easy way to write logs describing bag
// events to a zap logger.
package eventlogger

import (
	"github.com/Parkreiner/randombag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventLogger is a randombag.EventSink that turns every event into a single
// structured log entry. Draws and queued bags are noisy, so they are logged
// at debug level; pool mutations at info, and errors at warn.
type EventLogger struct {
	logger *zap.Logger
}

var _ randombag.EventSink = &EventLogger{}

// New creates an EventLogger. A nil logger results in a no-op sink.
func New(logger *zap.Logger) *EventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventLogger{
		logger: logger.Named("bag"),
	}
}

// HandleEvent logs the event.
func (el *EventLogger) HandleEvent(event randombag.Event) {
	if ce := el.logger.Check(levelFor(event.Type), event.Message); ce != nil {
		ce.Write(
			zap.Stringer("bag_id", event.BagID),
			zap.Stringer("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int("pool_size", event.PoolSize),
			zap.Int("pending", event.Pending),
			zap.Time("created", event.Created),
		)
	}
}

func levelFor(eventType randombag.EventType) zapcore.Level {
	switch eventType {
	case randombag.EventTypeDraw, randombag.EventTypeBagQueued:
		return zapcore.DebugLevel
	case randombag.EventTypeError:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
