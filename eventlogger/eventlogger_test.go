package eventlogger

import (
	"testing"
	"time"

	"github.com/Parkreiner/randombag"
	"github.com/Parkreiner/randombag/bag"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleEventFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	el := New(zap.New(core))

	event := randombag.Event{
		ID:       uuid.New(),
		BagID:    uuid.New(),
		Type:     randombag.EventTypeItemAdded,
		Created:  time.Now(),
		PoolSize: 8,
		Pending:  3,
		Message:  "added Q",
	}
	el.HandleEvent(event)

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	require.Equal(t, "added Q", entry.Message)
	require.Equal(t, zapcore.InfoLevel, entry.Level)
	require.Equal(t, "bag", entry.LoggerName)

	fields := entry.ContextMap()
	require.Equal(t, event.BagID.String(), fields["bag_id"])
	require.Equal(t, event.ID.String(), fields["event_id"])
	require.Equal(t, "item_added", fields["event_type"])
	require.EqualValues(t, 8, fields["pool_size"])
	require.EqualValues(t, 3, fields["pending"])
}

func TestLevels(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, levelFor(randombag.EventTypeDraw))
	require.Equal(t, zapcore.DebugLevel, levelFor(randombag.EventTypeBagQueued))
	require.Equal(t, zapcore.InfoLevel, levelFor(randombag.EventTypeItemsRemoved))
	require.Equal(t, zapcore.WarnLevel, levelFor(randombag.EventTypeError))
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	b := bag.NewIdentity([]string{"A", "B"}, bag.WithSeed(1), bag.WithEventSink(New(zap.New(core))))

	_, err := b.Next()
	require.NoError(t, err)
	b.Add("C")

	entries := logs.All()
	require.Len(t, entries, 1, "queue and draw events are debug only")
	require.Equal(t, "added C", entries[0].Message)
}

func TestNilLogger(t *testing.T) {
	require.NotPanics(t, func() {
		New(nil).HandleEvent(randombag.Event{Type: randombag.EventTypeError})
	})
}
