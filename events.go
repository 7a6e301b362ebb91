package randombag

import (
	"time"

	"github.com/google/uuid"
)

// EventType indicates which operation caused an event to be dispatched.
type EventType string

const (
	// EventTypeBagQueued is dispatched every time a full, shuffled bag gets
	// appended to the end of the pending queue.
	EventTypeBagQueued EventType = "bag_queued"
	// EventTypeDraw is dispatched when a pending draw is consumed.
	EventTypeDraw EventType = "draw"
	// EventTypeItemAdded is dispatched when a value joins the pool.
	EventTypeItemAdded EventType = "item_added"
	// EventTypeItemsRemoved is dispatched after a RemoveIf call, even if
	// nothing matched.
	EventTypeItemsRemoved EventType = "items_removed"
	// EventTypeError is dispatched when an operation fails.
	EventTypeError EventType = "error"
)

// Event describes a single change to a randomizer's state. PoolSize and
// Pending always reflect the state right after the change.
type Event struct {
	ID       uuid.UUID `json:"id"`
	BagID    uuid.UUID `json:"bagId"`
	Type     EventType `json:"eventType"`
	Created  time.Time `json:"creationTimestamp"`
	PoolSize int       `json:"poolSize"`
	Pending  int       `json:"pending"`
	Message  string    `json:"message"`
}

// EventSink is anything that wants to be told about randomizer events. Sinks
// are called synchronously, so they should return quickly and must not call
// back into the randomizer that dispatched the event.
type EventSink interface {
	HandleEvent(event Event)
}

// EventSinkFunc lets a plain function be used as an EventSink.
type EventSinkFunc func(event Event)

// HandleEvent calls f(event).
func (f EventSinkFunc) HandleEvent(event Event) {
	f(event)
}
