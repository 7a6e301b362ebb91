// Package subscriptions makes it easy to fan bag events out to any number of
// channel-based listeners.
package subscriptions

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Parkreiner/randombag"
	"github.com/google/uuid"
)

const (
	maxSubscriberGoroutines = 100
	defaultSendTimeout      = 2 * time.Second
)

// ErrClosed is returned by every method once the manager has been closed.
var ErrClosed = errors.New("subscriptions: manager is closed")

// Subscriber is anything that lets a system listen to bag events.
type Subscriber interface {
	// Subscribe returns a channel that receives every event whose type is in
	// eventTypes. A nil or empty slice subscribes to ALL events. The channel
	// is closed when unsubscribe is called or the subscriber shuts down.
	Subscribe(eventTypes []randombag.EventType) (events <-chan randombag.Event, unsubscribe func(), err error)
}

type subscriptionEntry struct {
	id         uuid.UUID
	eventChan  chan randombag.Event
	eventTypes []randombag.EventType
}

// Manager fans events out to subscribers. It is a randombag.EventSink, so it
// can be handed straight to a bag; each dispatch waits until every matching
// subscriber has either received the event or timed out, which keeps events
// in order for every individual subscriber.
type Manager struct {
	subs []subscriptionEntry
	// Should always be buffered with some size
	routineBuffer chan struct{}
	sendTimeout   time.Duration
	closed        bool
	mtx           *sync.Mutex
}

var (
	_ Subscriber          = &Manager{}
	_ randombag.EventSink = &Manager{}
)

// New creates a Manager. A non-positive sendTimeout falls back to two seconds.
func New(sendTimeout time.Duration) *Manager {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	buffer := make(chan struct{}, maxSubscriberGoroutines)
	for i := 0; i < maxSubscriberGoroutines; i++ {
		buffer <- struct{}{}
	}

	return &Manager{
		subs:          nil,
		routineBuffer: buffer,
		sendTimeout:   sendTimeout,
		mtx:           &sync.Mutex{},
	}
}

// HandleEvent dispatches the event, dropping it for any subscriber that isn't
// keeping up.
func (sm *Manager) HandleEvent(event randombag.Event) {
	_ = sm.DispatchEvent(event)
}

// DispatchEvent sends the event to every subscriber that asked for its type.
// It returns an error if the manager is closed, or if any of those
// subscribers failed to receive it in time.
func (sm *Manager) DispatchEvent(event randombag.Event) error {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	if sm.closed {
		return ErrClosed
	}

	eligible := 0
	var failed int
	var failedMtx sync.Mutex
	wg := sync.WaitGroup{}

	for _, s := range sm.subs {
		if !isEligibleForDispatch(s, event) {
			continue
		}

		eligible++
		wg.Add(1)
		<-sm.routineBuffer
		go func() {
			defer func() {
				wg.Done()
				sm.routineBuffer <- struct{}{}
			}()

			timer := time.NewTimer(sm.sendTimeout)
			defer timer.Stop()

			select {
			case s.eventChan <- event:
			case <-timer.C:
				failedMtx.Lock()
				failed++
				failedMtx.Unlock()
			}
		}()
	}
	wg.Wait()

	if failed != 0 {
		return fmt.Errorf("dispatch failed for %d/%d subscribers", failed, eligible)
	}
	return nil
}

// Subscribe registers a new subscriber.
func (sm *Manager) Subscribe(eventTypes []randombag.EventType) (<-chan randombag.Event, func(), error) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	if sm.closed {
		return nil, nil, ErrClosed
	}

	subID := uuid.New()
	eventChan := make(chan randombag.Event, 1)
	sm.subs = append(sm.subs, subscriptionEntry{
		id:         subID,
		eventChan:  eventChan,
		eventTypes: slices.Clone(eventTypes),
	})

	once := sync.Once{}
	unsubscribe := func() {
		once.Do(func() {
			sm.mtx.Lock()
			defer sm.mtx.Unlock()
			sm.remove(subID)
		})
	}
	return eventChan, unsubscribe, nil
}

// remove must only be called while the lock is held. Removing an ID that is
// already gone is a no-op.
func (sm *Manager) remove(subID uuid.UUID) {
	idx := slices.IndexFunc(sm.subs, func(s subscriptionEntry) bool {
		return s.id == subID
	})
	if idx == -1 {
		return
	}

	close(sm.subs[idx].eventChan)
	sm.subs = slices.Delete(sm.subs, idx, idx+1)
}

// Len returns the number of active subscriptions.
func (sm *Manager) Len() int {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	return len(sm.subs)
}

// Close unsubscribes everybody, closing their channels. Calling it more than
// once is a no-op.
func (sm *Manager) Close() error {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()

	if sm.closed {
		return nil
	}
	sm.closed = true

	for _, s := range sm.subs {
		close(s.eventChan)
	}
	sm.subs = nil
	return nil
}

func isEligibleForDispatch(subscription subscriptionEntry, event randombag.Event) bool {
	if len(subscription.eventTypes) == 0 {
		return true
	}
	return slices.Contains(subscription.eventTypes, event.Type)
}
