// Package testbus runs a real EventBus in tests and records every event
// published on it.
package testbus

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/marksync/internal/core/eventbus"
)

// RecordedEvent holds a captured event name and payload.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus is a started EventBus that records published events.
type Bus struct {
	*eventbus.EventBus

	mu      sync.Mutex
	events  []RecordedEvent
	changed chan struct{}
}

// New starts a bus that is stopped when the test completes. Events are
// recorded as they are published, before subscribers run.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus: eventbus.New(64),
		changed:  make(chan struct{}),
	}
	tb.OnPublish(tb.record)

	ctx, cancel := context.WithCancel(context.Background())
	go tb.Start(ctx)
	t.Cleanup(cancel)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = append(tb.events, RecordedEvent{Event: event, Payload: payload})
	close(tb.changed)
	tb.changed = make(chan struct{})
}

// Events returns a copy of all recorded events.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return slices.Clone(tb.events)
}

// Reset clears all recorded events.
func (tb *Bus) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.events = nil
}

// Count returns how many events of the given type were recorded.
func (tb *Bus) Count(event eventbus.Event) int {
	n := 0
	for _, e := range tb.Events() {
		if e.Event == event {
			n++
		}
	}
	return n
}

// WaitFor blocks until an event of the given type has been recorded or the
// timeout expires, and reports whether it was seen.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		tb.mu.Lock()
		seen := slices.ContainsFunc(tb.events, func(e RecordedEvent) bool { return e.Event == event })
		changed := tb.changed
		tb.mu.Unlock()

		if seen {
			return true
		}

		select {
		case <-changed:
		case <-timer.C:
			return false
		}
	}
}

// Last returns the payload of the most recent event of the given type.
func Last[T any](tb *Bus, event eventbus.Event) (T, bool) {
	events := tb.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Event != event {
			continue
		}
		if p, ok := events[i].Payload.(T); ok {
			return p, true
		}
	}
	var zero T
	return zero, false
}

// AssertPublished fails the test unless an event of the given type is
// recorded within half a second.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published, but it was not", event)
	}
}

// AssertNotPublished fails the test if an event of the given type is
// recorded within wait.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	if tb.WaitFor(event, wait) {
		t.Errorf("expected event %q to not be published, but it was", event)
	}
}
