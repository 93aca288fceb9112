package eventbus

import (
	"slices"
	"sync"
)

// hookList is an append-only list of callbacks safe for concurrent use.
// Callbacks run on a snapshot so a hook may register further hooks.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookList[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *hookList[F]) snapshot() []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.fns)
}

type hooks struct {
	publish hookList[func(Event, any)]
	drop    hookList[func(Event, any)]
	panics  hookList[func(Event, any, any)]
}

// OnPublish registers fn to run after an event is queued for dispatch.
func (bus *EventBus) OnPublish(fn func(event Event, payload any)) { bus.hooks.publish.add(fn) }

// OnDrop registers fn to run when an event is discarded because the buffer
// is full.
func (bus *EventBus) OnDrop(fn func(event Event, payload any)) { bus.hooks.drop.add(fn) }

// OnPanic registers fn to run with the recovered value when a subscriber
// panics. A panicking hook is itself recovered and ignored.
func (bus *EventBus) OnPanic(fn func(event Event, payload, recovered any)) {
	bus.hooks.panics.add(fn)
}

// send queues an event without blocking.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range bus.hooks.publish.snapshot() {
			fn(event, payload)
		}
	default:
		for _, fn := range bus.hooks.drop.snapshot() {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) panicked(event Event, payload, recovered any) {
	for _, fn := range bus.hooks.panics.snapshot() {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
