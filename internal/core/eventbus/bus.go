package eventbus

import (
	"context"
	"slices"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers published payloads to subscribers on a single dispatch
// goroutine started with Start. Publishing never blocks: when the buffer is
// full the event is dropped and OnDrop hooks fire. A nil *EventBus accepts
// publishes and discards them.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := slices.Clone(bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.panicked(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func subscribe[T any](bus *EventBus, event Event, fn func(T)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], func(payload any) {
		if p, ok := payload.(T); ok {
			fn(p)
		}
	})
	bus.mu.Unlock()
}

func publish(bus *EventBus, event Event, payload any) {
	if bus == nil {
		return
	}
	bus.send(event, payload)
}

// PublishListClosed publishes a list.closed event.
func (bus *EventBus) PublishListClosed(p ListClosedPayload) {
	publish(bus, EventListClosed, p)
}

// SubscribeListClosed registers fn for list.closed events.
func (bus *EventBus) SubscribeListClosed(fn func(ListClosedPayload)) {
	subscribe(bus, EventListClosed, fn)
}

// PublishListEchoSuppressed publishes a list.echo-suppressed event.
func (bus *EventBus) PublishListEchoSuppressed(p ListEchoSuppressedPayload) {
	publish(bus, EventListEchoSuppressed, p)
}

// SubscribeListEchoSuppressed registers fn for list.echo-suppressed events.
func (bus *EventBus) SubscribeListEchoSuppressed(fn func(ListEchoSuppressedPayload)) {
	subscribe(bus, EventListEchoSuppressed, fn)
}

// PublishListMarkdownSynced publishes a list.markdown-synced event.
func (bus *EventBus) PublishListMarkdownSynced(p ListMarkdownSyncedPayload) {
	publish(bus, EventListMarkdownSynced, p)
}

// SubscribeListMarkdownSynced registers fn for list.markdown-synced events.
func (bus *EventBus) SubscribeListMarkdownSynced(fn func(ListMarkdownSyncedPayload)) {
	subscribe(bus, EventListMarkdownSynced, fn)
}

// PublishListPopulated publishes a list.populated event.
func (bus *EventBus) PublishListPopulated(p ListPopulatedPayload) {
	publish(bus, EventListPopulated, p)
}

// SubscribeListPopulated registers fn for list.populated events.
func (bus *EventBus) SubscribeListPopulated(fn func(ListPopulatedPayload)) {
	subscribe(bus, EventListPopulated, fn)
}

// PublishListTasksSynced publishes a list.tasks-synced event.
func (bus *EventBus) PublishListTasksSynced(p ListTasksSyncedPayload) {
	publish(bus, EventListTasksSynced, p)
}

// SubscribeListTasksSynced registers fn for list.tasks-synced events.
func (bus *EventBus) SubscribeListTasksSynced(fn func(ListTasksSyncedPayload)) {
	subscribe(bus, EventListTasksSynced, fn)
}

// PublishListUndoApplied publishes a list.undo-applied event.
func (bus *EventBus) PublishListUndoApplied(p ListUndoAppliedPayload) {
	publish(bus, EventListUndoApplied, p)
}

// SubscribeListUndoApplied registers fn for list.undo-applied events.
func (bus *EventBus) SubscribeListUndoApplied(fn func(ListUndoAppliedPayload)) {
	subscribe(bus, EventListUndoApplied, fn)
}

// PublishListUndoPushed publishes a list.undo-pushed event.
func (bus *EventBus) PublishListUndoPushed(p ListUndoPushedPayload) {
	publish(bus, EventListUndoPushed, p)
}

// SubscribeListUndoPushed registers fn for list.undo-pushed events.
func (bus *EventBus) SubscribeListUndoPushed(fn func(ListUndoPushedPayload)) {
	subscribe(bus, EventListUndoPushed, fn)
}

// PublishNotificationPublished publishes a notification.published event.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	publish(bus, EventNotificationPublished, p)
}

// SubscribeNotificationPublished registers fn for notification.published events.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribe(bus, EventNotificationPublished, fn)
}
