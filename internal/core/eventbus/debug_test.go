package eventbus_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/marksync/internal/core/eventbus"
	"github.com/colonyops/marksync/internal/core/eventbus/testbus"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishListPopulated(eventbus.ListPopulatedPayload{ListID: "groceries", Count: 2})
	tb.PublishListEchoSuppressed(eventbus.ListEchoSuppressedPayload{
		ListID:    "groceries",
		Direction: eventbus.DirectionToMarkdown,
	})

	tb.AssertPublished(t, eventbus.EventListEchoSuppressed)
	assert.Contains(t, buf.String(), `"event":"list.populated"`)
	assert.Contains(t, buf.String(), `"list_id":"groceries"`)
}

func TestRegisterDebugLogger_SubscriberPanic(t *testing.T) {
	tb := testbus.New(t)

	var buf safeBuffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf))

	tb.SubscribeListClosed(func(eventbus.ListClosedPayload) {
		panic("boom")
	})
	delivered := make(chan struct{})
	tb.SubscribeListUndoApplied(func(eventbus.ListUndoAppliedPayload) {
		close(delivered)
	})

	tb.PublishListClosed(eventbus.ListClosedPayload{ListID: "a"})
	tb.PublishListUndoApplied(eventbus.ListUndoAppliedPayload{ListID: "a", Op: "delete"})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("dispatch stopped after a subscriber panic")
	}
	assert.Contains(t, buf.String(), `"panic":"boom"`)
}

func TestNilBus_PublishIsNoop(t *testing.T) {
	var bus *eventbus.EventBus
	assert.NotPanics(t, func() {
		bus.PublishListTasksSynced(eventbus.ListTasksSyncedPayload{ListID: "x"})
	})
}

// safeBuffer guards a bytes.Buffer written from the dispatch goroutine.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
