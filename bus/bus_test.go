package bus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_NoSubscribers(t *testing.T) {
	b := New()

	results := b.Publish(context.Background(), NewEvent("nobody.cares", nil, "test"))

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestPublish_AllHandlersInvoked(t *testing.T) {
	b := New()

	var calls int32
	h1 := func(context.Context, Event) error { atomic.AddInt32(&calls, 1); return nil }
	h2 := func(context.Context, Event) error { atomic.AddInt32(&calls, 1); return nil }

	b.Subscribe("test.event", h1)
	b.Subscribe("test.event", h2)

	results := b.Publish(context.Background(), NewEvent("test.event", map[string]any{"k": "v"}, "test"))

	assert.Len(t, results, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "ok", r.Status)
	}
}

func TestPublish_HandlerFailureIsolated(t *testing.T) {
	b := New()

	ok := func(context.Context, Event) error { return nil }
	failing := func(context.Context, Event) error { return errors.New("boom") }
	alsoOK := func(context.Context, Event) error { return nil }

	b.Subscribe("test.event", ok)
	b.Subscribe("test.event", failing)
	b.Subscribe("test.event", alsoOK)

	results := b.Publish(context.Background(), NewEvent("test.event", nil, "test"))

	require.Len(t, results, 3)

	var errorCount, okCount int
	for _, r := range results {
		switch r.Status {
		case "error":
			errorCount++
			assert.Equal(t, "boom", r.Err)
		case "ok":
			okCount++
		}
	}
	assert.Equal(t, 1, errorCount)
	assert.Equal(t, 2, okCount)
}

func TestPublish_HandlerPanicIsolated(t *testing.T) {
	b := New()

	b.Subscribe("test.event", func(context.Context, Event) error { panic("oh no") })

	results := b.Publish(context.Background(), NewEvent("test.event", nil, "test"))

	require.Len(t, results, 1)
	assert.Equal(t, "error", results[0].Status)
	assert.Contains(t, results[0].Err, "panicked")
}

func TestSubscribe_DuplicateIsNoOp(t *testing.T) {
	b := New()

	var calls int32
	h := func(context.Context, Event) error { atomic.AddInt32(&calls, 1); return nil }

	b.Subscribe("test.event", h)
	b.Subscribe("test.event", h)

	results := b.Publish(context.Background(), NewEvent("test.event", nil, "test"))

	assert.Len(t, results, 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	var calls int32
	h := func(context.Context, Event) error { atomic.AddInt32(&calls, 1); return nil }

	b.Subscribe("test.event", h)
	b.Unsubscribe("test.event", h)

	results := b.Publish(context.Background(), NewEvent("test.event", nil, "test"))

	assert.Empty(t, results)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestUnsubscribe_UnknownHandlerIsNoOp(t *testing.T) {
	b := New()

	h := func(context.Context, Event) error { return nil }

	assert.NotPanics(t, func() {
		b.Unsubscribe("test.event", h)
	})
}

func TestHistory_MostRecentInPublishOrder(t *testing.T) {
	b := New()

	for i := 0; i < 5; i++ {
		b.Publish(context.Background(), NewEvent(fmt.Sprintf("event.%d", i), nil, "test"))
	}

	recent := b.History(3)

	require.Len(t, recent, 3)
	assert.Equal(t, "event.2", recent[0].Type)
	assert.Equal(t, "event.3", recent[1].Type)
	assert.Equal(t, "event.4", recent[2].Type)
}

func TestHistory_BoundedRing(t *testing.T) {
	b := New()

	for i := 0; i < 150; i++ {
		b.Publish(context.Background(), NewEvent(fmt.Sprintf("event.%d", i), nil, "test"))
	}

	all := b.History(0)

	require.Len(t, all, 100)
	// Oldest entries dropped first.
	assert.Equal(t, "event.50", all[0].Type)
	assert.Equal(t, "event.149", all[99].Type)
}

func TestClear(t *testing.T) {
	b := New()

	h := func(context.Context, Event) error { return nil }
	b.Subscribe("test.event", h)
	b.Publish(context.Background(), NewEvent("test.event", nil, "test"))

	b.Clear()

	assert.Empty(t, b.History(0))
	assert.Empty(t, b.Handlers("test.event"))
}

func TestPublish_EventStamped(t *testing.T) {
	b := New()

	evt := NewEvent("test.event", map[string]any{"k": "v"}, "unit")
	b.Publish(context.Background(), evt)

	history := b.History(1)
	require.Len(t, history, 1)
	assert.Equal(t, "unit", history[0].Source)
	assert.Equal(t, "v", history[0].Data["k"])
	assert.False(t, history[0].Timestamp.IsZero())
}
