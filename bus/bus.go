package bus

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/naruu-io/naruu/logging"
)

// maxHistory bounds the event ring buffer; the oldest entries drop first.
const maxHistory = 100

// Handler consumes one event. Returning an error marks the dispatch as failed
// without affecting sibling handlers.
type Handler func(ctx context.Context, evt Event) error

// Dispatch reports the outcome of a single handler invocation during Publish.
type Dispatch struct {
	Handler string `json:"handler"`
	Status  string `json:"status"` // "ok" or "error"
	Err     string `json:"error,omitempty"`
}

type subscription struct {
	key     uintptr
	name    string
	handler Handler
}

// Options configures a Bus.
type Options struct {
	Logger logging.Logger
}

// Bus is a process-local publish/subscribe hub. It is safe for concurrent
// use; the subscription table and history are guarded by a mutex because the
// runtime may preempt between any two operations.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]subscription
	history []Event
	logger  logging.Logger
}

// New constructs an empty bus.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Bus{
		subs:   make(map[string][]subscription),
		logger: opts.Logger,
	}
}

// handlerKey identifies a handler by its function pointer so that registering
// the identical function twice is a no-op. Distinct closures have distinct
// pointers and count as distinct handlers.
func handlerKey(h Handler) uintptr {
	return reflect.ValueOf(h).Pointer()
}

func handlerName(h Handler) string {
	if fn := runtime.FuncForPC(handlerKey(h)); fn != nil {
		return fn.Name()
	}
	return "unknown"
}

// Subscribe registers a handler for an event type. Duplicate registration of
// the identical handler is a no-op.
func (b *Bus) Subscribe(eventType string, h Handler) {
	if h == nil {
		return
	}
	key := handlerKey(h)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[eventType] {
		if sub.key == key {
			return
		}
	}

	b.subs[eventType] = append(b.subs[eventType], subscription{
		key:     key,
		name:    handlerName(h),
		handler: h,
	})
	b.logger.Debug("event subscription added", "type", eventType, "handler", handlerName(h))
}

// Unsubscribe removes a handler from an event type. Removing a handler that
// was never registered is a no-op.
func (b *Bus) Unsubscribe(eventType string, h Handler) {
	if h == nil {
		return
	}
	key := handlerKey(h)

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[eventType]
	for i, sub := range subs {
		if sub.key == key {
			b.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
			b.logger.Debug("event subscription removed", "type", eventType, "handler", sub.name)
			return
		}
	}
}

// Publish records the event into history and invokes every handler subscribed
// to its type. Handlers run concurrently and Publish waits for all of them;
// completion order among handlers is unspecified. Each handler failure
// (error return or panic) is isolated and reported in the returned slice.
// Zero subscribers yields an empty slice.
func (b *Bus) Publish(ctx context.Context, evt Event) []Dispatch {
	b.mu.Lock()
	b.record(evt)
	subs := make([]subscription, len(b.subs[evt.Type]))
	copy(subs, b.subs[evt.Type])
	b.mu.Unlock()

	if len(subs) == 0 {
		b.logger.Debug("event has no subscribers", "type", evt.Type)
		return []Dispatch{}
	}

	b.logger.Info("publishing event", "type", evt.Type, "handlers", len(subs))

	results := make([]Dispatch, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub subscription) {
			defer wg.Done()
			if err := safeCall(ctx, sub.handler, evt); err != nil {
				b.logger.Error("event handler failed",
					"type", evt.Type, "handler", sub.name, "error", err)
				results[i] = Dispatch{Handler: sub.name, Status: "error", Err: err.Error()}
				return
			}
			results[i] = Dispatch{Handler: sub.name, Status: "ok"}
		}(i, sub)
	}
	wg.Wait()

	return results
}

// safeCall invokes the handler, converting a panic into an error so one
// misbehaving subscriber cannot take down the publisher.
func safeCall(ctx context.Context, h Handler, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, evt)
}

// Handlers returns the names of handlers currently subscribed to an event type.
func (b *Bus) Handlers(eventType string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.subs[eventType]))
	for _, sub := range b.subs[eventType] {
		names = append(names, sub.name)
	}
	return names
}

// History returns up to limit of the most recent events in publish order.
// A non-positive limit returns the full retained history.
func (b *Bus) History(limit int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit <= 0 || limit > len(b.history) {
		limit = len(b.history)
	}
	out := make([]Event, limit)
	copy(out, b.history[len(b.history)-limit:])
	return out
}

// Clear resets all subscriptions and history. Intended for test isolation.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscription)
	b.history = nil
}

// record appends the event to the bounded history; caller holds the lock.
func (b *Bus) record(evt Event) {
	b.history = append(b.history, evt)
	if len(b.history) > maxHistory {
		b.history = b.history[len(b.history)-maxHistory:]
	}
}
