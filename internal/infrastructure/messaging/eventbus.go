// Package messaging implements the in-process event bus. Mutation handlers
// publish domain events after the in-memory commit; collaborators (the
// conversational layer, analytics) subscribe without polling the stores.
package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
	"github.com/awslearn-hub/tutor-core/pkg/logger"
)

// ErrEventBusClosed - the bus no longer accepts events or subscriptions.
var ErrEventBusClosed = errors.New("event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// EventBus is a simple in-memory publish/subscribe bus. Suitable for
// single-instance deployments and testing. Handler errors are logged,
// never propagated back to the publisher: a misbehaving subscriber must
// not fail the mutation that triggered the event.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	async       bool
	log         *logger.Logger
	closed      bool
	wg          sync.WaitGroup
}

// Config contains event bus configuration.
type Config struct {
	// Async dispatches each event to handlers in its own goroutine.
	// Synchronous delivery is deterministic and preferred in tests.
	Async bool

	// Logger for handler error reporting.
	Logger *logger.Logger
}

// NewEventBus creates a new in-memory event bus.
func NewEventBus(cfg Config) *EventBus {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &EventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		async:    cfg.Async,
		log:      log.With(logger.String("component", "eventbus")),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.log.Debug("subscribed handler", logger.String("event_type", string(eventType)))
	return nil
}

// SubscribeAll registers a handler invoked for every event.
func (b *EventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, handler)
	b.log.Debug("subscribed global handler")
	return nil
}

// Publish delivers an event to all matching handlers.
func (b *EventBus) Publish(ctx context.Context, event shared.Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	targets := make([]shared.EventHandler, 0,
		len(b.handlers[event.EventType()])+len(b.allHandlers))
	targets = append(targets, b.handlers[event.EventType()]...)
	targets = append(targets, b.allHandlers...)
	if b.async {
		// Reserve the handlers while still holding the lock that proved the
		// bus open, so Close cannot observe an empty WaitGroup and return
		// before these handlers run.
		b.wg.Add(len(targets))
	}
	b.mu.RUnlock()

	for _, h := range targets {
		if b.async {
			go func(h shared.EventHandler) {
				defer b.wg.Done()
				b.invoke(ctx, h, event)
			}(h)
		} else {
			b.invoke(ctx, h, event)
		}
	}
	return nil
}

// Close stops accepting events and waits for in-flight async handlers.
func (b *EventBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *EventBus) invoke(ctx context.Context, h shared.EventHandler, event shared.Event) {
	if err := h(ctx, event); err != nil {
		b.log.Error("event handler failed",
			logger.String("event_type", string(event.EventType())),
			logger.String("learner_id", event.AggregateID()),
			logger.Err(err))
	}
}
