// Package events carries login audit and leave workflow notifications between the services that
// produce them and the handlers that log or forward them. Delivery is in-process only.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Event is anything published on the bus. Concrete events embed BaseEvent.
type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent holds the envelope shared by auth and leave events. Data is what log sinks see,
// so it must never hold credentials.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// EventBus fans an event out to every handler subscribed to its type.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	pending     sync.WaitGroup
	logger      *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
	n := len(eb.subscribers[eventType])
	eb.mu.Unlock()

	eb.logger.Info("event handler registered", "event_type", eventType, "total_handlers", n)
}

// handlersFor returns a snapshot so dispatch never holds the lock while handlers run.
func (eb *EventBus) handlersFor(event Event) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	hs := eb.subscribers[event.EventType()]
	if len(hs) == 0 {
		eb.logger.Debug("no handlers for event type", "event_type", event.EventType())
		return nil
	}
	return append([]Handler(nil), hs...)
}

// Publish runs each handler on its own goroutine and returns immediately. Handler errors and
// panics are logged. The handlers see ctx values but not its cancellation, since a login or leave
// request usually finishes before its notifications do.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.handlersFor(event)
	if handlers == nil {
		return nil
	}
	eb.logger.Debug("publishing event", "event_type", event.EventType(), "event_id", event.EventID(), "handlers_count", len(handlers))

	detached := context.WithoutCancel(ctx)
	eb.pending.Add(len(handlers))
	for _, h := range handlers {
		go func(h Handler) {
			defer eb.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					eb.logger.Error("event handler panicked", "event_type", event.EventType(), "event_id", event.EventID(), "panic", r)
				}
			}()
			if err := h(detached, event); err != nil {
				eb.logFailure(event, err)
			}
		}(h)
	}
	return nil
}

// PublishSync runs handlers in subscription order and stops at the first error.
// The event CLI uses it so a failing handler shows up in the exit status.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range eb.handlersFor(event) {
		if err := h(ctx, event); err != nil {
			eb.logFailure(event, err)
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// Wait blocks until every handler started by Publish has returned. The server calls it on shutdown.
func (eb *EventBus) Wait() {
	eb.pending.Wait()
}

func (eb *EventBus) logFailure(event Event, err error) {
	eb.logger.Error("event handler failed", "event_type", event.EventType(), "event_id", event.EventID(), "error", err)
}
