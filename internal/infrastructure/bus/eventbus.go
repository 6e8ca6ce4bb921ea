package bus

import (
	"context"
	"log/slog"
	"sync"

	"pagos-service/internal/domain/event"
	"pagos-service/internal/domain/repository"
)

// AllEvents subscribes a handler to every event type
const AllEvents = "*"

// EventHandler handles domain events
type EventHandler interface {
	Handle(ctx context.Context, event event.DomainEvent) error
}

// EventHandlerFunc allows functions to implement EventHandler
type EventHandlerFunc func(ctx context.Context, event event.DomainEvent) error

func (f EventHandlerFunc) Handle(ctx context.Context, event event.DomainEvent) error {
	return f(ctx, event)
}

// AuditBus is an audit sink that writes to a durable store first and then
// hands the event to the subscribed handlers. Nothing reaches the handlers
// when the store write fails; handler failures are logged, never returned.
type AuditBus struct {
	store    repository.AuditSink
	handlers map[string][]EventHandler
	logger   *slog.Logger
	mutex    sync.RWMutex
}

func NewAuditBus(store repository.AuditSink, logger *slog.Logger) *AuditBus {
	return &AuditBus{
		store:    store,
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

func (b *AuditBus) Subscribe(eventType string, handler EventHandler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Record implements repository.AuditSink.
func (b *AuditBus) Record(ctx context.Context, evt event.DomainEvent) error {
	if err := b.store.Record(ctx, evt); err != nil {
		return err
	}

	b.mutex.RLock()
	handlers := append(append([]EventHandler{}, b.handlers[evt.EventType()]...), b.handlers[AllEvents]...)
	b.mutex.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, evt); err != nil {
			b.logger.WarnContext(ctx, "audit subscriber failed",
				"type", evt.EventType(),
				"aggregate_id", evt.AggregateID(),
				"error", err,
			)
		}
	}
	return nil
}

// LogHandler writes every audited event to logger at Info level.
func LogHandler(logger *slog.Logger) EventHandler {
	return EventHandlerFunc(func(ctx context.Context, evt event.DomainEvent) error {
		logger.InfoContext(ctx, "audit event recorded",
			"type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"occurred_at", evt.OccurredAt(),
		)
		return nil
	})
}
