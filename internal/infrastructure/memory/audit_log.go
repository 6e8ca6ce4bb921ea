package memory

import (
	"context"
	"sync"

	"pagos-service/internal/domain/event"
	"pagos-service/pkg/errors"
)

// AuditLog records audit events in memory.
type AuditLog struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) Record(ctx context.Context, evt event.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreCommandError("write audit record", err)
	}
	a.mu.Lock()
	a.events = append(a.events, evt)
	a.mu.Unlock()
	return nil
}

// Events returns a copy of everything recorded so far.
func (a *AuditLog) Events() []event.DomainEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]event.DomainEvent(nil), a.events...)
}

// Types returns the audit type of every recorded event, in order.
func (a *AuditLog) Types() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	types := make([]string, len(a.events))
	for i, e := range a.events {
		types[i] = e.EventType()
	}
	return types
}
