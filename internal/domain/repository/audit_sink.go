package repository

import (
	"context"

	"pagos-service/internal/domain/event"
)

// AuditSink appends domain events to the audit trail.
type AuditSink interface {
	Record(ctx context.Context, evt event.DomainEvent) error
}
