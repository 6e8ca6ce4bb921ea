package mongo

import (
	"context"
	"fmt"
	"time"

	"pagos-service/internal/domain/event"
	"pagos-service/pkg/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const auditLevelInfo = "INFO"

type auditDocument struct {
	ID              string                `bson:"_id"`
	OwnerID         string                `bson:"idUsuario"`
	PaymentID       string                `bson:"idPago,omitempty"`
	PaymentMethodID string                `bson:"idMPago,omitempty"`
	ReservationID   string                `bson:"idReserva,omitempty"`
	Amount          *primitive.Decimal128 `bson:"monto,omitempty"`
	Level           string                `bson:"level"`
	Type            string                `bson:"tipo"`
	Message         string                `bson:"mensaje"`
	Timestamp       time.Time             `bson:"timestamp"`
}

// AuditRepository appends audit records to the auditoriaPagos collection
type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(database *mongo.Database) *AuditRepository {
	return &AuditRepository{collection: database.Collection(CollectionAudit)}
}

// Record writes one audit document. Any failure is a store command error.
func (r *AuditRepository) Record(ctx context.Context, evt event.DomainEvent) error {
	doc, err := toAuditDocument(evt)
	if err != nil {
		return errors.NewStoreCommandError("encode audit record", err)
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return errors.NewStoreCommandError("insert audit record", err)
	}
	return nil
}

func toAuditDocument(evt event.DomainEvent) (auditDocument, error) {
	doc := auditDocument{
		ID:        uuid.NewString(),
		Level:     auditLevelInfo,
		Type:      evt.EventType(),
		Timestamp: evt.OccurredAt().UTC(),
	}

	switch e := evt.(type) {
	case *event.PaymentMethodRegistered:
		doc.OwnerID = e.OwnerID
		doc.PaymentMethodID = e.PaymentMethodID
		doc.Message = fmt.Sprintf("Se registró el método de pago '%s' (%s terminada en %s) del usuario '%s'.",
			e.PaymentMethodID, e.Brand, e.Last4, e.OwnerID)
	case *event.PaymentMethodDeleted:
		doc.OwnerID = e.OwnerID
		doc.PaymentMethodID = e.PaymentMethodID
		doc.Message = fmt.Sprintf("Se eliminó el método de pago '%s' del usuario '%s'.", e.PaymentMethodID, e.OwnerID)
	case *event.PaymentMethodDefaultChanged:
		doc.OwnerID = e.OwnerID
		doc.PaymentMethodID = e.PaymentMethodID
		state := "ya no es"
		if e.IsDefault {
			state = "ahora es"
		}
		doc.Message = fmt.Sprintf("El método de pago '%s' %s el predeterminado del usuario '%s'.", e.PaymentMethodID, state, e.OwnerID)
	case *event.PaymentRegistered:
		amount, err := toDecimal128(e.Amount)
		if err != nil {
			return auditDocument{}, err
		}
		doc.OwnerID = e.OwnerID
		doc.PaymentID = e.PaymentID
		doc.PaymentMethodID = e.PaymentMethodID
		doc.ReservationID = e.ReservationID
		doc.Amount = &amount
		doc.Message = fmt.Sprintf("Se registró el pago '%s' del usuario '%s' con respecto a la reserva '%s' por el monto de '%s'.",
			e.PaymentID, e.OwnerID, e.ReservationID, e.Amount.String())
	default:
		return auditDocument{}, fmt.Errorf("unsupported audit event %T", evt)
	}
	return doc, nil
}
