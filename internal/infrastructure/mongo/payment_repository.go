package mongo

import (
	"context"
	"time"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/pkg/errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type paymentDocument struct {
	ID                string               `bson:"_id"`
	OwnerID           string               `bson:"idUsuario"`
	PaymentMethodID   string               `bson:"idMPago"`
	ReservationID     string               `bson:"idReserva"`
	EventID           string               `bson:"idEvento"`
	Amount            primitive.Decimal128 `bson:"monto"`
	PaidAt            time.Time            `bson:"fechaPago"`
	CreatedAt         time.Time            `bson:"fechaCreacion"`
	ExternalPaymentID string               `bson:"idExternalPago"`
}

// PaymentRepository stores payments in the pagos collection
type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(database *mongo.Database) *PaymentRepository {
	return &PaymentRepository{collection: database.Collection(CollectionPayments)}
}

func (r *PaymentRepository) Save(ctx context.Context, p *aggregate.Payment) error {
	doc, err := toPaymentDocument(p)
	if err != nil {
		return errors.NewStoreCommandError("encode payment", err)
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return storeError("insert payment", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*aggregate.Payment, error) {
	var doc paymentDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, storeError("find payment", err)
	}
	return doc.toAggregate()
}

func (r *PaymentRepository) UpdateExternalPaymentID(ctx context.Context, id, externalPaymentID string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"idExternalPago": externalPaymentID}})
	if err != nil {
		return storeError("update external payment id", err)
	}
	if res.MatchedCount == 0 {
		return errors.NewStoreRecordAbsentError("payment", id)
	}
	return nil
}

func (r *PaymentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregate.Payment, error) {
	return r.find(ctx, bson.M{"idUsuario": ownerID})
}

func (r *PaymentRepository) ListByEvent(ctx context.Context, eventID string) ([]*aggregate.Payment, error) {
	return r.find(ctx, bson.M{"idEvento": eventID})
}

// ListPending matches an empty, null or missing external id.
func (r *PaymentRepository) ListPending(ctx context.Context) ([]*aggregate.Payment, error) {
	return r.find(ctx, bson.M{"idExternalPago": bson.M{"$in": bson.A{"", nil}}})
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M) ([]*aggregate.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fechaPago", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError("find payments", err)
	}
	defer cursor.Close(ctx)

	var docs []paymentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("decode payments", err)
	}

	payments := make([]*aggregate.Payment, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func toPaymentDocument(p *aggregate.Payment) (paymentDocument, error) {
	amount, err := toDecimal128(p.Amount())
	if err != nil {
		return paymentDocument{}, err
	}
	return paymentDocument{
		ID:                p.ID(),
		OwnerID:           p.OwnerID(),
		PaymentMethodID:   p.PaymentMethodID(),
		ReservationID:     p.ReservationID(),
		EventID:           p.EventID(),
		Amount:            amount,
		PaidAt:            p.PaidAt(),
		CreatedAt:         p.CreatedAt(),
		ExternalPaymentID: p.ExternalPaymentID(),
	}, nil
}

func (d paymentDocument) toAggregate() (*aggregate.Payment, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, errors.NewStoreCommandError("decode payment "+d.ID, err)
	}
	p, err := aggregate.ReconstructPayment(
		d.ID, d.PaymentMethodID, d.OwnerID, d.ReservationID, d.EventID,
		amount, d.PaidAt, d.CreatedAt, d.ExternalPaymentID,
	)
	if err != nil {
		return nil, errors.NewStoreCommandError("decode payment "+d.ID, err)
	}
	return p, nil
}
