package mongo

import (
	"context"
	"time"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type paymentMethodDocument struct {
	ID                string    `bson:"_id"`
	OwnerID           string    `bson:"idUsuario"`
	GatewayMethodID   string    `bson:"idMPagoStripe"`
	GatewayCustomerID string    `bson:"idClienteStripe"`
	Brand             string    `bson:"marca"`
	ExpiryMonth       int       `bson:"mesExpiracion"`
	ExpiryYear        int       `bson:"anioExpiracion"`
	Last4             string    `bson:"ultimos4"`
	RegisteredAt      time.Time `bson:"fechaRegistro"`
	IsDefault         bool      `bson:"predeterminado"`
}

// PaymentMethodRepository stores payment methods in the mpagos collection
type PaymentMethodRepository struct {
	collection *mongo.Collection
}

func NewPaymentMethodRepository(database *mongo.Database) *PaymentMethodRepository {
	return &PaymentMethodRepository{collection: database.Collection(CollectionPaymentMethods)}
}

func (r *PaymentMethodRepository) Save(ctx context.Context, m *aggregate.PaymentMethod) error {
	if _, err := r.collection.InsertOne(ctx, toPaymentMethodDocument(m)); err != nil {
		return storeError("insert payment method", err)
	}
	return nil
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id string) (*aggregate.PaymentMethod, error) {
	var doc paymentMethodDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, storeError("find payment method", err)
	}
	return doc.toAggregate()
}

func (r *PaymentMethodRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregate.PaymentMethod, error) {
	return r.find(ctx, bson.M{"idUsuario": ownerID})
}

func (r *PaymentMethodRepository) ListAll(ctx context.Context) ([]*aggregate.PaymentMethod, error) {
	return r.find(ctx, bson.M{})
}

func (r *PaymentMethodRepository) SetDefault(ctx context.Context, id string, isDefault bool) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"predeterminado": isDefault}})
	if err != nil {
		return storeError("update default flag", err)
	}
	if res.MatchedCount == 0 {
		return errors.NewStoreRecordAbsentError("payment method", id)
	}
	return nil
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, storeError("delete payment method", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *PaymentMethodRepository) find(ctx context.Context, filter bson.M) ([]*aggregate.PaymentMethod, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fechaRegistro", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError("find payment methods", err)
	}
	defer cursor.Close(ctx)

	var docs []paymentMethodDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("decode payment methods", err)
	}

	methods := make([]*aggregate.PaymentMethod, 0, len(docs))
	for _, doc := range docs {
		m, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func toPaymentMethodDocument(m *aggregate.PaymentMethod) paymentMethodDocument {
	return paymentMethodDocument{
		ID:                m.ID(),
		OwnerID:           m.OwnerID(),
		GatewayMethodID:   m.GatewayMethodID(),
		GatewayCustomerID: m.GatewayCustomerID(),
		Brand:             m.Brand(),
		ExpiryMonth:       m.ExpiryMonth(),
		ExpiryYear:        m.ExpiryYear(),
		Last4:             m.Last4(),
		RegisteredAt:      m.RegisteredAt(),
		IsDefault:         m.IsDefault(),
	}
}

// toAggregate re-checks the stored fields; a document breaking a format rule
// is reported as a store failure.
func (d paymentMethodDocument) toAggregate() (*aggregate.PaymentMethod, error) {
	m, err := aggregate.ReconstructPaymentMethod(
		d.ID, d.OwnerID, d.GatewayMethodID, d.GatewayCustomerID, d.Brand,
		d.ExpiryMonth, d.ExpiryYear, d.Last4, d.RegisteredAt, d.IsDefault,
	)
	if err != nil {
		return nil, errors.NewStoreCommandError("decode payment method "+d.ID, err)
	}
	return m, nil
}
