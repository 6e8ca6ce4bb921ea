package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	CollectionPaymentMethods = "mpagos"
	CollectionPayments       = "pagos"
	CollectionAudit          = "auditoriaPagos"
)

// MongoConfig holds configuration for MongoDB connection
type MongoConfig struct {
	URI      string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// MongoClient wraps the MongoDB client and database
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
	config   *MongoConfig
}

// NewMongoClient connects and pings before returning.
func NewMongoClient(ctx context.Context, config *MongoConfig) (*MongoClient, error) {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(config.URI).
		SetServerSelectionTimeout(config.Timeout)

	if config.Username != "" && config.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: config.Username,
			Password: config.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoClient{
		client:   client,
		database: client.Database(config.Database),
		config:   config,
	}, nil
}

// GetDatabase returns the MongoDB database
func (mc *MongoClient) GetDatabase() *mongo.Database {
	return mc.database
}

// GetCollection returns a MongoDB collection
func (mc *MongoClient) GetCollection(name string) *mongo.Collection {
	return mc.database.Collection(name)
}

// EnsureIndexes creates the lookup indexes used by the repositories.
func (mc *MongoClient) EnsureIndexes(ctx context.Context) error {
	byOwner := mongo.IndexModel{Keys: bson.D{{Key: "idUsuario", Value: 1}}}

	if _, err := mc.GetCollection(CollectionPaymentMethods).Indexes().CreateOne(ctx, byOwner); err != nil {
		return fmt.Errorf("failed to index %s: %w", CollectionPaymentMethods, err)
	}
	_, err := mc.GetCollection(CollectionPayments).Indexes().CreateMany(ctx, []mongo.IndexModel{
		byOwner,
		{Keys: bson.D{{Key: "idEvento", Value: 1}}},
		{Keys: bson.D{{Key: "idExternalPago", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", CollectionPayments, err)
	}
	return nil
}

// Close closes the MongoDB connection
func (mc *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mc.config.Timeout)
	defer cancel()

	return mc.client.Disconnect(ctx)
}

// Ping tests the MongoDB connection
func (mc *MongoClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, mc.config.Timeout)
	defer cancel()

	return mc.client.Ping(ctx, nil)
}
