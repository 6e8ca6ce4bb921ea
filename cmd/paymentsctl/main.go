package main

import (
	"context"
	"fmt"
	"os"

	"pagos-service/internal/config"
	"pagos-service/internal/domain/repository"
	"pagos-service/internal/infrastructure/mongo"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

// openStore connects to MongoDB and returns the read repositories.
type openStore func(ctx context.Context) (repository.PaymentMethodRepository, repository.PaymentRepository, func(), error)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "paymentsctl",
		Short:         "Reconciliation reports for the payments store",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(pendingCmd(openMongo))
	rootCmd.AddCommand(checkDefaultsCmd(openMongo))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openMongo(ctx context.Context) (repository.PaymentMethodRepository, repository.PaymentRepository, func(), error) {
	cfg, err := config.StoreOnly(os.Getenv)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := mongo.NewMongoClient(ctx, &mongo.MongoConfig{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Timeout:  cfg.MongoTimeout,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	db := client.GetDatabase()
	return mongo.NewPaymentMethodRepository(db), mongo.NewPaymentRepository(db), func() { _ = client.Close() }, nil
}
