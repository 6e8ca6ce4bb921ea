package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagos-service/internal/application/command"
	"pagos-service/internal/application/query"
	"pagos-service/internal/application/services"
	"pagos-service/internal/config"
	"pagos-service/internal/domain/repository"
	"pagos-service/internal/infrastructure/bus"
	httpHandler "pagos-service/internal/infrastructure/http"
	"pagos-service/internal/infrastructure/lock"
	"pagos-service/internal/infrastructure/memory"
	"pagos-service/internal/infrastructure/mongo"
	"pagos-service/internal/infrastructure/peers"
	"pagos-service/internal/infrastructure/stripe"
)

type stores struct {
	methods  repository.PaymentMethodRepository
	payments repository.PaymentRepository
	audit    repository.AuditSink
	health   map[string]httpHandler.Pinger
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	var locker command.OwnerLocker = lock.NoopLocker{}
	if cfg.RedisURL != "" {
		redisLocker := lock.NewRedisLocker(lock.RedisConfig{Addr: cfg.RedisURL, TTL: cfg.OwnerLockTTL})
		defer redisLocker.Close()
		locker = redisLocker
		st.health["redis"] = redisLocker
		logger.Info("owner lock enabled", "redis", cfg.RedisURL)
	}

	audit := bus.NewAuditBus(st.audit, logger)
	audit.Subscribe(bus.AllEvents, bus.LogHandler(logger))

	gateway := stripe.NewGateway(stripe.StripeConfig{SecretKey: cfg.StripeSecretKey, Currency: cfg.StripeCurrency}, logger)
	notifier := peers.NewClient(peers.PeerConfig{
		ReservationsBaseURL: cfg.ReservationsBaseURL,
		ActivityBaseURL:     cfg.ActivityBaseURL,
		Timeout:             cfg.PeerTimeout,
	})

	controller := httpHandler.NewPagosController(
		services.NewPaymentMethodService(st.methods, audit, gateway, locker, notifier, logger),
		services.NewPaymentService(st.methods, st.payments, audit, gateway, notifier, logger),
		httpHandler.QueryHandlers{
			GetMethod:        query.NewGetPaymentMethodHandler(st.methods),
			ListOwnerMethods: query.NewListOwnerPaymentMethodsHandler(st.methods),
			ListAllMethods:   query.NewListAllPaymentMethodsHandler(st.methods),
			DefaultConflicts: query.NewFindDefaultConflictsHandler(st.methods),
			GetPayment:       query.NewGetPaymentHandler(st.payments),
			ListOwnerPays:    query.NewListOwnerPaymentsHandler(st.payments),
			ListEventPays:    query.NewListEventPaymentsHandler(st.payments),
			ListPending:      query.NewListPendingPaymentsHandler(st.payments),
		},
	)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpHandler.NewRouter(httpHandler.RouterConfig{
			Logger:         logger,
			Pagos:          controller,
			JWTSecret:      cfg.JWTSecret,
			RequestTimeout: cfg.RequestTimeout,
			Health:         st.health,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", cfg.StoreDriver, "auth", cfg.JWTSecret != "")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return &stores{
			methods:  memory.NewPaymentMethodRepository(),
			payments: memory.NewPaymentRepository(),
			audit:    memory.NewAuditLog(),
			health:   map[string]httpHandler.Pinger{},
			close:    func() {},
		}, nil
	}

	client, err := mongo.NewMongoClient(ctx, &mongo.MongoConfig{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Timeout:  cfg.MongoTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	db := client.GetDatabase()
	return &stores{
		methods:  mongo.NewPaymentMethodRepository(db),
		payments: mongo.NewPaymentRepository(db),
		audit:    mongo.NewAuditRepository(db),
		health:   map[string]httpHandler.Pinger{"mongo": client},
		close: func() {
			if err := client.Close(); err != nil {
				logger.Error("error closing MongoDB connection", "error", err)
			}
		},
	}, nil
}
