package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"MONGO_URI":             "mongodb://localhost:27017",
		"STRIPE_SECRET_KEY":     "sk_test_1",
		"RESERVATIONS_BASE_URL": "http://reservas/api/Reservas",
		"ACTIVITY_BASE_URL":     "http://usuarios/api/Usuarios",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(baseEnv()))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "pagos", cfg.MongoDatabase)
	assert.Equal(t, "usd", cfg.StripeCurrency)
	assert.Equal(t, 10*time.Second, cfg.PeerTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestFromEnv_Overrides(t *testing.T) {
	values := baseEnv()
	values["PORT"] = "9090"
	values["STRIPE_CURRENCY"] = "EUR"
	values["PEER_TIMEOUT"] = "3s"
	values["LOG_LEVEL"] = "debug"
	values["REDIS_URL"] = "localhost:6379"

	cfg, err := FromEnv(env(values))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "eur", cfg.StripeCurrency)
	assert.Equal(t, 3*time.Second, cfg.PeerTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
}

func TestFromEnv_MissingRequired(t *testing.T) {
	_, err := FromEnv(env(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI is required")
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY is required")
	assert.Contains(t, err.Error(), "ACTIVITY_BASE_URL is required")
}

func TestFromEnv_MemoryStoreNeedsNoMongo(t *testing.T) {
	values := baseEnv()
	delete(values, "MONGO_URI")
	values["STORE_DRIVER"] = "memory"
	cfg, err := FromEnv(env(values))
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	values := baseEnv()
	values["STORE_DRIVER"] = "sqlite"
	values["MONGO_TIMEOUT"] = "soon"
	values["LOG_LEVEL"] = "loud"
	_, err := FromEnv(env(values))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "MONGO_TIMEOUT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestStoreOnly(t *testing.T) {
	_, err := StoreOnly(env(map[string]string{}))
	require.Error(t, err)

	cfg, err := StoreOnly(env(map[string]string{"MONGO_URI": "mongodb://x"}))
	require.NoError(t, err)
	assert.Equal(t, "pagos", cfg.MongoDatabase)
}
