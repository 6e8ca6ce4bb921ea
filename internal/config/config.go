package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config is the service configuration read from the environment
type Config struct {
	Port           string
	LogLevel       slog.Level
	RequestTimeout time.Duration

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	StripeSecretKey string
	StripeCurrency  string

	ReservationsBaseURL string
	ActivityBaseURL     string
	PeerTimeout         time.Duration

	RedisURL     string
	OwnerLockTTL time.Duration

	JWTSecret string
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}
	cfg := &Config{
		Port:                p.str("PORT", "8080"),
		RequestTimeout:      p.duration("REQUEST_TIMEOUT", 30*time.Second),
		StoreDriver:         strings.ToLower(p.str("STORE_DRIVER", StoreMongo)),
		MongoURI:            p.str("MONGO_URI", ""),
		MongoDatabase:       p.str("MONGO_DATABASE", "pagos"),
		MongoTimeout:        p.duration("MONGO_TIMEOUT", 10*time.Second),
		StripeSecretKey:     p.str("STRIPE_SECRET_KEY", ""),
		StripeCurrency:      strings.ToLower(p.str("STRIPE_CURRENCY", "usd")),
		ReservationsBaseURL: p.str("RESERVATIONS_BASE_URL", ""),
		ActivityBaseURL:     p.str("ACTIVITY_BASE_URL", ""),
		PeerTimeout:         p.duration("PEER_TIMEOUT", 10*time.Second),
		RedisURL:            p.str("REDIS_URL", ""),
		OwnerLockTTL:        p.duration("OWNER_LOCK_TTL", 10*time.Second),
		JWTSecret:           p.str("JWT_SECRET", ""),
	}
	cfg.LogLevel = p.level("LOG_LEVEL")

	switch cfg.StoreDriver {
	case StoreMongo:
		p.require("MONGO_URI", cfg.MongoURI)
	case StoreMemory:
	default:
		p.errs = append(p.errs, fmt.Sprintf("STORE_DRIVER must be %q or %q", StoreMongo, StoreMemory))
	}
	p.require("STRIPE_SECRET_KEY", cfg.StripeSecretKey)
	p.require("RESERVATIONS_BASE_URL", cfg.ReservationsBaseURL)
	p.require("ACTIVITY_BASE_URL", cfg.ActivityBaseURL)

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(p.errs, "; "))
	}
	return cfg, nil
}

// StoreOnly reads just what the reporting CLI needs.
func StoreOnly(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}
	cfg := &Config{
		LogLevel:      p.level("LOG_LEVEL"),
		MongoURI:      p.str("MONGO_URI", ""),
		MongoDatabase: p.str("MONGO_DATABASE", "pagos"),
		MongoTimeout:  p.duration("MONGO_TIMEOUT", 10*time.Second),
	}
	p.require("MONGO_URI", cfg.MongoURI)
	if len(p.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(p.errs, "; "))
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	errs   []string
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		p.errs = append(p.errs, fmt.Sprintf("%s must be a non-negative duration", key))
		return fallback
	}
	return d
}

func (p *parser) level(key string) slog.Level {
	var level slog.Level
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return slog.LevelInfo
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s must be one of debug, info, warn, error", key))
		return slog.LevelInfo
	}
	return level
}

func (p *parser) require(key, value string) {
	if value == "" {
		p.errs = append(p.errs, key+" is required")
	}
}
