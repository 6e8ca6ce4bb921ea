package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pagos:default:"

// NoopLocker never blocks. Used when no Redis is configured.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

// RedisConfig configures the distributed owner lock.
type RedisConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
	Tries    int
}

// RedisLocker takes a redsync mutex per owner so that concurrent default
// changes for the same owner run one at a time across instances.
type RedisLocker struct {
	client *redis.Client
	sync   *redsync.Redsync
	ttl    time.Duration
	tries  int
}

func NewRedisLocker(config RedisConfig) *RedisLocker {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Second
	}
	if config.Tries <= 0 {
		config.Tries = 32
	}
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		PoolSize:     20,
		MinIdleConns: 2,
	})
	return &RedisLocker{
		client: client,
		sync:   redsync.New(redsyncredis.NewPool(client)),
		ttl:    config.TTL,
		tries:  config.Tries,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, ownerID string) (func(context.Context) error, error) {
	mutex := l.sync.NewMutex(keyPrefix+ownerID, redsync.WithExpiry(l.ttl), redsync.WithTries(l.tries))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("lock owner %s: %w", ownerID, err)
	}
	return func(ctx context.Context) error {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			return fmt.Errorf("unlock owner %s: %w", ownerID, err)
		}
		return nil
	}, nil
}

func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
