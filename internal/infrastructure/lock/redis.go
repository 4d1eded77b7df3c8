package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL           = 30 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
	keyPrefix            = "ledger:"
)

// RedisLocker implements shared.Locker with Redis locks, so writers in different
// processes are serialized too. Held keys are refreshed every half TTL until
// released; the TTL only bounds how long a crashed holder blocks others.
type RedisLocker struct {
	client        *redislock.Client
	ttl           time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// RedisLockerOption configures a RedisLocker
type RedisLockerOption func(*RedisLocker)

// WithTTL sets how long a key outlives a holder that stops refreshing it
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetryInterval sets the linear backoff between attempts to obtain a busy key
func WithRetryInterval(d time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

// WithLogger sets the logger used for release failures
func WithLogger(logger *zap.Logger) RedisLockerOption {
	return func(l *RedisLocker) {
		l.logger = logger
	}
}

// NewRedisLocker creates a locker over an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisLocker(rdb redis.UniversalClient, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		client:        redislock.New(rdb),
		ttl:           defaultTTL,
		retryInterval: defaultRetryInterval,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Lock obtains every key in ascending order, retrying busy keys until ctx ends.
// Without a ctx deadline a busy key is retried for at most the TTL.
func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]*redislock.Lock, 0, len(keys))
	opts := &redislock.Options{RetryStrategy: redislock.LinearBackoff(l.retryInterval)}

	for _, key := range keys {
		lk, err := l.client.Obtain(ctx, keyPrefix+key, l.ttl, opts)
		if err != nil {
			l.releaseAll(held)
			if errors.Is(err, redislock.ErrNotObtained) || ctx.Err() != nil {
				return nil, shared.Errorf(shared.ErrLockNotObtained, "could not obtain lock %s", key)
			}
			return nil, fmt.Errorf("obtain lock %s: %w", key, err)
		}
		held = append(held, lk)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(held, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.releaseAll(held)
		})
	}, nil
}

// keepAlive extends every held key until stop is closed
func (l *RedisLocker) keepAlive(held []*redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/2)
			for _, lk := range held {
				if err := lk.Refresh(ctx, l.ttl, nil); err != nil {
					l.logger.Warn("Failed to refresh ledger lock",
						zap.String("key", lk.Key()),
						zap.Error(err),
					)
				}
			}
			cancel()
		}
	}
}

func (l *RedisLocker) releaseAll(held []*redislock.Lock) {
	// release must not depend on the caller's context, which may already be done
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(held) - 1; i >= 0; i-- {
		if err := held[i].Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release ledger lock",
				zap.String("key", held[i].Key()),
				zap.Error(err),
			)
		}
	}
}

var _ shared.Locker = (*RedisLocker)(nil)
