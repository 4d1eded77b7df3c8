package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Bounded caps how long Lock waits for its keys
type Bounded struct {
	next shared.Locker
	wait time.Duration
}

// WithWaitTimeout wraps locker so a Lock call gives up after wait.
// A zero wait returns locker unchanged.
func WithWaitTimeout(locker shared.Locker, wait time.Duration) shared.Locker {
	if wait <= 0 {
		return locker
	}
	return &Bounded{next: locker, wait: wait}
}

// Lock acquires keys on the wrapped locker under the wait deadline
func (b *Bounded) Lock(ctx context.Context, keys ...string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, b.wait)
	defer cancel()
	return b.next.Lock(ctx, keys...)
}

// FromConfig builds the locker selected by cfg.Lock. The returned close func
// releases the Redis client when one was opened.
func FromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.Locker, func() error, error) {
	switch cfg.Lock.Backend {
	case "", config.LockBackendMemory:
		return WithWaitTimeout(NewMemoryLocker(), cfg.Lock.WaitTimeout), func() error { return nil }, nil
	case config.LockBackendRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		locker := NewRedisLocker(client,
			WithTTL(cfg.Lock.TTL),
			WithRetryInterval(cfg.Lock.RetryInterval),
			WithLogger(logger),
		)
		return WithWaitTimeout(locker, cfg.Lock.WaitTimeout), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lock backend %q", cfg.Lock.Backend)
	}
}

var _ shared.Locker = (*Bounded)(nil)
