// Package lock implements shared.Locker, the per-key writer serialization the
// ledgers rely on. MemoryLocker serves a single process; RedisLocker serves every
// process sharing a Redis instance.
package lock

import (
	"context"
	"slices"
	"sync"

	"github.com/erp/backoffice/internal/domain/shared"
)

// slot is one key's mutex. refs counts holders and waiters so idle slots can be dropped.
type slot struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker implements shared.Locker with in-process channels
// This is suitable for single-instance deployments and testing
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewMemoryLocker creates a new in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot)}
}

// Lock acquires every key in ascending order, waiting until all are held or ctx ends
func (l *MemoryLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, key); err != nil {
			l.releaseAll(held)
			return nil, shared.Errorf(shared.ErrLockNotObtained, "could not obtain lock %s: %v", key, err)
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.releaseAll(held) })
	}, nil
}

func (l *MemoryLocker) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.unref(key, s)
		return ctx.Err()
	}
}

func (l *MemoryLocker) releaseAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		s := l.slots[keys[i]]
		l.mu.Unlock()
		<-s.ch
		l.unref(keys[i], s)
	}
}

func (l *MemoryLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Held returns the number of keys currently held or awaited
func (l *MemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// normalize sorts keys and drops blanks and duplicates
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

var _ shared.Locker = (*MemoryLocker)(nil)
