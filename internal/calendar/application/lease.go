package application

import (
	"context"
	"sync"
	"time"
)

// Lease serializes syncs per calendar. Acquire returns ok=false when
// the lease is already held; the caller skips the sync rather than
// queueing behind it.
type Lease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// LocalLeaser is the in-process lease used when no Redis is
// configured. The TTL is ignored; a held lease is released explicitly.
type LocalLeaser struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLeaser creates the leaser.
func NewLocalLeaser() *LocalLeaser {
	return &LocalLeaser{held: make(map[string]struct{})}
}

// Acquire takes the lease if free.
func (l *LocalLeaser) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[key]; taken {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}
	return release, true, nil
}
