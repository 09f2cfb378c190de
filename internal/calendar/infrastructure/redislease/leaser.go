package redislease

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only when the caller still owns it,
// so a lease that expired and was re-acquired elsewhere is never
// released by its former holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Leaser takes per-calendar sync leases in Redis so concurrent
// processes never sync the same calendar twice. The TTL bounds how
// long a crashed holder can block others.
type Leaser struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLeaser creates the leaser.
func NewLeaser(client *redis.Client, logger *slog.Logger) *Leaser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Leaser{client: client, logger: logger}
}

// Acquire takes the lease with SET NX PX. ok is false when another
// holder has it.
func (l *Leaser) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Release runs after the sync finished; use a fresh context so
		// a cancelled sync still frees the lease.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("release sync lease", "key", key, "error", err)
		}
	}
	return release, true, nil
}
