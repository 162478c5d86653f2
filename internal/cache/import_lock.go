package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another import holds the company lock.
var ErrLockHeld = errors.New("import lock held")

// releaseScript deletes the lock only if it still carries the caller's token,
// so an expired holder never releases a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// ImportLock serializes product imports per company.
type ImportLock struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewImportLock creates a lock whose holders expire after ttl.
func NewImportLock(redis *RedisClient, ttl time.Duration) *ImportLock {
	return &ImportLock{redis: redis, ttl: ttl}
}

func importLockKey(companyID string) string {
	return fmt.Sprintf("import:lock:%s", companyID)
}

// Acquire takes the company lock and returns its release func. ErrLockHeld
// means an import for the company is already running.
func (l *ImportLock) Acquire(ctx context.Context, companyID string) (func(context.Context) error, error) {
	key := importLockKey(companyID)
	token := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, key, token, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func(ctx context.Context) error {
		if _, err := l.redis.RunScript(ctx, releaseScript, []string{key}, token); err != nil {
			return fmt.Errorf("failed to release import lock: %w", err)
		}
		return nil
	}
	return release, nil
}
