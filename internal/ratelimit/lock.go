package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// LockNamespace scopes every lock key written by polarops.
const LockNamespace = "polarops:"

var (
	ErrLockUnavailable = errors.New("job lock redis client not configured")
	ErrLockKeyEmpty    = errors.New("job lock key is empty")
	ErrLockTTL         = errors.New("job lock ttl must be positive")
)

// Deletes the lock only while it still holds the caller's token.
const unlockIfOwnerScript = `
local holder = redis.call("GET", KEYS[1])
if holder == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker serializes scheduler jobs across processes sharing one redis.
type Locker struct {
	rdb    *redis.Client
	unlock *redis.Script
}

func NewLocker(rdb *redis.Client) *Locker {
	if rdb == nil {
		return nil
	}
	return &Locker{rdb: rdb, unlock: redis.NewScript(unlockIfOwnerScript)}
}

// LockKey returns the redis key holding the lock for job.
func LockKey(job string) string {
	return LockNamespace + job
}

// TryLock claims job for ttl. The returned token must be passed to Release;
// ok is false when another process holds the lock.
func (l *Locker) TryLock(ctx context.Context, job string, ttl time.Duration) (token string, ok bool, err error) {
	switch {
	case l == nil || l.rdb == nil:
		return "", false, ErrLockUnavailable
	case job == "":
		return "", false, ErrLockKeyEmpty
	case ttl <= 0:
		return "", false, ErrLockTTL
	}

	token = uuid.NewString()
	ok, err = l.rdb.SetNX(ctx, LockKey(job), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release is a no-op without a client or token, and when the lock has
// already expired or passed to another holder.
func (l *Locker) Release(ctx context.Context, job, token string) error {
	if l == nil || l.rdb == nil || job == "" || token == "" {
		return nil
	}
	return l.unlock.Run(ctx, l.rdb, []string{LockKey(job)}, token).Err()
}
