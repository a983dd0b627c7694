package ownerlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "tagdex/pkg/domain"
)

const (
	lockKeyPrefix     = "tagdex:ownerlock:"
	defaultLockTTL    = 30 * time.Second
	acquireRetryDelay = 25 * time.Millisecond
)

// releaseScript deletes the lock only if this holder still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes owner scopes across processes using a lease key.
// The lease TTL bounds how long a crashed holder can block an owner; live
// holders release explicitly well before expiry since engine operations are
// short-lived.
type RedisLocker struct {
	client  *redis.Client
	ttl     time.Duration
	maxWait time.Duration
}

// NewRedisLocker constructs a Redis-backed locker with the given bounded wait.
func NewRedisLocker(client *redis.Client, maxWait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: defaultLockTTL, maxWait: maxWait}
}

func (l *RedisLocker) Acquire(ctx context.Context, owner id.OwnerID) (func(), error) {
	key := lockKeyPrefix + owner.String()
	token := uuid.NewString()

	deadline := time.Now().Add(l.maxWait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(acquireRetryDelay):
		}
	}
}
