package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const chargeLockPrefix = "lock:charge:"

// releaseChargeLock deletes the lock only while it still carries the caller's token.
var releaseChargeLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore holds per-idempotency-key charge locks in Redis.
type LockStore struct {
	client   *redis.Client
	newToken func() string
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client, newToken: uuid.NewString}
}

// AcquireChargeLock takes the charge lock for idempotencyKey. On success it
// returns the owner token that must be presented to release it. acquired is
// false while another holder's lock is live.
func (s *LockStore) AcquireChargeLock(ctx context.Context, idempotencyKey string, ttl time.Duration) (token string, acquired bool, err error) {
	token = s.newToken()

	ok, err := s.client.SetNX(ctx, chargeLockPrefix+idempotencyKey, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseChargeLock drops the lock if token still owns it. released is false
// when the lock expired and was taken by someone else, whose lock is left intact.
func (s *LockStore) ReleaseChargeLock(ctx context.Context, idempotencyKey, token string) (released bool, err error) {
	n, err := releaseChargeLock.Run(ctx, s.client, []string{chargeLockPrefix + idempotencyKey}, token).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
