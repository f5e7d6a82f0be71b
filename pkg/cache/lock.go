package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker hands out short-lived exclusive keys.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type redisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker returns a Locker backed by SET NX. A nil client grants every lock.
func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisLocker{rdb: rdb}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.rdb == nil {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return wasSet, nil
}

func (l *redisLocker) Unlock(ctx context.Context, key string) error {
	if l.rdb == nil {
		return nil
	}
	_, err := l.rdb.Del(ctx, key).Result()
	return err
}

func ScheduleLockKey(communityID, bucketKey string) string {
	return fmt.Sprintf("schedule_lock:%s:%s", communityID, bucketKey)
}
