// internal/domain/checkout/lock.go
package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BusyFlag guards a checkout session against re-entrant payment submissions
type BusyFlag interface {
	// TryAcquire reports false when the flag is already held
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalFlag is an in-process busy flag
type LocalFlag struct {
	busy atomic.Bool
}

// NewLocalFlag creates a released in-process flag
func NewLocalFlag() *LocalFlag {
	return &LocalFlag{}
}

func (f *LocalFlag) TryAcquire(context.Context) (bool, error) {
	return f.busy.CompareAndSwap(false, true), nil
}

func (f *LocalFlag) Release(context.Context) error {
	f.busy.Store(false)
	return nil
}

// releaseScript deletes the key only while it still holds our token, so an
// expired flag taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisFlag shares the busy flag of one identity across API instances. The
// TTL bounds how long a crashed instance can keep the flag.
type RedisFlag struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  atomic.Value
}

// NewRedisFlag creates the flag for userID
func NewRedisFlag(client *redis.Client, userID string, ttl time.Duration) *RedisFlag {
	return &RedisFlag{
		client: client,
		key:    fmt.Sprintf("checkout:busy:%s", userID),
		ttl:    ttl,
	}
}

func (f *RedisFlag) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := f.client.SetNX(ctx, f.key, token, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire checkout flag: %w", err)
	}
	if ok {
		f.token.Store(token)
	}
	return ok, nil
}

func (f *RedisFlag) Release(ctx context.Context) error {
	token, _ := f.token.Load().(string)
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, f.client, []string{f.key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release checkout flag: %w", err)
	}
	f.token.Store("")
	return nil
}
