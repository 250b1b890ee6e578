package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mercado-ia/storefront/internal/pkg/apperrors"
	"github.com/mercado-ia/storefront/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestLocalFlag(t *testing.T) {
	ctx := context.Background()
	flag := NewLocalFlag()

	ok, err := flag.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = flag.TryAcquire(ctx)
	assert.False(t, ok)

	require.NoError(t, flag.Release(ctx))
	ok, _ = flag.TryAcquire(ctx)
	assert.True(t, ok)
}

func TestRedisFlag_SharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	first := NewRedisFlag(client, "user-1", time.Minute)
	second := NewRedisFlag(client, "user-1", time.Minute)
	other := NewRedisFlag(client, "user-2", time.Minute)

	ok, err := first.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("checkout:busy:user-1"))

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = other.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("checkout:busy:user-1"))

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisFlag_ExpiredHolderDoesNotReleaseNewOwner(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)

	stale := NewRedisFlag(client, "user-1", time.Second)
	ok, err := stale.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	current := NewRedisFlag(client, "user-1", time.Minute)
	ok, err = current.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, stale.Release(ctx))
	assert.True(t, mr.Exists("checkout:busy:user-1"))
}

func TestRedisFlag_Unavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	o := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), &fakeGateway{}, NewRedisFlag(client, "user-1", time.Minute), logger.Discard())

	_, err := o.Submit(context.Background(), ana)

	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, StateIdle, o.State())
}

func TestSubmit_RedisFlagBlocksOtherInstance(t *testing.T) {
	_, client := newRedis(t)
	gateway := &fakeGateway{started: make(chan struct{}, 1), release: make(chan struct{})}

	instanceA := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, NewRedisFlag(client, "user-1", time.Minute), logger.Discard())
	instanceB := NewOrchestrator(cartWith(map[string]string{"Email Bot": "150.00"}), gateway, NewRedisFlag(client, "user-1", time.Minute), logger.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := instanceA.Submit(context.Background(), ana)
		done <- err
	}()
	<-gateway.started

	_, err := instanceB.Submit(context.Background(), ana)
	assert.ErrorIs(t, err, apperrors.ErrSubmissionInFlight)

	close(gateway.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), gateway.calls.Load())
}
