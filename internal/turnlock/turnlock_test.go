package turnlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLock(t *testing.T, ttl time.Duration) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLock(client, ttl), mr
}

func TestLocks_RejectSecondAction(t *testing.T) {
	redisLock, _ := newRedisLock(t, time.Minute)
	locks := map[string]Lock{
		"local": NewLocalLock(),
		"redis": redisLock,
	}
	for name, lock := range locks {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			game, other := uuid.New(), uuid.New()

			release, err := lock.Acquire(ctx, game)
			require.NoError(t, err)

			_, err = lock.Acquire(ctx, game)
			assert.ErrorIs(t, err, ErrTurnInFlight)

			releaseOther, err := lock.Acquire(ctx, other)
			require.NoError(t, err, "other games are independent")
			releaseOther()

			release()
			release() // idempotent

			release, err = lock.Acquire(ctx, game)
			require.NoError(t, err)
			release()
		})
	}
}

func TestLocalLock_Concurrent(t *testing.T) {
	lock := NewLocalLock()
	game := uuid.New()

	var won atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := lock.Acquire(context.Background(), game); err == nil {
				won.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), won.Load())
}

func TestLocalLock_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocalLock().Acquire(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLock_ReleaseOnlyOwnLock(t *testing.T) {
	lock, mr := newRedisLock(t, time.Minute)
	game := uuid.New()

	release, err := lock.Acquire(context.Background(), game)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(lockKey(game)))

	// Lock expired and another holder took it over.
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set(lockKey(game), "someone-else"))

	release()
	got, err := mr.Get(lockKey(game))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLock_Errors(t *testing.T) {
	lock, mr := newRedisLock(t, 0)
	assert.Equal(t, DefaultTTL, lock.ttl)

	release, err := lock.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)

	var releaseErr error
	lock.OnReleaseError(func(err error) { releaseErr = err })
	mr.Close()
	release()
	assert.Error(t, releaseErr)

	_, err = lock.Acquire(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTurnInFlight)
}
