// Package turnlock keeps a single action in flight per game. A second action
// for the same game is rejected while the first is pending.
package turnlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTurnInFlight is returned when the game already has a pending action.
var ErrTurnInFlight = errors.New("another action is already in flight for this game")

// DefaultTTL bounds how long a crashed holder can block a game.
const DefaultTTL = 3 * time.Minute

// Lock guards games against concurrent actions.
type Lock interface {
	// Acquire claims gameID or returns ErrTurnInFlight. The returned release
	// func is safe to call more than once.
	Acquire(ctx context.Context, gameID uuid.UUID) (release func(), err error)
}

// LocalLock is an in-process Lock for single-instance deployments and tests.
type LocalLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

var _ Lock = (*LocalLock)(nil)

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[uuid.UUID]struct{})}
}

func (l *LocalLock) Acquire(ctx context.Context, gameID uuid.UUID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[gameID]; busy {
		return nil, ErrTurnInFlight
	}
	l.held[gameID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, gameID)
			l.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLock is a Lock shared by every API instance using the same Redis.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
	onErr  func(error)
}

var _ Lock = (*RedisLock)(nil)

// NewRedisLock creates a Redis-backed lock. A ttl of zero uses DefaultTTL.
func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLock{client: client, ttl: ttl, onErr: func(error) {}}
}

// OnReleaseError registers a callback for failed releases. The lock expires
// on its own, so a failed release only delays the next action.
func (l *RedisLock) OnReleaseError(fn func(error)) *RedisLock {
	l.onErr = fn
	return l
}

func lockKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game-lock:%s", gameID.String())
}

func (l *RedisLock) Acquire(ctx context.Context, gameID uuid.UUID) (func(), error) {
	owner := uuid.NewString()
	key := lockKey(gameID)

	ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire game lock: %w", err)
	}
	if !ok {
		return nil, ErrTurnInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release even when the request context is already done.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, owner).Err(); err != nil {
				l.onErr(fmt.Errorf("failed to release game lock %s: %w", key, err))
			}
		})
	}, nil
}
