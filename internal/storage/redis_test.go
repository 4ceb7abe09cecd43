package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := NewRedisStorage("redis://"+mr.Addr(), ttl, nil)
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func playingGameState(t *testing.T) *state.GameState {
	t.Helper()
	gs := state.NewGameState()
	require.NoError(t, gs.StartPlaying(
		&state.World{Name: "Thiên Huyền", Genre: "Tu tiên"},
		&state.Character{Name: "Lâm Động", Level: 1, HP: 50, MaxHP: 100},
	))
	return gs
}

func TestRedisStorage_SaveLoadDelete(t *testing.T) {
	rs, mr := setupTestRedis(t, 0)
	ctx := context.Background()
	require.NoError(t, rs.Ping(ctx))

	gs := playingGameState(t)
	gs.Memory = []byte(`{"debts":["Old Man Ma"]}`)
	require.NoError(t, rs.SaveGameState(ctx, gs.ID, gs))
	assert.True(t, mr.Exists("gamestate:"+gs.ID.String()))
	assert.Zero(t, mr.TTL("gamestate:"+gs.ID.String()))

	loaded, err := rs.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, "Lâm Động", loaded.Character.Name)
	assert.JSONEq(t, `{"debts":["Old Man Ma"]}`, string(loaded.Memory))

	require.NoError(t, rs.DeleteGameState(ctx, gs.ID))
	loaded, err = rs.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_TTL(t *testing.T) {
	rs, mr := setupTestRedis(t, time.Hour)
	gs := playingGameState(t)
	require.NoError(t, rs.SaveGameState(context.Background(), gs.ID, gs))
	assert.Equal(t, time.Hour, mr.TTL("gamestate:"+gs.ID.String()))

	mr.FastForward(2 * time.Hour)
	loaded, err := rs.LoadGameState(context.Background(), gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_LoadCorrupt(t *testing.T) {
	rs, mr := setupTestRedis(t, 0)
	id := uuid.New()
	require.NoError(t, mr.Set("gamestate:"+id.String(), "{not json"))

	_, err := rs.LoadGameState(context.Background(), id)
	assert.Error(t, err)
}

func TestRedisStorage_ListGameStates(t *testing.T) {
	rs, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	first := playingGameState(t)
	require.NoError(t, rs.SaveGameState(ctx, first.ID, first))
	time.Sleep(2 * time.Millisecond)
	second := state.NewGameState()
	require.NoError(t, rs.SaveGameState(ctx, second.ID, second))
	require.NoError(t, mr.Set("gamestate:"+uuid.NewString(), "garbage"))
	require.NoError(t, mr.Set("other:key", "{}"))

	infos, err := rs.ListGameStates(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, second.ID, infos[0].ID)
	assert.Equal(t, first.ID, infos[1].ID)
	assert.Equal(t, "Lâm Động", infos[1].CharacterName)
	assert.Equal(t, state.PhasePlaying, infos[1].Phase)
}

func TestRedisStorage_PingFailure(t *testing.T) {
	rs, mr := setupTestRedis(t, 0)
	mr.Close()
	assert.Error(t, rs.Ping(context.Background()))
}

func TestRedisOptions(t *testing.T) {
	assert.Equal(t, "localhost:6379", redisOptions("localhost:6379").Addr)
	assert.Equal(t, "cache:6380", redisOptions("redis://cache:6380/0").Addr)
}
