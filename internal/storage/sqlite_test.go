package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := OpenSQLiteStorage(filepath.Join(t.TempDir(), "saves", "chronicle.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLiteStorage_RequiresPath(t *testing.T) {
	_, err := OpenSQLiteStorage("  ", nil)
	assert.Error(t, err)
}

func TestSQLiteStorage_SaveLoadDelete(t *testing.T) {
	s := openTempSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	gs := playingGameState(t)
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.Character.Name, loaded.Character.Name)
	assert.Equal(t, state.PhasePlaying, loaded.Phase)

	gs.TurnCount = 7
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs), "second save upserts")
	loaded, err = s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.TurnCount)

	require.NoError(t, s.DeleteGameState(ctx, gs.ID))
	loaded, err = s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	loaded, err = s.LoadGameState(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStorage_ListGameStates(t *testing.T) {
	s := openTempSQLite(t)
	ctx := context.Background()

	first := playingGameState(t)
	first.TurnCount = 3
	require.NoError(t, s.SaveGameState(ctx, first.ID, first))
	time.Sleep(5 * time.Millisecond)
	second := state.NewGameState()
	require.NoError(t, s.SaveGameState(ctx, second.ID, second))

	infos, err := s.ListGameStates(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, second.ID, infos[0].ID)
	assert.Equal(t, first.ID, infos[1].ID)
	assert.Equal(t, "Thiên Huyền", infos[1].WorldName)
	assert.Equal(t, 3, infos[1].TurnCount)
	assert.Equal(t, first.UpdatedAt.UnixMilli(), infos[1].UpdatedAt.UnixMilli())
}
