package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/jwebster45206/chronicle-engine/pkg/storage"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS game_states (
	id             TEXT PRIMARY KEY,
	phase          TEXT NOT NULL,
	world_name     TEXT NOT NULL DEFAULT '',
	character_name TEXT NOT NULL DEFAULT '',
	turn_count     INTEGER NOT NULL DEFAULT 0,
	data           TEXT NOT NULL,
	updated_at     INTEGER NOT NULL
)`

// SQLiteStorage implements the Storage interface with a local SQLite file.
// It suits single-player deployments that keep save slots on disk.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStorage implements Storage interface
var _ storage.Storage = (*SQLiteStorage)(nil)

// OpenSQLiteStorage opens (or creates) the database at path and ensures the
// schema exists.
func OpenSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("SQLite storage opened", "path", cleanPath)
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}
	gs.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	info := storage.InfoFromGameState(gs)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game_states (id, phase, world_name, character_name, turn_count, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   phase = excluded.phase,
		   world_name = excluded.world_name,
		   character_name = excluded.character_name,
		   turn_count = excluded.turn_count,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		id.String(),
		string(info.Phase),
		info.WorldName,
		info.CharacterName,
		info.TurnCount,
		string(data),
		gs.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		s.logger.Error("Failed to save gamestate", "game_state_id", id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM game_states WHERE id = ?`, id.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Return nil for not found
		}
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		s.logger.Error("Failed to unmarshal gamestate", "game_state_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return &gs, nil
}

func (s *SQLiteStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_states WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListGameStates(ctx context.Context) ([]storage.GameStateInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phase, world_name, character_name, turn_count, updated_at
		 FROM game_states ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list gamestates: %w", err)
	}
	defer rows.Close()

	var infos []storage.GameStateInfo
	for rows.Next() {
		var (
			rawID, phase string
			info         storage.GameStateInfo
			updatedAt    int64
		)
		if err := rows.Scan(&rawID, &phase, &info.WorldName, &info.CharacterName, &info.TurnCount, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gamestate row: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			s.logger.Warn("Skipping row with invalid id", "id", rawID, "error", err)
			continue
		}
		info.ID = id
		info.Phase = state.GamePhase(phase)
		info.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list gamestates: %w", err)
	}
	return infos, nil
}
