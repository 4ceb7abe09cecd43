package storage

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

// Storage persists whole GameState documents. A game state is always
// written and read as one unit.
//
// LoadGameState returns (nil, nil) when no game state exists for the id.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
	ListGameStates(ctx context.Context) ([]GameStateInfo, error)
}

// GameStateInfo describes a save slot without loading the whole document.
type GameStateInfo struct {
	ID            uuid.UUID       `json:"id"`
	Phase         state.GamePhase `json:"phase"`
	WorldName     string          `json:"world_name,omitempty"`
	CharacterName string          `json:"character_name,omitempty"`
	TurnCount     int             `json:"turn_count"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InfoFromGameState extracts the save slot description of gs.
func InfoFromGameState(gs *state.GameState) GameStateInfo {
	info := GameStateInfo{
		ID:        gs.ID,
		Phase:     gs.Phase,
		TurnCount: gs.TurnCount,
		UpdatedAt: gs.UpdatedAt,
	}
	if gs.World != nil {
		info.WorldName = gs.World.Name
	}
	if gs.Character != nil {
		info.CharacterName = gs.Character.Name
	}
	return info
}

// SortByUpdated orders save slots newest first.
func SortByUpdated(infos []GameStateInfo) {
	slices.SortStableFunc(infos, func(a, b GameStateInfo) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
}
