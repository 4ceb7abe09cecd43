package state

import "errors"

var (
	// ErrMalformedResponse is returned when a narrator reply holds no
	// parseable JSON object.
	ErrMalformedResponse = errors.New("malformed narrator response")

	// ErrNilResponse is returned when a turn is applied without a response.
	ErrNilResponse = errors.New("nil turn response")

	// ErrInvariantViolation is returned when a state cannot accept the
	// requested operation, for example a turn outside PhasePlaying.
	ErrInvariantViolation = errors.New("game state invariant violated")

	// ErrEntityNotFound is returned when a player edit names an item, NPC,
	// troop or skill the state does not hold.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidOperation is returned for player edits the rules refuse,
	// such as equipping a potion.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNPCLocked is returned when deleting an NPC the player locked.
	ErrNPCLocked = errors.New("npc is locked")
)
