package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/internal/processor"
	"github.com/jwebster45206/chronicle-engine/internal/turnlock"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

// maxBodyBytes bounds request bodies. A character sheet with a long
// inventory is the largest legitimate payload.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateGameStateRequest defines the request body for creating or starting a
// game state. Both fields are optional on create, required on start.
type CreateGameStateRequest struct {
	World     *state.World     `json:"world,omitempty"`
	Character *state.Character `json:"character,omitempty"`
}

type TurnRequestBody struct {
	Action string `json:"action"`
}

type NoteRequest struct {
	Content   string `json:"content"`
	Important bool   `json:"important"`
}

type NotePatchRequest struct {
	Important bool `json:"important"`
}

type RulesRequest struct {
	Rules []string `json:"rules"`
}

type FuseRequest struct {
	SkillIDs []string `json:"skillIds"`
}

// StatusRequest adds, refreshes or removes a status. Without npcId it
// targets the character.
type StatusRequest struct {
	NPCID string `json:"npcId,omitempty"`
	state.TraitUpdate
}

// NPCPatchRequest changes an NPC. Affiliation is applied before the lock
// toggle.
type NPCPatchRequest struct {
	Affiliation string `json:"affiliation,omitempty"`
	ToggleLock  bool   `json:"toggleLock,omitempty"`
}

type CommanderRequest struct {
	NPCID string `json:"npcId"`
}

type GameStateHandler struct {
	processor *processor.TurnProcessor
	logger    *slog.Logger
}

func NewGameStateHandler(processor *processor.TurnProcessor, logger *slog.Logger) *GameStateHandler {
	return &GameStateHandler{
		processor: processor,
		logger:    logger,
	}
}

// ServeHTTP handles HTTP requests for game state operations
// Routes:
// POST   /v1/gamestate                        - Create new game state
// GET    /v1/gamestate                        - List save slots
// GET    /v1/gamestate/{id}                   - Read game state by ID
// DELETE /v1/gamestate/{id}                   - Delete game state by ID
// POST   /v1/gamestate/{id}/start             - Install world and character
// POST   /v1/gamestate/{id}/turn              - Play an action
// POST   /v1/gamestate/{id}/sync              - Reconcile state with the last narrative
// POST   /v1/gamestate/{id}/summary           - Refresh the story summary
// POST   /v1/gamestate/{id}/reset             - Return to the init phase
// PUT    /v1/gamestate/{id}/rules             - Replace custom rules
// POST   /v1/gamestate/{id}/notes             - Add a note
// PATCH  /v1/gamestate/{id}/notes/{noteId}    - Flag a note as important
// DELETE /v1/gamestate/{id}/notes/{noteId}    - Delete a note
// POST   /v1/gamestate/{id}/statuses          - Add, refresh or remove a status
// PATCH  /v1/gamestate/{id}/inventory/{itemId} - Equip or unequip an item
// POST   /v1/gamestate/{id}/skills/fuse       - Fuse skills of one type
// PATCH  /v1/gamestate/{id}/npcs/{npcId}      - Change affiliation or toggle lock
// DELETE /v1/gamestate/{id}/npcs/{npcId}      - Delete an unlocked NPC
// PUT    /v1/gamestate/{id}/troops/{troopId}/commander                - Set the commander
// DELETE /v1/gamestate/{id}/troops/{troopId}/commander                - Clear the commander
// PUT    /v1/gamestate/{id}/troops/{troopId}/vice-commanders/{npcId}  - Add a vice commander
// DELETE /v1/gamestate/{id}/troops/{troopId}/vice-commanders/{npcId}  - Remove a vice commander
func (h *GameStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/gamestate"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			h.methodNotAllowed(w, r, "POST, GET")
		}
		return
	}

	parts := strings.Split(path, "/")
	gameStateID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game state ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid game state ID format")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, gameStateID)
		case http.MethodDelete:
			h.handleDelete(w, r, gameStateID)
		default:
			h.methodNotAllowed(w, r, "GET, DELETE")
		}
	case len(parts) == 2 && parts[1] == "rules":
		if r.Method != http.MethodPut {
			h.methodNotAllowed(w, r, "PUT")
			return
		}
		h.handleRules(w, r, gameStateID)
	case len(parts) == 2:
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		switch parts[1] {
		case "start":
			h.handleStart(w, r, gameStateID)
		case "turn":
			h.handleTurn(w, r, gameStateID)
		case "sync":
			h.handleSync(w, r, gameStateID)
		case "summary":
			h.handleSummary(w, r, gameStateID)
		case "reset":
			h.handleReset(w, r, gameStateID)
		case "notes":
			h.handleAddNote(w, r, gameStateID)
		case "statuses":
			h.handleStatus(w, r, gameStateID)
		default:
			h.writeError(w, http.StatusNotFound, "Unknown game state operation")
		}
	case len(parts) == 3 && parts[1] == "notes":
		switch r.Method {
		case http.MethodPatch:
			h.handlePatchNote(w, r, gameStateID, parts[2])
		case http.MethodDelete:
			h.handleDeleteNote(w, r, gameStateID, parts[2])
		default:
			h.methodNotAllowed(w, r, "PATCH, DELETE")
		}
	case len(parts) == 3 && parts[1] == "inventory":
		if r.Method != http.MethodPatch {
			h.methodNotAllowed(w, r, "PATCH")
			return
		}
		h.handleToggleEquip(w, r, gameStateID, parts[2])
	case len(parts) == 3 && parts[1] == "skills" && parts[2] == "fuse":
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		h.handleFuse(w, r, gameStateID)
	case len(parts) == 3 && parts[1] == "npcs":
		switch r.Method {
		case http.MethodPatch:
			h.handlePatchNPC(w, r, gameStateID, parts[2])
		case http.MethodDelete:
			h.handleDeleteNPC(w, r, gameStateID, parts[2])
		default:
			h.methodNotAllowed(w, r, "PATCH, DELETE")
		}
	case len(parts) == 4 && parts[1] == "troops" && parts[3] == "commander":
		h.handleCommander(w, r, gameStateID, parts[2], "", false)
	case len(parts) == 5 && parts[1] == "troops" && parts[3] == "vice-commanders":
		h.handleCommander(w, r, gameStateID, parts[2], parts[4], true)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown game state operation")
	}
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameStateRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	gs, err := h.processor.Create(r.Context(), req.World, req.Character)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, gs)
}

func (h *GameStateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.processor.List(r.Context())
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, infos)
}

func (h *GameStateHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.processor.Get(r.Context(), id)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.processor.Delete(r.Context(), id); err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameStateHandler) handleStart(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req CreateGameStateRequest
	if !h.decode(w, r, &req) {
		return
	}
	gs, err := h.processor.Start(r.Context(), id, req.World, req.Character)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleTurn(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req TurnRequestBody
	if !h.decode(w, r, &req) {
		return
	}
	h.logger.Info("Turn requested", "game_state_id", id.String(), "action_length", len(req.Action))

	result, err := h.processor.Turn(r.Context(), id, req.Action)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *GameStateHandler) handleSync(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	result, err := h.processor.Sync(r.Context(), id)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *GameStateHandler) handleSummary(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.processor.Summarize(r.Context(), id)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleReset(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.processor.Reset(r.Context(), id)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleRules(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req RulesRequest
	if !h.decode(w, r, &req) {
		return
	}
	gs, err := h.processor.SetRules(r.Context(), id, req.Rules)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleAddNote(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req NoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	note, err := h.processor.AddNote(r.Context(), id, req.Content, req.Important)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, note)
}

func (h *GameStateHandler) handlePatchNote(w http.ResponseWriter, r *http.Request, id uuid.UUID, noteID string) {
	var req NotePatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.processor.SetNoteImportant(r.Context(), id, noteID, req.Important); err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameStateHandler) handleDeleteNote(w http.ResponseWriter, r *http.Request, id uuid.UUID, noteID string) {
	if err := h.processor.DeleteNote(r.Context(), id, noteID); err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameStateHandler) handleStatus(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	gs, err := h.processor.ApplyStatus(r.Context(), id, req.NPCID, req.TraitUpdate)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleToggleEquip(w http.ResponseWriter, r *http.Request, id uuid.UUID, itemID string) {
	gs, err := h.processor.ToggleEquip(r.Context(), id, itemID)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleFuse(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req FuseRequest
	if !h.decode(w, r, &req) {
		return
	}
	gs, err := h.processor.FuseSkills(r.Context(), id, req.SkillIDs)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handlePatchNPC(w http.ResponseWriter, r *http.Request, id uuid.UUID, npcID string) {
	var req NPCPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Affiliation == "" && !req.ToggleLock {
		h.writeError(w, http.StatusBadRequest, "Nothing to change: set affiliation or toggleLock")
		return
	}

	var gs *state.GameState
	var err error
	if req.Affiliation != "" {
		if gs, err = h.processor.SetNPCAffiliation(r.Context(), id, npcID, req.Affiliation); err != nil {
			h.writeProcessorError(w, r, err)
			return
		}
	}
	if req.ToggleLock {
		if gs, err = h.processor.ToggleNPCLock(r.Context(), id, npcID); err != nil {
			h.writeProcessorError(w, r, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, gs)
}

func (h *GameStateHandler) handleDeleteNPC(w http.ResponseWriter, r *http.Request, id uuid.UUID, npcID string) {
	gs, err := h.processor.DeleteNPC(r.Context(), id, npcID)
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

// handleCommander serves both commander routes. The commander id comes from
// the body, a vice commander id from the path.
func (h *GameStateHandler) handleCommander(w http.ResponseWriter, r *http.Request, id uuid.UUID, troopID, npcID string, vice bool) {
	var gs *state.GameState
	var err error
	switch r.Method {
	case http.MethodPut:
		if !vice {
			var req CommanderRequest
			if !h.decode(w, r, &req) {
				return
			}
			npcID = req.NPCID
		}
		gs, err = h.processor.AssignCommander(r.Context(), id, troopID, npcID, vice)
	case http.MethodDelete:
		gs, err = h.processor.RemoveCommander(r.Context(), id, troopID, npcID, vice)
	default:
		h.methodNotAllowed(w, r, "PUT, DELETE")
		return
	}
	if err != nil {
		h.writeProcessorError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, gs)
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (h *GameStateHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

// statusFor maps processor errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, processor.ErrInvalidInput),
		errors.Is(err, state.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, processor.ErrNotFound),
		errors.Is(err, state.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, turnlock.ErrTurnInFlight),
		errors.Is(err, state.ErrInvariantViolation),
		errors.Is(err, state.ErrNPCLocked):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, processor.ErrOracle),
		errors.Is(err, state.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *GameStateHandler) writeProcessorError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Game state request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		msg = "Internal server error"
	} else {
		h.logger.Warn("Game state request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err)
	}
	h.writeError(w, status, msg)
}

func (h *GameStateHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for game state endpoint", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", allowed)
	h.writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method not allowed. Supported methods: %s", allowed))
}

func (h *GameStateHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (h *GameStateHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
