package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/jwebster45206/chronicle-engine/pkg/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewGameRequest matches the API request structure for creating a game.
type NewGameRequest struct {
	World     *state.World     `json:"world"`
	Character *state.Character `json:"character"`
}

// APIClient talks to the chronicle-engine HTTP API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	return &APIClient{baseURL: baseURL, client: client}
}

func (c *APIClient) Healthy() bool {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (c *APIClient) ListGames() ([]storage.GameStateInfo, error) {
	var infos []storage.GameStateInfo
	err := c.do(http.MethodGet, "/v1/gamestate", nil, http.StatusOK, &infos)
	return infos, err
}

func (c *APIClient) CreateGame(req NewGameRequest) (*state.GameState, error) {
	var gs state.GameState
	if err := c.do(http.MethodPost, "/v1/gamestate", req, http.StatusCreated, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (c *APIClient) GetGame(id uuid.UUID) (*state.GameState, error) {
	var gs state.GameState
	if err := c.do(http.MethodGet, "/v1/gamestate/"+id.String(), nil, http.StatusOK, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (c *APIClient) Turn(id uuid.UUID, action string) (*chat.TurnResult, error) {
	var res chat.TurnResult
	body := map[string]string{"action": action}
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/turn", body, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *APIClient) Sync(id uuid.UUID) (*chat.TurnResult, error) {
	var res chat.TurnResult
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/sync", nil, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *APIClient) AddNote(id uuid.UUID, content string, important bool) (*state.PlayerNote, error) {
	var note state.PlayerNote
	body := map[string]any{"content": content, "important": important}
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/notes", body, http.StatusCreated, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *APIClient) SetRules(id uuid.UUID, rules []string) (*state.GameState, error) {
	var gs state.GameState
	body := map[string][]string{"rules": rules}
	if err := c.do(http.MethodPut, "/v1/gamestate/"+id.String()+"/rules", body, http.StatusOK, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (c *APIClient) ToggleEquip(id uuid.UUID, itemID string) (*state.GameState, error) {
	var gs state.GameState
	path := "/v1/gamestate/" + id.String() + "/inventory/" + url.PathEscape(itemID)
	if err := c.do(http.MethodPatch, path, nil, http.StatusOK, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

func (c *APIClient) FuseSkills(id uuid.UUID, skillIDs []string) (*state.GameState, error) {
	var gs state.GameState
	body := map[string][]string{"skillIds": skillIDs}
	if err := c.do(http.MethodPost, "/v1/gamestate/"+id.String()+"/skills/fuse", body, http.StatusOK, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

// do sends an optional JSON body and decodes the response into out when the
// status matches want.
func (c *APIClient) do(method, path string, in any, want int, out any) error {
	var reader io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
