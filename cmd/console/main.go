package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
	NewGame    string // path to a {world, character} JSON file
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		// Turns wait on the narrator.
		Timeout: 5 * time.Minute,
	}
	flag.StringVar(&cfg.NewGame, "new", "", "start a new game from a {world, character} JSON file")
	flag.Parse()

	api := NewAPIClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.Timeout})
	if !api.Healthy() {
		fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\n", cfg.APIBaseURL)
		os.Exit(1)
	}

	var gs *state.GameState
	if cfg.NewGame != "" {
		req, err := readNewGame(cfg.NewGame)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read new game file: %v\n", err)
			os.Exit(1)
		}
		if gs, err = api.CreateGame(req); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create game state: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(NewConsoleUI(cfg, api, gs),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func readNewGame(path string) (NewGameRequest, error) {
	var req NewGameRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if req.World == nil || req.Character == nil {
		return req, fmt.Errorf("file must contain both world and character")
	}
	return req, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
