package services

import (
	"context"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
)

// LLMService is the narrator oracle transport. Chat serves story turns;
// BackendChat serves bookkeeping requests (sync, summaries) and may use a
// cheaper model.
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a narrative turn response
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// BackendChat generates a response with the backend model
	BackendChat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}

// backendModel returns the backend model name, falling back to the
// narrative model.
func backendModel(modelName, backendModelName string) string {
	if backendModelName != "" {
		return backendModelName
	}
	return modelName
}
