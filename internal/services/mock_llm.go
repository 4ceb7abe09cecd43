package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
)

// MockResponse is the default mock narrator reply: a minimal valid turn.
const MockResponse = `{"narrative": "Mock response", "suggestedActions": ["Look around"]}`

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc   func(ctx context.Context, modelName string) error
	ChatFunc        func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
	BackendChatFunc func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// Track calls for testing
	InitModelCalls   []string
	ChatCalls        []ChatCall
	BackendChatCalls []ChatCall

	mu sync.Mutex // protects all fields above
}

// Ensure MockLLMAPI implements LLMService interface
var _ LLMService = (*MockLLMAPI)(nil)

type ChatCall struct {
	Messages []chat.ChatMessage
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls:   make([]string, 0),
		ChatCalls:        make([]ChatCall, 0),
		BackendChatCalls: make([]ChatCall, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	fn := m.InitModelFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, modelName)
	}
	return nil
}

// Chat mocks a narrative turn
func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: messages})
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	return &chat.ChatResponse{Message: MockResponse, Model: "mock"}, nil
}

// BackendChat mocks a backend request
func (m *MockLLMAPI) BackendChat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	m.BackendChatCalls = append(m.BackendChatCalls, ChatCall{Messages: messages})
	fn := m.BackendChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	return &chat.ChatResponse{Message: `{"narrative": "", "summary": "Mock summary"}`, Model: "mock-backend"}, nil
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.ChatCalls = make([]ChatCall, 0)
	m.BackendChatCalls = make([]ChatCall, 0)
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// SetChatResponse sets up the mock to return a fixed message from Chat
func (m *MockLLMAPI) SetChatResponse(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return &chat.ChatResponse{Message: message, Model: "mock"}, nil
	}
}

// SetChatError sets up the mock to return an error on Chat
func (m *MockLLMAPI) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// SetBackendChatResponse sets up the mock to return a fixed message from BackendChat
func (m *MockLLMAPI) SetBackendChatResponse(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackendChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return &chat.ChatResponse{Message: message, Model: "mock-backend"}, nil
	}
}

// SetBackendChatError sets up the mock to return an error on BackendChat
func (m *MockLLMAPI) SetBackendChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackendChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() (chatCalls []ChatCall, backendCalls []ChatCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chatCalls = make([]ChatCall, len(m.ChatCalls))
	copy(chatCalls, m.ChatCalls)

	backendCalls = make([]ChatCall, len(m.BackendChatCalls))
	copy(backendCalls, m.BackendChatCalls)

	return chatCalls, backendCalls
}
