package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

func TestMockLLMService(t *testing.T) {
	mockService := NewMockLLMAPI()

	err := mockService.InitModel(context.Background(), "test-model")
	if err != nil {
		t.Errorf("InitModel failed: %v", err)
	}
	if len(mockService.InitModelCalls) != 1 || mockService.InitModelCalls[0] != "test-model" {
		t.Errorf("Expected one InitModel call for 'test-model', got %v", mockService.InitModelCalls)
	}

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Hello"},
	}

	response, err := mockService.Chat(context.Background(), messages)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	resp, err := state.ParseTurnResponse(response.Message)
	if err != nil {
		t.Fatalf("default mock response should parse as a turn: %v", err)
	}
	if resp.Narrative != "Mock response" {
		t.Errorf("Expected 'Mock response', got '%s'", resp.Narrative)
	}

	summary, err := mockService.BackendChat(context.Background(), messages)
	if err != nil {
		t.Fatalf("BackendChat failed: %v", err)
	}
	parsed, err := state.ParseSummaryResponse(summary.Message)
	if err != nil || parsed.Summary != "Mock summary" {
		t.Errorf("default backend response should parse as a summary, got %+v, %v", parsed, err)
	}

	chatCalls, backendCalls := mockService.GetCalls()
	if len(chatCalls) != 1 || len(backendCalls) != 1 {
		t.Errorf("Expected 1 call each, got %d and %d", len(chatCalls), len(backendCalls))
	}

	mockService.Reset()
	chatCalls, backendCalls = mockService.GetCalls()
	if len(chatCalls) != 0 || len(backendCalls) != 0 {
		t.Error("Reset should clear call tracking")
	}
}

func TestMockLLMService_ErrorHandling(t *testing.T) {
	mockService := NewMockLLMAPI()

	expectedErr := fmt.Errorf("initialization failed")
	mockService.SetInitModelError(expectedErr)
	if err := mockService.InitModel(context.Background(), "test-model"); err != expectedErr {
		t.Errorf("Expected error '%v', got '%v'", expectedErr, err)
	}

	mockService.SetChatError(expectedErr)
	if _, err := mockService.Chat(context.Background(), nil); err != expectedErr {
		t.Errorf("Expected chat error, got %v", err)
	}

	mockService.SetBackendChatError(expectedErr)
	if _, err := mockService.BackendChat(context.Background(), nil); err != expectedErr {
		t.Errorf("Expected backend chat error, got %v", err)
	}

	mockService.SetChatResponse("fixed")
	resp, err := mockService.Chat(context.Background(), nil)
	if err != nil || resp.Message != "fixed" {
		t.Errorf("Expected fixed response, got %+v, %v", resp, err)
	}
}
