package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/openai/openai-go/option"
)

type openAITestRequest struct {
	Model          string `json:"model"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOpenAITestServer(t *testing.T, status int, reply string, got *openAITestRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const openAICompletion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-test",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "{\"narrative\": \"Rain falls.\"}"}
	}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`

func TestOpenAIService_Chat(t *testing.T) {
	var got openAITestRequest
	srv := newOpenAITestServer(t, http.StatusOK, openAICompletion, &got)

	service := NewOpenAIService("test-key", "gpt-test", "gpt-backend", nil, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	resp, err := service.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "narrate"},
		{Role: chat.ChatRoleAgent, Content: "earlier"},
		{Role: chat.ChatRoleUser, Content: "Wait"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message != `{"narrative": "Rain falls."}` || resp.Model != "gpt-test" {
		t.Errorf("unexpected response %+v", resp)
	}
	if got.Model != "gpt-test" || got.ResponseFormat.Type != "json_object" {
		t.Errorf("unexpected request %+v", got)
	}
	roles := []string{"system", "assistant", "user"}
	if len(got.Messages) != len(roles) {
		t.Fatalf("expected %d messages, got %d", len(roles), len(got.Messages))
	}
	for i, role := range roles {
		if got.Messages[i].Role != role {
			t.Errorf("message %d role = %s; want %s", i, got.Messages[i].Role, role)
		}
	}
}

func TestOpenAIService_BackendChat(t *testing.T) {
	var got openAITestRequest
	srv := newOpenAITestServer(t, http.StatusOK, openAICompletion, &got)

	service := NewOpenAIService("test-key", "gpt-test", "gpt-backend", nil, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	resp, err := service.BackendChat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "sync"}})
	if err != nil {
		t.Fatalf("BackendChat failed: %v", err)
	}
	if got.Model != "gpt-backend" || resp.Model != "gpt-backend" {
		t.Errorf("expected backend model, got %s / %s", got.Model, resp.Model)
	}
}

func TestOpenAIService_Errors(t *testing.T) {
	srv := newOpenAITestServer(t, http.StatusBadRequest, `{"error": {"message": "bad", "type": "invalid_request_error"}}`, nil)
	service := NewOpenAIService("test-key", "", "", nil, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	if service.modelName != DefaultOpenAIModel {
		t.Errorf("expected default model, got %s", service.modelName)
	}
	if _, err := service.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}); err == nil {
		t.Error("expected error for 400 response")
	}
	if _, err := service.Chat(context.Background(), nil); err == nil {
		t.Error("expected error without messages")
	}

	srv = newOpenAITestServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "choices": []}`, nil)
	service = NewOpenAIService("test-key", "gpt-test", "", nil, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	if _, err := service.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}); err == nil {
		t.Error("expected error for empty choices")
	}
}
