package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	DefaultOpenAIModel       = "gpt-4o"
	DefaultOpenAITemperature = 0.7
	DefaultOpenAIMaxTokens   = 8192
)

// OpenAIService implements LLMService for the OpenAI chat completions API.
// Responses are requested in JSON object mode.
type OpenAIService struct {
	client           *openai.Client
	modelName        string
	backendModelName string
	logger           *slog.Logger
}

// Ensure OpenAIService implements LLMService interface
var _ LLMService = (*OpenAIService)(nil)

// NewOpenAIService creates an OpenAI service. Extra request options, such as
// option.WithBaseURL, are passed to the client.
func NewOpenAIService(apiKey string, modelName string, backendModelName string, logger *slog.Logger, opts ...option.RequestOption) *OpenAIService {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(120 * time.Second),
		option.WithMaxRetries(1),
	}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIService{
		client:           &client,
		modelName:        modelName,
		backendModelName: backendModelName,
		logger:           logger,
	}
}

func (o *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// toOpenAIMessages converts chat messages to OpenAI message params
func toOpenAIMessages(messages []chat.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.ChatRoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case chat.ChatRoleAgent:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func (o *OpenAIService) chatCompletion(ctx context.Context, messages []chat.ChatMessage, modelName string) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("at least one message is required")
	}
	jsonMode := shared.NewResponseFormatJSONObjectParam()
	req := openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(modelName),
		Messages:            toOpenAIMessages(messages),
		Temperature:         openai.Float(DefaultOpenAITemperature),
		MaxCompletionTokens: openai.Int(DefaultOpenAIMaxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonMode,
		},
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	choice := resp.Choices[0]
	o.logger.Debug("OpenAI completion",
		"model", modelName,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
		"finish_reason", choice.FinishReason,
		"duration", time.Since(start))

	if choice.Message.Content == "" && choice.Message.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", choice.Message.Refusal)
	}
	return choice.Message.Content, nil
}

func (o *OpenAIService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	content, err := o.chatCompletion(ctx, messages, o.modelName)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: content, Model: o.modelName}, nil
}

func (o *OpenAIService) BackendChat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	model := backendModel(o.modelName, o.backendModelName)
	content, err := o.chatCompletion(ctx, messages, model)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: content, Model: model}, nil
}
