package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOllamaURL   = "http://localhost:11434/v1"
)

// openAIProvider speaks the chat completions API. Ollama's OpenAI-compatible
// endpoint is served by the same adapter.
type openAIProvider struct {
	name   string
	model  domain.ModelDefinition
	client *openai.Client
}

func newOpenAIProvider(model domain.ModelDefinition, apiKey string, extra ...option.RequestOption) ports.Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if model.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(model.Endpoint))
	}
	opts = append(opts, extra...)
	c := openai.NewClient(opts...)
	return &openAIProvider{name: "openai", model: model, client: &c}
}

func newOllamaProvider(model domain.ModelDefinition, extra ...option.RequestOption) ports.Provider {
	model.Endpoint = valueOrDefault(model.Endpoint, defaultOllamaURL)
	p := newOpenAIProvider(model, "ollama", extra...).(*openAIProvider)
	p.name = "ollama"
	return p
}

func (p *openAIProvider) Name() string {
	return p.name
}

func (p *openAIProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *openAIProvider) Chat(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	temperature, maxTokens := settings(p.model, req)
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(valueOrDefault(p.model.ModelID, defaultOpenAIModel)),
		Messages:            toOpenAIMessages(req),
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("%s: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return ports.ChatResponse{}, errors.New(p.name + ": empty response")
	}
	return ports.ChatResponse{Text: cleanReply(resp.Choices[0].Message.Content)}, nil
}

func toOpenAIMessages(req ports.ChatRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case domain.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}
