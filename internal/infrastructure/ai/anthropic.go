package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

type anthropicProvider struct {
	model  domain.ModelDefinition
	client *anthropic.Client
}

func newAnthropicProvider(model domain.ModelDefinition, apiKey string, extra ...option.RequestOption) ports.Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := anthropicBaseURL(model.Endpoint); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	opts = append(opts, extra...)
	c := anthropic.NewClient(opts...)
	return &anthropicProvider{model: model, client: &c}
}

// anthropicBaseURL keeps the SDK default for the public API; older configs
// pointed at the full /v1/messages path.
func anthropicBaseURL(endpoint string) string {
	if endpoint == "" || strings.Contains(endpoint, "api.anthropic.com") {
		return ""
	}
	return strings.TrimSuffix(endpoint, "/v1/messages")
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *anthropicProvider) Chat(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	temperature, maxTokens := settings(p.model, req)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(valueOrDefault(p.model.ModelID, defaultAnthropicModel)),
		MaxTokens:   int64(maxTokens),
		Messages:    toAnthropicMessages(req.Messages),
		Temperature: anthropic.Float(temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("anthropic: %w", err)
	}
	var text strings.Builder
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		}
	}
	if text.Len() == 0 {
		return ports.ChatResponse{}, errors.New("anthropic: empty response")
	}
	return ports.ChatResponse{Text: cleanReply(text.String())}, nil
}

func toAnthropicMessages(messages []domain.ChatMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == domain.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}
