package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

const defaultGeminiModel = "gemini-1.5-flash"

// geminiProvider opens a genai client per request; the client owns a gRPC
// connection that must be closed.
type geminiProvider struct {
	model  domain.ModelDefinition
	apiKey string
	extra  []option.ClientOption
}

func newGeminiProvider(model domain.ModelDefinition, apiKey string, extra ...option.ClientOption) ports.Provider {
	return &geminiProvider{model: model, apiKey: apiKey, extra: extra}
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *geminiProvider) Chat(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return ports.ChatResponse{}, errors.New("gemini: no messages")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(p.apiKey)}, p.extra...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("gemini: create client: %w", err)
	}
	defer client.Close()

	temperature, maxTokens := settings(p.model, req)
	model := client.GenerativeModel(valueOrDefault(p.model.ModelID, defaultGeminiModel))
	model.SetTemperature(float32(temperature))
	model.SetMaxOutputTokens(int32(maxTokens))
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	history := toGeminiContent(req.Messages)
	last := history[len(history)-1]
	session := model.StartChat()
	session.History = history[:len(history)-1]

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("gemini: %w", err)
	}
	text := geminiText(resp)
	if text == "" {
		return ports.ChatResponse{}, errors.New("gemini: empty response")
	}
	return ports.ChatResponse{Text: text}, nil
}

func toGeminiContent(messages []domain.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == domain.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return cleanReply(b.String())
}
