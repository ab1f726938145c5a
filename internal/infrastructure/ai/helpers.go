package ai

import (
	"strings"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func valueOrDefaultInt(value int, def int) int {
	if value <= 0 {
		return def
	}
	return value
}

// settings resolves request overrides against the model definition.
func settings(model domain.ModelDefinition, req ports.ChatRequest) (temperature float64, maxTokens int) {
	temperature = model.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens = valueOrDefaultInt(req.MaxTokens, valueOrDefaultInt(model.MaxTokens, domain.DefaultMaxTokens))
	return temperature, maxTokens
}

func lastUserMessage(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func cleanReply(text string) string {
	return strings.TrimSpace(text)
}
