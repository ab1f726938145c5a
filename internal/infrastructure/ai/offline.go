package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

// offlineProvider answers without a network round trip. It backs the "echo"
// model and stands in for providers whose API key is missing.
type offlineProvider struct {
	model  domain.ModelDefinition
	reason string
}

func newOfflineProvider(model domain.ModelDefinition, reason string) ports.Provider {
	return &offlineProvider{model: model, reason: reason}
}

func (p *offlineProvider) Name() string {
	return string(domain.ProviderKindOffline)
}

func (p *offlineProvider) Model() domain.ModelDefinition {
	return p.model
}

// OfflineReason explains why the model is served offline; empty for echo models.
func (p *offlineProvider) OfflineReason() string {
	return p.reason
}

func (p *offlineProvider) Chat(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return ports.ChatResponse{}, err
	}
	last := strings.TrimSpace(lastUserMessage(req.Messages))
	if last == "" {
		return ports.ChatResponse{Text: "..."}, nil
	}
	return ports.ChatResponse{Text: fmt.Sprintf("(offline) You said: %s", last)}, nil
}

// IsOffline reports whether a provider replies without a real model.
func IsOffline(p ports.Provider) bool {
	return p != nil && p.Name() == string(domain.ProviderKindOffline)
}

var _ ports.OfflineNotice = (*offlineProvider)(nil)
