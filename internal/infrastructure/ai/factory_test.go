package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

type recordingLogger struct{ warnings []string }

func (l *recordingLogger) Debug(string, map[string]interface{}) {}

func (l *recordingLogger) Info(string, map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) Error(string, error, map[string]interface{}) {}

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFactorySelectsProvider(t *testing.T) {
	factory := NewFactory(WithGetenv(envMap(map[string]string{
		"OPENAI_API_KEY":    "sk",
		"ANTHROPIC_API_KEY": "ak",
		"GEMINI_API_KEY":    "gk",
	})))

	tests := []struct {
		model domain.ModelDefinition
		want  string
	}{
		{domain.ModelDefinition{Name: "gpt", Provider: domain.ProviderKindOpenAI}, "openai"},
		{domain.ModelDefinition{Name: "claude", Provider: domain.ProviderKindAnthropic}, "anthropic"},
		{domain.ModelDefinition{Name: "gem", Provider: domain.ProviderKindGemini}, "gemini"},
		{domain.ModelDefinition{Name: "llama", Provider: domain.ProviderKindOllama}, "ollama"},
		{domain.ModelDefinition{Name: "echo", Provider: domain.ProviderKindOffline}, "offline"},
	}
	for _, tt := range tests {
		t.Run(tt.model.Name, func(t *testing.T) {
			provider, err := factory.ForModel(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.want, provider.Name())
			assert.Equal(t, tt.model.Name, provider.Model().Name)
		})
	}
}

func TestFactoryMissingKeyFallsBackOffline(t *testing.T) {
	logger := &recordingLogger{}
	factory := NewFactory(WithGetenv(envMap(nil)), WithLogger(logger))

	provider, err := factory.ForModel(domain.ModelDefinition{Name: "claude", Provider: domain.ProviderKindAnthropic})
	require.NoError(t, err)
	assert.True(t, IsOffline(provider))
	notice, ok := provider.(ports.OfflineNotice)
	require.True(t, ok)
	assert.Equal(t, "ANTHROPIC_API_KEY is not set", notice.OfflineReason())
	assert.Len(t, logger.warnings, 1)
}

func TestFactoryUnknownProvider(t *testing.T) {
	_, err := NewFactory().ForModel(domain.ModelDefinition{Name: "odd", Endpoint: "https://example.com"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestOfflineProviderEchoes(t *testing.T) {
	provider := newOfflineProvider(domain.ModelDefinition{Name: "echo"}, "")
	resp, err := provider.Chat(context.Background(), ports.ChatRequest{Messages: []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "reply"},
		{Role: domain.RoleUser, Content: " second "},
	}})
	require.NoError(t, err)
	assert.Equal(t, "(offline) You said: second", resp.Text)
	assert.True(t, IsOffline(provider))

	resp, err = provider.Chat(context.Background(), ports.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "...", resp.Text)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = provider.Chat(ctx, ports.ChatRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}
