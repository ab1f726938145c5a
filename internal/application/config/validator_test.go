package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/persona-go/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "gpt"},
		Models: []domain.ModelDefinition{
			{Name: "gpt", Provider: domain.ProviderKindOpenAI, ModelID: "gpt-4o-mini"},
			{Name: "echo", Provider: domain.ProviderKindOffline},
		},
		History: domain.HistorySettings{Capacity: 50, Backend: "sqlite"},
		Voices:  domain.VoiceSettings{Providers: []string{"elevenlabs", "openai"}},
		Logging: domain.LoggingSettings{Level: "debug"},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*domain.Config){
		"no models":       func(c *domain.Config) { c.Models = nil },
		"missing default": func(c *domain.Config) { c.Preferences.DefaultModel = "claude" },
		"duplicate model": func(c *domain.Config) { c.Models = append(c.Models, c.Models[0]) },
		"spaced name": func(c *domain.Config) {
			c.Models[0].Name = "my gpt"
			c.Preferences.DefaultModel = "my gpt"
		},
		"unknown provider": func(c *domain.Config) {
			c.Models[0].Provider = ""
			c.Models[0].Endpoint = "https://example.com"
		},
		"no model id":      func(c *domain.Config) { c.Models[0].ModelID = "" },
		"hot temperature":  func(c *domain.Config) { c.Models[0].Temperature = 3 },
		"negative tokens":  func(c *domain.Config) { c.Models[0].MaxTokens = -5 },
		"bad backend":      func(c *domain.Config) { c.History.Backend = "redis" },
		"negative history": func(c *domain.Config) { c.History.Capacity = -1 },
		"duplicate voice":  func(c *domain.Config) { c.Voices.Providers = []string{"openai", "OpenAI"} },
		"blank voice":      func(c *domain.Config) { c.Voices.Providers = []string{" "} },
		"bad log level":    func(c *domain.Config) { c.Logging.Level = "loud" },
		"negative rounds":  func(c *domain.Config) { c.Preferences.ChatRounds = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestValidateOfflineModelNeedsNoModelID(t *testing.T) {
	cfg := validConfig()
	cfg.Models[1].ModelID = ""
	assert.NoError(t, Validate(cfg))
}
