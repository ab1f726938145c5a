// Package domain defines core business entities and value objects for persona.
//
// This file contains AI model and provider definitions used throughout the application.
// The domain layer is independent of infrastructure concerns and represents pure
// business logic and data structures.
package domain

import "strings"

// ProviderKind identifies which SDK adapter serves a model.
type ProviderKind string

const (
	ProviderKindOpenAI    ProviderKind = "openai"
	ProviderKindAnthropic ProviderKind = "anthropic"
	ProviderKindGemini    ProviderKind = "gemini"
	ProviderKindOllama    ProviderKind = "ollama"
	ProviderKindOffline   ProviderKind = "offline"
	ProviderKindUnknown   ProviderKind = "unknown"
)

// ModelDefinition describes an AI provider configuration declared in the config file.
type ModelDefinition struct {
	Name        string       `yaml:"name"`
	Provider    ProviderKind `yaml:"provider"`
	Endpoint    string       `yaml:"endpoint,omitempty"`
	AuthEnvVar  string       `yaml:"auth_env_var,omitempty"`
	ModelID     string       `yaml:"model_id"`
	MaxTokens   int          `yaml:"max_tokens"`
	Temperature float64      `yaml:"temperature"`
}

// Kind resolves the provider, inferring it from the endpoint when unset.
func (m ModelDefinition) Kind() ProviderKind {
	switch ProviderKind(strings.ToLower(string(m.Provider))) {
	case ProviderKindOpenAI:
		return ProviderKindOpenAI
	case ProviderKindAnthropic:
		return ProviderKindAnthropic
	case ProviderKindGemini:
		return ProviderKindGemini
	case ProviderKindOllama:
		return ProviderKindOllama
	case ProviderKindOffline:
		return ProviderKindOffline
	}
	endpoint := strings.ToLower(m.Endpoint)
	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return ProviderKindAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return ProviderKindOpenAI
	case strings.Contains(endpoint, "googleapis.com"):
		return ProviderKindGemini
	case strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return ProviderKindOllama
	case m.Provider == "" && m.Endpoint == "":
		return ProviderKindOffline
	default:
		return ProviderKindUnknown
	}
}

// DefaultAuthEnvVar returns the environment variable conventionally holding the provider key.
func (k ProviderKind) DefaultAuthEnvVar() string {
	switch k {
	case ProviderKindOpenAI:
		return "OPENAI_API_KEY"
	case ProviderKindAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderKindGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// AuthEnv returns the configured auth variable or the provider default.
func (m ModelDefinition) AuthEnv() string {
	if m.AuthEnvVar != "" {
		return m.AuthEnvVar
	}
	return m.Kind().DefaultAuthEnvVar()
}

// ChatRole enumerates message roles sent to providers.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one provider-agnostic conversation turn.
type ChatMessage struct {
	Role    ChatRole
	Content string
}
