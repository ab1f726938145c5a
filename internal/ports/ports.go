// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The console, the dispatcher and the doctor depend on
// these abstractions; SQLite, YAML files, provider SDKs and the terminal UI live
// behind them.
package ports

import (
	"context"

	"github.com/doeshing/persona-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.persona/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// KeyValueStore is a durable string key/value map (the browser localStorage analog).
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}

// SensitiveMatcher decides whether a command line must never reach durable storage.
type SensitiveMatcher interface {
	IsSensitive(command string) bool
}

// PersonalityRepository stores the personality catalogue.
type PersonalityRepository interface {
	List(context.Context) ([]domain.Personality, error)
	Get(ctx context.Context, key string) (domain.Personality, error)
	Save(context.Context, domain.Personality) error
	Delete(ctx context.Context, key string) error
}

// ProviderFactory builds AI provider instances based on model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Provider is a chat-capable LLM backend.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Chat(context.Context, ChatRequest) (ChatResponse, error)
}

// OfflineNotice is implemented by providers that answer without a real model.
// A non-empty reason means a real provider was configured but is unusable.
type OfflineNotice interface {
	OfflineReason() string
}

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	System      string
	Messages    []domain.ChatMessage
	Temperature *float64 // nil uses the model's temperature
	MaxTokens   int
}

// ChatResponse holds the generated reply.
type ChatResponse struct {
	Text string
}

// Dispatcher executes submitted console lines on behalf of the host application.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) (domain.DispatchResult, error)
}

// Host is the application surface the interactive console talks to: the
// dispatcher plus the catalogues the selection modes need.
type Host interface {
	Dispatcher
	Models(ctx context.Context) ([]domain.ModelDefinition, error)
	Personalities(ctx context.Context) ([]domain.Personality, error)
	SelectModel(ctx context.Context, name string) (domain.DispatchResult, error)
	SelectGroup(ctx context.Context, names []string) (domain.DispatchResult, error)
	Status() domain.SessionStatus
}

// Clipboard provides cross-platform clipboard integration for copying transcripts.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// ConfirmationPrompter asks the user a yes/no question on the terminal.
type ConfirmationPrompter interface {
	Confirm(question string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
