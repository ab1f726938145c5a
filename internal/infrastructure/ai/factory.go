// Package ai adapts the provider SDKs (OpenAI, Anthropic, Gemini, Ollama) to
// ports.Provider.
package ai

import (
	"fmt"
	"os"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

// Factory builds providers for model definitions.
type Factory struct {
	logger ports.Logger
	getenv func(string) string
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithLogger routes fallback notices to logger.
func WithLogger(logger ports.Logger) FactoryOption {
	return func(f *Factory) { f.logger = logger }
}

// WithGetenv overrides the environment lookup used for API keys.
func WithGetenv(getenv func(string) string) FactoryOption {
	return func(f *Factory) { f.getenv = getenv }
}

// NewFactory returns a Factory reading keys from the process environment.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{getenv: os.Getenv}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForModel returns the provider serving def. A missing API key yields the
// offline provider rather than an error so the console stays usable.
func (f *Factory) ForModel(def domain.ModelDefinition) (ports.Provider, error) {
	kind := def.Kind()
	switch kind {
	case domain.ProviderKindOffline:
		return newOfflineProvider(def, ""), nil
	case domain.ProviderKindOllama:
		return newOllamaProvider(def), nil
	case domain.ProviderKindUnknown:
		return nil, fmt.Errorf("model %q: unknown provider %q", def.Name, def.Provider)
	}

	env := def.AuthEnv()
	key := f.getenv(env)
	if key == "" {
		f.warn("api key missing, replying offline", map[string]interface{}{
			"model": def.Name,
			"env":   env,
		})
		return newOfflineProvider(def, fmt.Sprintf("%s is not set", env)), nil
	}

	switch kind {
	case domain.ProviderKindOpenAI:
		return newOpenAIProvider(def, key), nil
	case domain.ProviderKindAnthropic:
		return newAnthropicProvider(def, key), nil
	case domain.ProviderKindGemini:
		return newGeminiProvider(def, key), nil
	}
	return nil, fmt.Errorf("model %q: unsupported provider %q", def.Name, kind)
}

func (f *Factory) warn(msg string, fields map[string]interface{}) {
	if f.logger != nil {
		f.logger.Warn(msg, fields)
	}
}
