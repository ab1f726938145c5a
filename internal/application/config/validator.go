package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/doeshing/persona-go/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	seen := make(map[string]bool, len(cfg.Models))
	for _, model := range cfg.Models {
		if err := validateModel(model); err != nil {
			return err
		}
		if seen[model.Name] {
			return fmt.Errorf("model %s is declared twice", model.Name)
		}
		seen[model.Name] = true
	}
	if cfg.Preferences.DefaultModel != "" && !cfg.HasModel(cfg.Preferences.DefaultModel) {
		return fmt.Errorf("default model %s not found in models list", cfg.Preferences.DefaultModel)
	}
	if cfg.Preferences.ChatRounds < 0 {
		return fmt.Errorf("preferences.chat_rounds must be >= 0")
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateVoices(cfg.Voices); err != nil {
		return err
	}
	return validateLogging(cfg.Logging)
}

func validateModel(model domain.ModelDefinition) error {
	if strings.TrimSpace(model.Name) == "" {
		return errors.New("model name must be set")
	}
	if strings.ContainsAny(model.Name, " \t") {
		return fmt.Errorf("model name %q must be a single word", model.Name)
	}
	if model.Kind() == domain.ProviderKindUnknown {
		return fmt.Errorf("model %s: cannot infer provider from endpoint %q", model.Name, model.Endpoint)
	}
	if model.Kind() != domain.ProviderKindOffline && model.ModelID == "" {
		return fmt.Errorf("model %s: model_id must be set", model.Name)
	}
	if model.Temperature < 0 || model.Temperature > 2 {
		return fmt.Errorf("model %s: temperature must be between 0 and 2", model.Name)
	}
	if model.MaxTokens < 0 {
		return fmt.Errorf("model %s: max_tokens must be >= 0", model.Name)
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	if history.Capacity < 0 {
		return fmt.Errorf("history.capacity must be >= 0")
	}
	switch strings.ToLower(history.Backend) {
	case "", domain.StorageBackendSQLite, domain.StorageBackendFile:
		return nil
	default:
		return fmt.Errorf("history.backend must be %s|%s, got %s", domain.StorageBackendSQLite, domain.StorageBackendFile, history.Backend)
	}
}

func validateVoices(voices domain.VoiceSettings) error {
	seen := map[string]bool{}
	for _, provider := range voices.Providers {
		if strings.TrimSpace(provider) == "" {
			return errors.New("voices.providers must not contain empty names")
		}
		key := strings.ToLower(provider)
		if seen[key] {
			return fmt.Errorf("voice provider %s listed twice", provider)
		}
		seen[key] = true
	}
	return nil
}

func validateLogging(logging domain.LoggingSettings) error {
	if logging.Level == "" {
		return nil
	}
	if _, err := zapcore.ParseLevel(logging.Level); err != nil {
		return fmt.Errorf("logging.level invalid: %w", err)
	}
	return nil
}
