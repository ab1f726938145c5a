package domain

import (
	"errors"
	"strings"
)

// Voice binds a personality to a TTS provider and voice.
type Voice struct {
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`
	VoiceID  string `yaml:"voice_id,omitempty" json:"voiceId,omitempty"`
}

// Personality is a user-authored chat persona.
type Personality struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Prompt      string  `yaml:"prompt" json:"prompt"`
	Knowledge   string  `yaml:"knowledge,omitempty" json:"knowledge,omitempty"`
	Model       string  `yaml:"model,omitempty" json:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens" json:"maxTokens"`
	Voice       Voice   `yaml:"voice,omitempty" json:"voice,omitempty"`
	Image       string  `yaml:"image,omitempty" json:"image,omitempty"`
}

// Validate checks the fields every personality needs.
func (p Personality) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("personality name is required")
	}
	if strings.ContainsAny(p.Name, " \t\n") {
		return errors.New("personality name must be a single word")
	}
	if t := p.Temperature; t != nil && (*t < 0 || *t > 2) {
		return errors.New("temperature must be between 0 and 2")
	}
	if p.MaxTokens < 0 {
		return errors.New("max_tokens must be >= 0")
	}
	return nil
}

// Float returns a pointer to v, for optional settings such as Temperature.
func Float(v float64) *float64 {
	return &v
}

// Matches reports whether key names this personality (ID or case-insensitive name).
func (p Personality) Matches(key string) bool {
	return p.ID == key || strings.EqualFold(p.Name, key)
}
