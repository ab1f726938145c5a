package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultPrivacyYAML contains the embedded sensitive-command rules.
//
//go:embed defaults/privacy.yaml
var DefaultPrivacyYAML []byte

// DefaultPersonalitiesYAML seeds the personality catalogue on first run.
//
//go:embed defaults/personalities.yaml
var DefaultPersonalitiesYAML []byte
