package domain

// Config mirrors ~/.persona/config.yaml.
type Config struct {
	ConfigFormatVersion string              `yaml:"config_format_version"`
	Preferences         Preferences         `yaml:"preferences"`
	Models              []ModelDefinition   `yaml:"models"`
	History             HistorySettings     `yaml:"history"`
	Privacy             PrivacySettings     `yaml:"privacy"`
	Personalities       PersonalitySettings `yaml:"personalities"`
	Voices              VoiceSettings       `yaml:"voices"`
	Logging             LoggingSettings     `yaml:"logging"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel string `yaml:"default_model"`
	UserName     string `yaml:"user_name"`
	Topic        string `yaml:"topic"`
	ChatRounds   int    `yaml:"chat_rounds"`
}

// HistorySettings configures the CLI command history.
type HistorySettings struct {
	Capacity int    `yaml:"capacity"`
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
}

// PrivacySettings points at the sensitive-command rules.
type PrivacySettings struct {
	RulesFile string `yaml:"rules_file"`
}

// PersonalitySettings locates the personality catalogue.
type PersonalitySettings struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

// VoiceSettings lists the voice providers a personality may use.
type VoiceSettings struct {
	Providers []string `yaml:"providers"`
}

// LoggingSettings controls the structured log sink.
type LoggingSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Storage backends.
const (
	StorageBackendSQLite = "sqlite"
	StorageBackendFile   = "file"
)
