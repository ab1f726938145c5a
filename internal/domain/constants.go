package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultProviderTimeout bounds a single provider round trip
	DefaultProviderTimeout = 60 * time.Second
	// DefaultSettingsDebounce delays persisting personality settings changes
	DefaultSettingsDebounce = 500 * time.Millisecond
	// DefaultReloadDebounce delays reloading the personality file after a change
	DefaultReloadDebounce = 300 * time.Millisecond
	// DefaultModelTestTimeout bounds "models test"
	DefaultModelTestTimeout = 20 * time.Second
)

// History constants
const (
	// DefaultHistoryCapacity is the number of commands kept in the CLI history
	DefaultHistoryCapacity = 50
	// HistoryStorageKey is the key/value entry holding the JSON history array
	HistoryStorageKey = "cli.history"
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
	// DefaultTemperature is the temperature of a newly added model
	DefaultTemperature = 0.7
	// DefaultChatRounds is the number of exchanges in a talk command
	DefaultChatRounds = 2
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
	// TranscriptTimeFormat is used in transcript headers
	TranscriptTimeFormat = "2006-01-02 15:04:05"
)
