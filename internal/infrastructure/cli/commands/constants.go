package commands

// CLI-specific constants
const (
	// DefaultEditorCommand is the default editor command
	DefaultEditorCommand = "vi"
	// DefaultHistoryLimit caps "history list"
	DefaultHistoryLimit = 20
	// DefaultMarkdownStyle is the glamour style used for replies
	DefaultMarkdownStyle = "dark"
	// ArchiveExtension is appended to exported personality files
	ArchiveExtension = ".zip"
)

// Error messages
const (
	ErrDoctorServiceUnavailable  = "doctor service unavailable"
	ErrHistoryStoreUnavailable   = "history store unavailable"
	ErrPersonalitiesUnavailable  = "personality store unavailable"
	ErrModelNameProviderRequired = "--name and --provider are required"
	ErrPersonalityNameRequired   = "--name is required"
	ErrPromptRequired            = "a prompt is required (use --prompt or --prompt-file)"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No history recorded yet."
	MsgNoPersonalities          = "No personalities defined."
	MsgCancelled                = "Cancelled."
)
