package domain

// OutputType discriminates entries of the console output log.
type OutputType string

const (
	OutputCommand             OutputType = "command"
	OutputResponse            OutputType = "response"
	OutputError               OutputType = "error"
	OutputWarning             OutputType = "warning"
	OutputUserMessage         OutputType = "user_message"
	OutputAIResponse          OutputType = "ai_response"
	OutputCommunication       OutputType = "communication"
	OutputExternalLLMResponse OutputType = "external_llm_response"
)

// IsIssue reports whether entries of this type belong to the issues view.
func (t OutputType) IsIssue() bool {
	return t == OutputError || t == OutputWarning
}

// Label is the short tag used in transcripts.
func (t OutputType) Label() string {
	switch t {
	case OutputCommand:
		return "CMD"
	case OutputResponse:
		return "SYS"
	case OutputError:
		return "ERROR"
	case OutputWarning:
		return "WARN"
	case OutputUserMessage:
		return "USER"
	case OutputAIResponse:
		return "AI"
	case OutputCommunication:
		return "COMM"
	case OutputExternalLLMResponse:
		return "LLM"
	default:
		return "?"
	}
}

// OutputEntry is an immutable record in the output log.
type OutputEntry struct {
	Type       OutputType `json:"type"`
	Text       string     `json:"text"`
	AuthorName string     `json:"authorName,omitempty"`
}

// Effect is a UI-side action requested by the dispatcher.
type Effect string

const (
	EffectClearLog       Effect = "clear_log"
	EffectShowIssues     Effect = "show_issues"
	EffectOpenSearch     Effect = "open_search"
	EffectExportText     Effect = "export_text"
	EffectExportJSON     Effect = "export_json"
	EffectCopyTranscript Effect = "copy_transcript"
	EffectShowHistory    Effect = "show_history"
	EffectFocus          Effect = "focus"
	EffectUnfocus        Effect = "unfocus"
	EffectModelChanged   Effect = "model_changed"
	EffectQuit           Effect = "quit"
)

// EffectRequest pairs an effect with its argument (search query, personality name...).
type EffectRequest struct {
	Effect Effect
	Arg    string
}

// DispatchResult is everything a dispatched line produced.
type DispatchResult struct {
	Entries []OutputEntry
	Effects []EffectRequest
}

// Add appends an entry.
func (r *DispatchResult) Add(t OutputType, text, author string) {
	r.Entries = append(r.Entries, OutputEntry{Type: t, Text: text, AuthorName: author})
}

// Request appends an effect.
func (r *DispatchResult) Request(effect Effect, arg string) {
	r.Effects = append(r.Effects, EffectRequest{Effect: effect, Arg: arg})
}

// SessionStatus is a snapshot of the host session shown in the console header
// and in transcript metadata.
type SessionStatus struct {
	User     string
	Model    string
	Provider string
	Topic    string
	Focus    string
	Group    []string
}
