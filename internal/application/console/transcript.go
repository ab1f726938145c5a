package console

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/persona-go/internal/domain"
)

const (
	transcriptTitle  = "=== Persona Console Transcript ==="
	transcriptRule   = "=================================="
	transcriptFooter = "=== End of Transcript (%d entries) ==="
)

// TranscriptMeta is the header written above an exported log.
type TranscriptMeta struct {
	ExportedAt time.Time
	User       string
	Model      string
	Provider   string
	Topic      string
}

// MetaFromStatus builds transcript metadata from a session snapshot.
func MetaFromStatus(status domain.SessionStatus, now time.Time) TranscriptMeta {
	return TranscriptMeta{
		ExportedAt: now,
		User:       status.User,
		Model:      status.Model,
		Provider:   status.Provider,
		Topic:      status.Topic,
	}
}

// FormatEntry renders one entry as a single transcript line.
func FormatEntry(e domain.OutputEntry) string {
	text := strings.ReplaceAll(e.Text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", `\n`)
	if e.AuthorName != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.Label(), e.AuthorName, text)
	}
	if e.Type == domain.OutputCommand {
		return fmt.Sprintf("[%s] > %s", e.Type.Label(), text)
	}
	return fmt.Sprintf("[%s] %s", e.Type.Label(), text)
}

// FormatTranscript renders the full log as plain text: a fixed header, one
// line per entry and a footer. Output depends only on its arguments.
func FormatTranscript(entries []domain.OutputEntry, meta TranscriptMeta) string {
	var b strings.Builder
	b.WriteString(transcriptTitle + "\n")
	fmt.Fprintf(&b, "Exported: %s\n", meta.ExportedAt.Format(domain.TranscriptTimeFormat))
	fmt.Fprintf(&b, "User: %s\n", orDash(meta.User))
	fmt.Fprintf(&b, "Model: %s\n", orDash(meta.Model))
	fmt.Fprintf(&b, "Provider: %s\n", orDash(meta.Provider))
	fmt.Fprintf(&b, "Topic: %s\n", orDash(meta.Topic))
	b.WriteString(transcriptRule + "\n")
	for _, e := range entries {
		b.WriteString(FormatEntry(e))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, transcriptFooter+"\n", len(entries))
	return b.String()
}

// TranscriptDocument is the JSON export shape.
type TranscriptDocument struct {
	ExportedAt string               `json:"exportedAt"`
	User       string               `json:"user,omitempty"`
	Model      string               `json:"model,omitempty"`
	Provider   string               `json:"provider,omitempty"`
	Topic      string               `json:"topic,omitempty"`
	Entries    []domain.OutputEntry `json:"entries"`
}

// TranscriptJSON renders the full log as an indented JSON document.
func TranscriptJSON(entries []domain.OutputEntry, meta TranscriptMeta) ([]byte, error) {
	if entries == nil {
		entries = []domain.OutputEntry{}
	}
	doc := TranscriptDocument{
		ExportedAt: meta.ExportedAt.Format(domain.TimestampFormat),
		User:       meta.User,
		Model:      meta.Model,
		Provider:   meta.Provider,
		Topic:      meta.Topic,
		Entries:    entries,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return data, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
