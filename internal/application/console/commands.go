// Package console implements the interactive command line that overlays the
// chat view: the command table, suggestions, live validation, history, the
// output log and the two modal selection modes.
//
// Everything in this package is synchronous and owned by a single goroutine
// (the terminal UI update loop). Dispatching a submitted line is the host's
// job; the console only decides what to hand over.
package console

import (
	"strings"
)

// ForcePrefix marks input as a command even while chatting with a personality.
const ForcePrefix = "!"

// AltForcePrefix is accepted wherever ForcePrefix is.
const AltForcePrefix = "/"

// ArgKind describes the argument shape a command accepts.
type ArgKind int

const (
	// ArgNone takes no arguments.
	ArgNone ArgKind = iota
	// ArgAny accepts anything, including nothing.
	ArgAny
	// ArgNames requires exactly Count space-separated names.
	ArgNames
	// ArgNumber requires one finite number within [Min, Max], a whole one
	// when Integer is set.
	ArgNumber
	// ArgChoice requires one value from Choices.
	ArgChoice
	// ArgOptionalChoice accepts nothing or one value from Choices.
	ArgOptionalChoice
	// ArgText requires free text.
	ArgText
	// ArgNameAndText requires a name followed by free text.
	ArgNameAndText
)

// ArgRule is the per-command argument shape check.
type ArgRule struct {
	Kind    ArgKind
	Count   int
	Min     float64
	Max     float64
	Integer bool
	Choices []string
}

// Command is one entry of the command table.
type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Args        ArgRule
	// Mode, when set, is entered by the console instead of dispatching the line.
	Mode Mode
	// Sensitive commands carry credentials and are masked when echoed.
	Sensitive bool
}

// Table maps canonical command names and aliases to commands.
type Table struct {
	commands []Command
	index    map[string]int
}

// NewTable builds a table; later duplicates of a name or alias are ignored.
func NewTable(commands []Command) Table {
	t := Table{
		commands: make([]Command, 0, len(commands)),
		index:    make(map[string]int, len(commands)*2),
	}
	for _, cmd := range commands {
		name := strings.ToLower(cmd.Name)
		if name == "" {
			continue
		}
		if _, exists := t.index[name]; exists {
			continue
		}
		pos := len(t.commands)
		t.commands = append(t.commands, cmd)
		t.index[name] = pos
		for _, alias := range cmd.Aliases {
			alias = strings.ToLower(alias)
			if _, exists := t.index[alias]; !exists {
				t.index[alias] = pos
			}
		}
	}
	return t
}

// Commands returns the commands in declaration order.
func (t Table) Commands() []Command {
	out := make([]Command, len(t.commands))
	copy(out, t.commands)
	return out
}

// Resolve looks up a token, ignoring case and a leading force prefix.
func (t Table) Resolve(token string) (Command, bool) {
	token = strings.ToLower(StripForcePrefix(token))
	pos, ok := t.index[token]
	if !ok {
		return Command{}, false
	}
	return t.commands[pos], true
}

// Names lists every canonical name followed by every alias, in declaration order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.index))
	for _, cmd := range t.commands {
		names = append(names, cmd.Name)
	}
	for _, cmd := range t.commands {
		names = append(names, cmd.Aliases...)
	}
	return names
}

// HasForcePrefix reports whether the line starts with ! or /.
func HasForcePrefix(line string) bool {
	return strings.HasPrefix(line, ForcePrefix) || strings.HasPrefix(line, AltForcePrefix)
}

// StripForcePrefix removes a single leading ! or /.
func StripForcePrefix(line string) string {
	if HasForcePrefix(line) {
		return line[1:]
	}
	return line
}

// DefaultTable is the command set understood by the persona host.
// Voice providers come from configuration.
func DefaultTable(voiceProviders []string) Table {
	return NewTable([]Command{
		{Name: "help", Aliases: []string{"h", "?"}, Usage: "help [command]", Description: "List commands or describe one", Args: ArgRule{Kind: ArgAny}},
		{Name: "clear", Aliases: []string{"cls"}, Usage: "clear", Description: "Clear the output log"},
		{Name: "models", Aliases: []string{"m"}, Usage: "models", Description: "Pick the active model", Mode: ModeModelSelect},
		{Name: "model", Aliases: []string{"use"}, Usage: "model <name>", Description: "Switch the active model", Args: ArgRule{Kind: ArgNames, Count: 1}},
		{Name: "group", Aliases: []string{"multi", "gc"}, Usage: "group", Description: "Pick personalities for a group chat", Mode: ModePersonalityMultiSelect},
		{Name: "personalities", Aliases: []string{"list", "ls"}, Usage: "personalities", Description: "List personalities"},
		{Name: "focus", Aliases: []string{"f", "chat"}, Usage: "focus <name>", Description: "Chat with one personality", Args: ArgRule{Kind: ArgNames, Count: 1}},
		{Name: "unfocus", Aliases: []string{"back", "exit"}, Usage: "unfocus", Description: "Leave chat mode"},
		{Name: "talk", Aliases: []string{"converse", "duo"}, Usage: "talk <name1> <name2>", Description: "Let two personalities talk about the topic", Args: ArgRule{Kind: ArgNames, Count: 2}},
		{Name: "ask", Aliases: []string{"llm"}, Usage: "ask <model> <question>", Description: "Ask a model directly", Args: ArgRule{Kind: ArgNameAndText}},
		{Name: "temperature", Aliases: []string{"temp"}, Usage: "temperature <0-2>", Description: "Set the focused personality's temperature", Args: ArgRule{Kind: ArgNumber, Min: 0, Max: 2}},
		{Name: "maxtokens", Aliases: []string{"tokens"}, Usage: "maxtokens <1-32768>", Description: "Set the focused personality's reply length", Args: ArgRule{Kind: ArgNumber, Min: 1, Max: 32768, Integer: true}},
		{Name: "voice", Usage: "voice <" + strings.Join(voiceProviders, "|") + ">", Description: "Set the focused personality's voice provider", Args: ArgRule{Kind: ArgChoice, Choices: voiceProviders}},
		{Name: "topic", Usage: "topic <text>", Description: "Set the conversation topic", Args: ArgRule{Kind: ArgText}},
		{Name: "login", Usage: "login <api-key>", Description: "Use an API key for the active provider this session", Args: ArgRule{Kind: ArgNames, Count: 1}, Sensitive: true},
		{Name: "history", Aliases: []string{"hist"}, Usage: "history", Description: "Show command history"},
		{Name: "issues", Aliases: []string{"errors"}, Usage: "issues", Description: "Show errors and warnings"},
		{Name: "search", Aliases: []string{"find"}, Usage: "search <text>", Description: "Search the output log", Args: ArgRule{Kind: ArgText}},
		{Name: "export", Aliases: []string{"save"}, Usage: "export [text|json]", Description: "Export the transcript to a file", Args: ArgRule{Kind: ArgOptionalChoice, Choices: []string{"text", "json"}}},
		{Name: "copy", Usage: "copy", Description: "Copy the transcript to the clipboard"},
		{Name: "quit", Aliases: []string{"q"}, Usage: "quit", Description: "Leave the console"},
	})
}
