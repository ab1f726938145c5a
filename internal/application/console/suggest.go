package console

import "strings"

// MaxSuggestions bounds the suggestion list.
const MaxSuggestions = 5

// Suggest returns up to MaxSuggestions completions for input, drawn from the
// table's names and aliases first, then history. Matching is a case-insensitive
// prefix match; a leading force prefix is stripped for matching and put back on
// every result.
func Suggest(input string, history []string, table Table) []string {
	return suggest(input, history, table, MaxSuggestions)
}

func suggest(input string, history []string, table Table, limit int) []string {
	if strings.TrimSpace(input) == "" {
		return []string{}
	}
	query := strings.TrimLeft(input, " \t")
	prefix := ""
	if HasForcePrefix(query) {
		prefix = query[:1]
		query = query[1:]
	}
	needle := strings.ToLower(query)

	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	consider := func(candidate string) bool {
		if candidate == "" || !strings.HasPrefix(strings.ToLower(candidate), needle) {
			return false
		}
		if _, dup := seen[candidate]; dup {
			return false
		}
		seen[candidate] = struct{}{}
		out = append(out, prefix+candidate)
		return len(out) >= limit
	}

	for _, name := range table.Names() {
		if consider(name) {
			return out
		}
	}
	for _, entry := range history {
		if consider(StripForcePrefix(entry)) {
			return out
		}
	}
	return out
}
