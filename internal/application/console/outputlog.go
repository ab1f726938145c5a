package console

import (
	"strings"

	"github.com/doeshing/persona-go/internal/domain"
)

// View selects which entries of the log are shown.
type View int

const (
	// ViewStandard hides errors and warnings.
	ViewStandard View = iota
	// ViewIssues shows only errors and warnings.
	ViewIssues
)

// IssueFilter narrows the issues view.
type IssueFilter int

const (
	IssuesAll IssueFilter = iota
	IssuesErrors
	IssuesWarnings
)

func (f IssueFilter) String() string {
	switch f {
	case IssuesErrors:
		return "errors"
	case IssuesWarnings:
		return "warnings"
	default:
		return "all"
	}
}

// OutputLog is the append-only sequence of console output entries.
// Views and filters are projections; they never change the entries.
type OutputLog struct {
	entries []domain.OutputEntry
	view    View
	issues  IssueFilter
}

// NewOutputLog returns an empty log in the standard view.
func NewOutputLog() *OutputLog {
	return &OutputLog{}
}

// Append adds entries to the end of the log.
func (l *OutputLog) Append(entries ...domain.OutputEntry) {
	l.entries = append(l.entries, entries...)
}

// Clear drops every entry. Used by the clear command only.
func (l *OutputLog) Clear() {
	l.entries = nil
}

// Len returns the total number of entries regardless of view.
func (l *OutputLog) Len() int {
	return len(l.entries)
}

// Entry returns the entry at index i.
func (l *OutputLog) Entry(i int) domain.OutputEntry {
	return l.entries[i]
}

// Entries returns a copy of the full, unfiltered log.
func (l *OutputLog) Entries() []domain.OutputEntry {
	out := make([]domain.OutputEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Filter returns the entries satisfying pred, in log order.
func (l *OutputLog) Filter(pred func(domain.OutputEntry) bool) []domain.OutputEntry {
	var out []domain.OutputEntry
	for _, e := range l.entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// View returns the active view.
func (l *OutputLog) View() View {
	return l.view
}

// SetView switches views.
func (l *OutputLog) SetView(v View) {
	l.view = v
}

// ToggleIssues flips between the standard and issues views.
func (l *OutputLog) ToggleIssues() View {
	if l.view == ViewIssues {
		l.view = ViewStandard
	} else {
		l.view = ViewIssues
	}
	return l.view
}

// IssueFilter returns the issues sub-filter.
func (l *OutputLog) IssueFilter() IssueFilter {
	return l.issues
}

// SetIssueFilter narrows the issues view.
func (l *OutputLog) SetIssueFilter(f IssueFilter) {
	l.issues = f
}

// CycleIssueFilter steps all -> errors -> warnings -> all.
func (l *OutputLog) CycleIssueFilter() IssueFilter {
	l.issues = (l.issues + 1) % 3
	return l.issues
}

// InView reports whether e is shown by the active view.
func (l *OutputLog) InView(e domain.OutputEntry) bool {
	if l.view == ViewStandard {
		return !e.Type.IsIssue()
	}
	switch l.issues {
	case IssuesErrors:
		return e.Type == domain.OutputError
	case IssuesWarnings:
		return e.Type == domain.OutputWarning
	default:
		return e.Type.IsIssue()
	}
}

// Visible returns the log indices shown by the active view.
func (l *OutputLog) Visible() []int {
	var out []int
	for i, e := range l.entries {
		if l.InView(e) {
			out = append(out, i)
		}
	}
	return out
}

// IssueCounts returns the number of errors and warnings in the log.
func (l *OutputLog) IssueCounts() (errors, warnings int) {
	for _, e := range l.entries {
		switch e.Type {
		case domain.OutputError:
			errors++
		case domain.OutputWarning:
			warnings++
		}
	}
	return errors, warnings
}

// Search returns, in log order, the indices of entries whose text or author
// contains query, ignoring case. An empty query matches nothing.
func (l *OutputLog) Search(query string) []int {
	return l.search(query, false)
}

// SearchView is Search restricted to the active view.
func (l *OutputLog) SearchView(query string) []int {
	return l.search(query, true)
}

func (l *OutputLog) search(query string, viewOnly bool) []int {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var out []int
	for i, e := range l.entries {
		if viewOnly && !l.InView(e) {
			continue
		}
		if strings.Contains(strings.ToLower(e.Text), needle) || strings.Contains(strings.ToLower(e.AuthorName), needle) {
			out = append(out, i)
		}
	}
	return out
}

// SearchCursor walks a fixed set of matches cyclically.
type SearchCursor struct {
	query   string
	matches []int
	pos     int
}

// NewSearchCursor positions the cursor on the first match, if any.
func NewSearchCursor(query string, matches []int) *SearchCursor {
	c := &SearchCursor{query: query, matches: matches, pos: noSelection}
	if len(matches) > 0 {
		c.pos = 0
	}
	return c
}

// Query returns the searched text.
func (c *SearchCursor) Query() string {
	return c.query
}

// Matches returns the matched log indices.
func (c *SearchCursor) Matches() []int {
	return c.matches
}

// Len returns the number of matches.
func (c *SearchCursor) Len() int {
	return len(c.matches)
}

// Position returns the 1-based position of the current match, or 0.
func (c *SearchCursor) Position() int {
	return c.pos + 1
}

// Current returns the log index of the current match.
func (c *SearchCursor) Current() (int, bool) {
	if c.pos < 0 {
		return 0, false
	}
	return c.matches[c.pos], true
}

// Next advances, wrapping from the last match to the first.
func (c *SearchCursor) Next() (int, bool) {
	if len(c.matches) == 0 {
		return 0, false
	}
	c.pos = (c.pos + 1) % len(c.matches)
	return c.matches[c.pos], true
}

// Prev steps back, wrapping from the first match to the last.
func (c *SearchCursor) Prev() (int, bool) {
	if len(c.matches) == 0 {
		return 0, false
	}
	c.pos = (c.pos - 1 + len(c.matches)) % len(c.matches)
	return c.matches[c.pos], true
}
