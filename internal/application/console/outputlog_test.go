package console

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
)

func mixedLog() *OutputLog {
	log := NewOutputLog()
	log.Append(
		domain.OutputEntry{Type: domain.OutputCommand, Text: "focus Alice"},
		domain.OutputEntry{Type: domain.OutputResponse, Text: "Now chatting with Alice."},
		domain.OutputEntry{Type: domain.OutputError, Text: "provider unreachable"},
		domain.OutputEntry{Type: domain.OutputWarning, Text: "no API key, using offline replies"},
		domain.OutputEntry{Type: domain.OutputAIResponse, Text: "Hello!", AuthorName: "Alice"},
	)
	return log
}

func TestOutputLogViews(t *testing.T) {
	log := mixedLog()
	assert.Equal(t, []int{0, 1, 4}, log.Visible())

	assert.Equal(t, ViewIssues, log.ToggleIssues())
	assert.Equal(t, []int{2, 3}, log.Visible())

	log.SetIssueFilter(IssuesErrors)
	assert.Equal(t, []int{2}, log.Visible())
	assert.Equal(t, IssuesWarnings, log.CycleIssueFilter())
	assert.Equal(t, []int{3}, log.Visible())

	assert.Equal(t, ViewStandard, log.ToggleIssues())
	assert.Equal(t, 5, log.Len(), "views never change the log")

	errs, warns := log.IssueCounts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)
}

func TestOutputLogFilter(t *testing.T) {
	log := mixedLog()
	ai := log.Filter(func(e domain.OutputEntry) bool { return e.Type == domain.OutputAIResponse })
	require.Len(t, ai, 1)
	assert.Equal(t, "Alice", ai[0].AuthorName)
}

func TestOutputLogSearchTextAndAuthor(t *testing.T) {
	log := mixedLog()
	assert.Equal(t, []int{0, 1, 4}, log.Search("alice"))
	assert.Equal(t, []int{2}, log.Search("UNREACHABLE"))
	assert.Nil(t, log.Search("  "))
	assert.Equal(t, []int{0, 1, 4}, log.SearchView("alice"))
	log.ToggleIssues()
	assert.Empty(t, log.SearchView("alice"))
}

func TestSearchCyclesThroughMatches(t *testing.T) {
	log := NewOutputLog()
	for i := 0; i < 10; i++ {
		text := fmt.Sprintf("line %d", i)
		if i == 2 || i == 5 || i == 9 {
			text += " needle"
		}
		log.Append(domain.OutputEntry{Type: domain.OutputResponse, Text: text})
	}
	matches := log.Search("Needle")
	require.Equal(t, []int{2, 5, 9}, matches)

	cursor := NewSearchCursor("Needle", matches)
	first, ok := cursor.Current()
	require.True(t, ok)
	assert.Equal(t, 2, first)

	forward := []int{first}
	for i := 0; i < 2; i++ {
		idx, _ := cursor.Next()
		forward = append(forward, idx)
	}
	assert.ElementsMatch(t, matches, forward)
	wrapped, _ := cursor.Next()
	assert.Equal(t, 2, wrapped)

	backward := []int{}
	for i := 0; i < 3; i++ {
		idx, _ := cursor.Prev()
		backward = append(backward, idx)
	}
	assert.Equal(t, []int{9, 5, 2}, backward)
	assert.Equal(t, 1, cursor.Position())
}

func TestSearchCursorEmpty(t *testing.T) {
	cursor := NewSearchCursor("x", nil)
	_, ok := cursor.Current()
	assert.False(t, ok)
	_, ok = cursor.Next()
	assert.False(t, ok)
	_, ok = cursor.Prev()
	assert.False(t, ok)
	assert.Equal(t, 0, cursor.Position())
}
