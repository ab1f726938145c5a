package helpers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptForText reads lines until an empty line or EOF and returns them
// joined with newlines.
func PromptForText(out io.Writer, reader *bufio.Reader, promptText string) string {
	fmt.Fprintf(out, "%s (finish with an empty line):\n", promptText)

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// PrintWarnings outputs a list of warning messages to the writer
func PrintWarnings(out io.Writer, warnings []string) {
	for _, warning := range warnings {
		warning = strings.TrimSpace(warning)
		if warning == "" {
			continue
		}
		fmt.Fprintf(out, "Warning: %s\n", warning)
	}
}
