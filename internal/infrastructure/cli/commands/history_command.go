package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/persona-go/internal/app"
	"github.com/doeshing/persona-go/internal/application/console"
	"github.com/doeshing/persona-go/internal/domain"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the console command history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistorySearchCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent commands, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultHistoryLimit, "Max entries to show (0 for all)")
	return cmd
}

// newHistorySearchCommand creates the 'history search' subcommand
func newHistorySearchCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search history for a keyword (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return searchHistoryEntries(cmd.OutOrStdout(), container, args[0])
		},
	}
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every recorded command",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearHistory(cmd.OutOrStdout(), container, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHistory(cmd.OutOrStdout(), container, args[0])
		},
	}
}

func historyOf(container *app.Container) (*console.History, error) {
	if container.History == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return container.History, nil
}

// listHistoryEntries lists recent history entries
func listHistoryEntries(out io.Writer, container *app.Container, limit int) error {
	history, err := historyOf(container)
	if err != nil {
		return err
	}

	entries := history.All()
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	start := 0
	if limit > 0 && len(entries) > limit {
		start = len(entries) - limit
	}
	for i := start; i < len(entries); i++ {
		fmt.Fprintf(out, "%4d  %s\n", i+1, entries[i])
	}
	return nil
}

// searchHistoryEntries prints entries containing keyword
func searchHistoryEntries(out io.Writer, container *app.Container, keyword string) error {
	history, err := historyOf(container)
	if err != nil {
		return err
	}

	needle := strings.ToLower(keyword)
	for i, entry := range history.All() {
		if strings.Contains(strings.ToLower(entry), needle) {
			fmt.Fprintf(out, "%4d  %s\n", i+1, entry)
		}
	}
	return nil
}

// clearHistory clears the persisted history
func clearHistory(out io.Writer, container *app.Container, yes bool) error {
	history, err := historyOf(container)
	if err != nil {
		return err
	}

	if !yes {
		ok, err := confirm(container, fmt.Sprintf("Clear %d history entries?", history.Len()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, MsgCancelled)
			return nil
		}
	}

	if err := history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Fprintln(out, "History cleared.")
	return nil
}

// exportHistory writes the history as a JSON array
func exportHistory(out io.Writer, container *app.Container, path string) error {
	history, err := historyOf(container)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(history.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(path, data, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("failed to export history to %s: %w", path, err)
	}
	fmt.Fprintf(out, "Exported %d entries to %s\n", history.Len(), path)
	return nil
}

// confirm asks through the container prompter; without one the answer is no.
func confirm(container *app.Container, question string) (bool, error) {
	if container.Prompter == nil || !container.Prompter.Enabled() {
		return false, fmt.Errorf("confirmation required for %q; re-run with --yes", question)
	}
	return container.Prompter.Confirm(question)
}
