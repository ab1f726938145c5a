package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/persona-go/internal/app"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/infrastructure/cli/tui"
)

type chatOptions struct {
	Model         string
	Focus         string
	MarkdownStyle string
}

// NewChatCommand creates the interactive console command
func NewChatCommand(container *app.Container) *cobra.Command {
	var opts chatOptions

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), container, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "Start with this model")
	cmd.Flags().StringVarP(&opts.Focus, "focus", "f", "", "Start chatting with this personality")
	cmd.Flags().StringVar(&opts.MarkdownStyle, "style", DefaultMarkdownStyle, "Markdown style for replies (dark, light, notty, dracula...)")
	return cmd
}

// runChat prepares the session and hands the terminal to the console
func runChat(ctx context.Context, container *app.Container, opts chatOptions) error {
	dispatcher := container.Dispatcher
	if opts.Model != "" {
		res, err := dispatcher.SelectModel(ctx, opts.Model)
		if err != nil {
			return fmt.Errorf("failed to select model: %w", err)
		}
		if issue := firstError(res); issue != "" {
			return fmt.Errorf("failed to select model: %s", issue)
		}
	}
	if opts.Focus != "" {
		res, err := dispatcher.Dispatch(ctx, "focus "+opts.Focus)
		if err != nil {
			return fmt.Errorf("failed to focus %s: %w", opts.Focus, err)
		}
		if issue := firstError(res); issue != "" {
			return fmt.Errorf("failed to focus %s: %s", opts.Focus, issue)
		}
	}

	return tui.Run(ctx, tui.Options{
		Host:          dispatcher,
		Table:         container.Table,
		History:       container.History,
		Store:         container.Store,
		Clipboard:     container.Clipboard,
		Logger:        container.Logger,
		ExportDir:     app.ExportsDir(),
		MarkdownStyle: opts.MarkdownStyle,
	}, container.WatchPersonalities)
}

func firstError(res domain.DispatchResult) string {
	for _, entry := range res.Entries {
		if entry.Type == domain.OutputError {
			return entry.Text
		}
	}
	return ""
}
