package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/persona-go/internal/app"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The returned func releases the
// container and must run after Execute.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func() error, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, nil, err
	}
	container.Prompter = NewPrompter(nil, nil)
	container.Clipboard = NewClipboard()

	chatCmd := commands.NewChatCommand(container)

	root := &cobra.Command{
		Use:           "persona",
		Short:         "Persona - chat with virtual personalities",
		Long:          "Persona is a terminal console for chatting with configurable AI personalities, alone or in groups.",
		Args:          cobra.NoArgs,
		RunE:          chatCmd.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().AddFlagSet(chatCmd.Flags())

	root.AddCommand(chatCmd)
	root.AddCommand(newExecCommand(container))
	root.AddCommand(commands.NewPersonalityCommand(container))
	root.AddCommand(commands.NewHistoryCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewModelsCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, container.Close, nil
}

func newExecCommand(container *app.Container) *cobra.Command {
	var (
		model   string
		focus   string
		quiet   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "exec [console line]",
		Short: "Run one console line without opening the interactive console",
		Example: `  persona exec help
  persona exec --focus Ada "What is a closure?"
  persona exec ask gpt-4o-mini "Summarize the plot of Hamlet"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			out := cmd.OutOrStdout()
			dispatcher := container.Dispatcher

			if model != "" {
				res, err := dispatcher.SelectModel(ctx, model)
				if err != nil {
					return fmt.Errorf("failed to select model: %w", err)
				}
				if issue := FirstIssue(res); issue != "" {
					return errors.New(issue)
				}
			}
			if focus != "" {
				res, err := dispatcher.Dispatch(ctx, "focus "+focus)
				if err != nil {
					return fmt.Errorf("failed to focus %s: %w", focus, err)
				}
				if issue := FirstIssue(res); issue != "" {
					return errors.New(issue)
				}
			}

			var spin *Spinner
			if !quiet {
				spin = NewSpinner(os.Stderr, "Thinking...")
				spin.Start()
			}
			res, err := dispatcher.Dispatch(ctx, strings.Join(args, " "))
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return fmt.Errorf("dispatch failed: %w", err)
			}
			RenderResult(out, res)
			if issue := FirstIssue(res); issue != "" {
				return errors.New("command reported an error")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Override the model for this run")
	cmd.Flags().StringVarP(&focus, "focus", "f", "", "Chat with this personality")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show a progress spinner")
	cmd.Flags().DurationVar(&timeout, "timeout", domain.DefaultProviderTimeout, "Override request timeout")

	return cmd
}
