package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/persona-go/internal/app"
	configapp "github.com/doeshing/persona-go/internal/application/config"
	"github.com/doeshing/persona-go/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/persona-go/internal/infrastructure/config"
)

const envKeyEditor = "EDITOR"

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigSection(cmd.OutOrStdout(), container, "")
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show [section]",
			Short: "Print the configuration, or one top-level section",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				section := ""
				if len(args) == 1 {
					section = args[0]
				}
				return showConfigSection(cmd.OutOrStdout(), container, section)
			},
		},
		&cobra.Command{
			Use:     "get <key>",
			Short:   "Print one value by dotted key",
			Example: "  persona config get preferences.chat_rounds\n  persona config get models.0.model_id",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfigSection(cmd.OutOrStdout(), container, args[0])
			},
		},
		&cobra.Command{
			Use:     "set <key> <value>",
			Short:   "Change one value (the value is parsed as YAML)",
			Example: "  persona config set preferences.topic \"the moon landing\"\n  persona config set voices.providers [elevenlabs]",
			Args:    cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return setConfigValue(cmd.OutOrStdout(), container, args[0], strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where config.yaml and the personalities file live",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printConfigPaths(cmd.OutOrStdout(), container)
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Open config.yaml in $EDITOR",
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfig(cmd.Context(), cmd.OutOrStdout(), container)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check config.yaml and the personalities that depend on it",
			RunE: func(cmd *cobra.Command, args []string) error {
				return validateConfig(cmd.Context(), cmd.OutOrStdout(), container)
			},
		},
		newConfigResetCommand(container),
		&cobra.Command{
			Use:   "diff",
			Short: "Show how config.yaml differs from the defaults",
			RunE: func(cmd *cobra.Command, args []string) error {
				return diffConfig(cmd.OutOrStdout(), container)
			},
		},
	)

	return configCmd
}

func newConfigResetCommand(container *app.Container) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration (a backup is kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfig(cmd.OutOrStdout(), container, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// showConfigSection prints the value at key, or the whole file for "".
func showConfigSection(out io.Writer, container *app.Container, key string) error {
	tree, err := helpers.ConfigTree(container.Config)
	if err != nil {
		return err
	}
	var value interface{} = tree
	if key != "" {
		if value, err = helpers.LookupKey(tree, key); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func setConfigValue(out io.Writer, container *app.Container, key, raw string) error {
	tree, err := helpers.ConfigTree(container.Config)
	if err != nil {
		return err
	}
	if err := helpers.AssignKey(tree, key, raw); err != nil {
		return err
	}
	cfg, err := helpers.ConfigFromTree(tree)
	if err != nil {
		return err
	}
	if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s.\n", key)
	return nil
}

func printConfigPaths(out io.Writer, container *app.Container) error {
	loader, err := helpers.GetConfigLoader(container)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "config:        %s\n", loader.Path())
	if container.Personalities != nil {
		fmt.Fprintf(out, "personalities: %s\n", container.Personalities.Path())
	}
	fmt.Fprintf(out, "exports:       %s\n", app.ExportsDir())
	return nil
}

// editConfig runs $EDITOR on config.yaml and validates the result.
func editConfig(ctx context.Context, out io.Writer, container *app.Container) error {
	loader, err := helpers.GetConfigLoader(container)
	if err != nil {
		return err
	}

	editor := strings.Fields(editorCommand())
	args := append(editor[1:], loader.Path())
	cmd := exec.CommandContext(ctx, editor[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor %s: %w", editor[0], err)
	}
	return validateConfig(ctx, out, container)
}

// validateConfig reloads config.yaml from disk and cross-checks the
// personality catalogue against the configured models and voices.
func validateConfig(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var problems []string
	if container.Personalities != nil {
		list, err := container.Personalities.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list personalities: %w", err)
		}
		for _, p := range list {
			if p.Model != "" && !cfg.HasModel(p.Model) {
				problems = append(problems, fmt.Sprintf("personality %s uses unknown model %s", p.Name, p.Model))
			}
			if p.Voice.Provider != "" && !cfg.HasVoiceProvider(p.Voice.Provider) {
				problems = append(problems, fmt.Sprintf("personality %s uses unknown voice provider %s", p.Name, p.Voice.Provider))
			}
		}
	}
	if len(problems) > 0 {
		helpers.PrintWarnings(out, problems)
		return errors.New("configuration does not match the personality catalogue")
	}
	fmt.Fprintln(out, MsgConfigurationValid)
	return nil
}

func resetConfig(out io.Writer, container *app.Container, yes bool) error {
	loader, err := helpers.GetConfigLoader(container)
	if err != nil {
		return err
	}
	if !yes {
		ok, err := confirm(container, "Replace config.yaml with the defaults?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, MsgCancelled)
			return nil
		}
	}

	if _, err := os.Stat(loader.Path()); err == nil {
		backup, err := loader.Backup()
		if err != nil {
			return fmt.Errorf("failed to back up configuration: %w", err)
		}
		fmt.Fprintf(out, "Backup written to %s\n", backup)
	}
	cfg, err := loader.Reset()
	if err != nil {
		return fmt.Errorf("failed to reset configuration: %w", err)
	}
	container.Config = cfg
	fmt.Fprintf(out, "Configuration reset at %s\n", loader.Path())
	return nil
}

func diffConfig(out io.Writer, container *app.Container) error {
	diff := cmp.Diff(configinfra.DefaultConfig(), container.Config)
	if diff == "" {
		fmt.Fprintln(out, MsgNoDifferencesFromDefault)
		return nil
	}
	fmt.Fprintln(out, diff)
	return nil
}

func editorCommand() string {
	if editor := strings.TrimSpace(os.Getenv(envKeyEditor)); editor != "" {
		return editor
	}
	return DefaultEditorCommand
}
