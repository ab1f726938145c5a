package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/persona-go/internal/app"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/persona-go/internal/ports"
)

// NewModelsCommand creates the models command with all subcommands
func NewModelsCommand(container *app.Container) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Manage AI model configurations",
	}

	modelsCmd.AddCommand(
		newModelsListCommand(container),
		newModelsTestCommand(container),
		newModelsUseCommand(container),
		newModelsAddCommand(container),
		newModelsRemoveCommand(container),
	)

	return modelsCmd
}

// newModelsListCommand creates the 'models list' subcommand
func newModelsListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

// newModelsTestCommand creates the 'models test' subcommand
func newModelsTestCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "test <name>",
		Short: "Test connectivity for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return testModel(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

// newModelsUseCommand creates the 'models use' subcommand
func newModelsUseCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the model new sessions start with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDefaultModel(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

// newModelsAddCommand creates the 'models add' subcommand
func newModelsAddCommand(container *app.Container) *cobra.Command {
	var opts modelAddOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new model definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return addModel(cmd.Context(), cmd.OutOrStdout(), container, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Model name (identifier)")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Provider: openai, anthropic, gemini, ollama or offline")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "Provider endpoint URL (optional)")
	cmd.Flags().StringVar(&opts.ModelID, "model-id", "", "Model identifier at provider")
	cmd.Flags().StringVar(&opts.AuthEnv, "auth-env", "", "Environment variable containing API key")
	cmd.Flags().IntVar(&opts.MaxTokens, "max-tokens", domain.DefaultMaxTokens, "Max tokens for responses")
	cmd.Flags().Float64Var(&opts.Temperature, "temperature", domain.DefaultTemperature, "Default sampling temperature")

	return cmd
}

// newModelsRemoveCommand creates the 'models remove' subcommand
func newModelsRemoveCommand(container *app.Container) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a model definition",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeModel(cmd.Context(), cmd.OutOrStdout(), container, args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Remove even when personalities still use the model")
	return cmd
}

// modelAddOptions holds options for adding a new model
type modelAddOptions struct {
	Name        string
	Provider    string
	Endpoint    string
	ModelID     string
	AuthEnv     string
	MaxTokens   int
	Temperature float64
}

func loadConfig(ctx context.Context, container *app.Container) (domain.Config, error) {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// listModels prints the models table and warns about missing API keys,
// since those models fall back to offline replies.
func listModels(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := loadConfig(ctx, container)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROVIDER\tMODEL ID\tKEY\tDEFAULT")
	var warnings []string
	for _, model := range cfg.Models {
		marker := ""
		if cfg.Preferences.DefaultModel == model.Name {
			marker = "*"
		}
		key := "-"
		if env := model.AuthEnv(); env != "" {
			key = env
			if os.Getenv(env) == "" {
				key += " (unset)"
				warnings = append(warnings, fmt.Sprintf("%s is not set; %s replies offline", env, model.Name))
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", model.Name, model.Kind(), valueOr(model.ModelID, "-"), key, marker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	helpers.PrintWarnings(out, warnings)
	return nil
}

// testModel sends one short chat turn and reports the reply and latency.
func testModel(ctx context.Context, out io.Writer, container *app.Container, name string) error {
	cfg, err := loadConfig(ctx, container)
	if err != nil {
		return err
	}
	model, ok := cfg.FindModelByName(name)
	if !ok {
		return fmt.Errorf("model %s not found", name)
	}

	provider, err := container.ProviderFactory.ForModel(model)
	if err != nil {
		return fmt.Errorf("failed to create provider for model %s: %w", name, err)
	}
	if notice, ok := provider.(ports.OfflineNotice); ok && notice.OfflineReason() != "" {
		return fmt.Errorf("model %s is offline: %s", name, notice.OfflineReason())
	}

	testCtx, cancel := context.WithTimeout(ctx, domain.DefaultModelTestTimeout)
	defer cancel()
	started := time.Now()
	resp, err := provider.Chat(testCtx, ports.ChatRequest{
		System:    "Reply with a single short sentence.",
		Messages:  []domain.ChatMessage{{Role: domain.RoleUser, Content: "Say hello."}},
		MaxTokens: 32,
	})
	if err != nil {
		return fmt.Errorf("model %s test failed: %w", name, err)
	}
	fmt.Fprintf(out, "%s via %s answered in %s: %s\n", name, provider.Name(), time.Since(started).Round(time.Millisecond), resp.Text)
	return nil
}

func setDefaultModel(ctx context.Context, out io.Writer, container *app.Container, name string) error {
	cfg, err := loadConfig(ctx, container)
	if err != nil {
		return err
	}
	if err := cfg.SetDefaultModel(name); err != nil {
		return fmt.Errorf("%w (configured: %s)", err, strings.Join(cfg.ModelNames(), ", "))
	}
	if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "New sessions start with %s.\n", name)
	return nil
}

func addModel(ctx context.Context, out io.Writer, container *app.Container, opts modelAddOptions) error {
	if opts.Name == "" || opts.Provider == "" {
		return errors.New(ErrModelNameProviderRequired)
	}
	if opts.MaxTokens <= 0 {
		return fmt.Errorf("max-tokens must be positive, got %d", opts.MaxTokens)
	}

	model := domain.ModelDefinition{
		Name:        opts.Name,
		Provider:    domain.ProviderKind(strings.ToLower(opts.Provider)),
		Endpoint:    opts.Endpoint,
		ModelID:     opts.ModelID,
		AuthEnvVar:  opts.AuthEnv,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if model.Kind() == domain.ProviderKindUnknown {
		return fmt.Errorf("unsupported provider %q", opts.Provider)
	}

	cfg, err := loadConfig(ctx, container)
	if err != nil {
		return err
	}
	if err := cfg.AddModel(model); err != nil {
		return err
	}
	if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added model %s (%s).\n", model.Name, model.Kind())
	return nil
}

// removeModel drops a model. Personalities pinned to it would silently fall
// back to the session model, so that needs --force.
func removeModel(ctx context.Context, out io.Writer, container *app.Container, name string, force bool) error {
	cfg, err := loadConfig(ctx, container)
	if err != nil {
		return err
	}

	if !force && container.Personalities != nil {
		list, err := container.Personalities.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list personalities: %w", err)
		}
		var users []string
		for _, p := range list {
			if p.Model == name {
				users = append(users, p.Name)
			}
		}
		if len(users) > 0 {
			return fmt.Errorf("model %s is used by %s; re-run with --force", name, strings.Join(users, ", "))
		}
	}

	previousDefault := cfg.Preferences.DefaultModel
	if err := cfg.RemoveModel(name); err != nil {
		return err
	}
	if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed model %s.\n", name)
	if previousDefault == name && cfg.Preferences.DefaultModel != "" {
		fmt.Fprintf(out, "Default model is now %s.\n", cfg.Preferences.DefaultModel)
	}
	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
