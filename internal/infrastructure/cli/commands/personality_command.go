package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/persona-go/internal/app"
	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/persona-go/internal/infrastructure/personality"
	"github.com/doeshing/persona-go/internal/ports"
)

// NewPersonalityCommand creates the personality command with all subcommands
func NewPersonalityCommand(container *app.Container) *cobra.Command {
	personalityCmd := &cobra.Command{
		Use:     "personality",
		Aliases: []string{"personalities", "p"},
		Short:   "Manage personalities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPersonalities(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	personalityCmd.AddCommand(
		newPersonalityListCommand(container),
		newPersonalityShowCommand(container),
		newPersonalityAddCommand(container),
		newPersonalityDeleteCommand(container),
		newPersonalityExportCommand(container),
		newPersonalityImportCommand(container),
	)

	return personalityCmd
}

// newPersonalityListCommand creates the 'personality list' subcommand
func newPersonalityListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List personalities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPersonalities(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

// newPersonalityShowCommand creates the 'personality show' subcommand
func newPersonalityShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a personality as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showPersonality(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

// newPersonalityAddCommand creates the 'personality add' subcommand
func newPersonalityAddCommand(container *app.Container) *cobra.Command {
	var (
		opts        personalityAddOptions
		promptFile  string
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create or update a personality",
		RunE: func(cmd *cobra.Command, args []string) error {
			if promptFile != "" {
				data, err := os.ReadFile(promptFile)
				if err != nil {
					return fmt.Errorf("failed to read prompt file %s: %w", promptFile, err)
				}
				opts.Prompt = string(data)
			}
			if opts.Prompt == "" && opts.Name != "" {
				reader := bufio.NewReader(cmd.InOrStdin())
				opts.Prompt = helpers.PromptForText(cmd.OutOrStdout(), reader, "Prompt for "+opts.Name)
			}
			if cmd.Flags().Changed("temperature") {
				opts.Temperature = domain.Float(temperature)
			}
			return addPersonality(cmd.Context(), cmd.OutOrStdout(), container, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Single-word personality name")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "System prompt describing the personality")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "Read the prompt from a file")
	cmd.Flags().StringVar(&opts.Knowledge, "knowledge", "", "Background knowledge appended to the prompt")
	cmd.Flags().StringVar(&opts.Model, "model", "", "Model override (default: the session model)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature (0-2, default: the model's)")
	cmd.Flags().IntVar(&opts.MaxTokens, "max-tokens", domain.DefaultMaxTokens, "Reply length limit")
	cmd.Flags().StringVar(&opts.Voice, "voice", "", "Voice provider")
	cmd.Flags().StringVar(&opts.VoiceID, "voice-id", "", "Voice identifier at the provider")
	cmd.Flags().StringVar(&opts.Image, "image", "", "Avatar image path")

	return cmd
}

// newPersonalityDeleteCommand creates the 'personality delete' subcommand
func newPersonalityDeleteCommand(container *app.Container) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a personality",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deletePersonality(cmd.Context(), cmd.OutOrStdout(), container, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// newPersonalityExportCommand creates the 'personality export' subcommand
func newPersonalityExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> [path]",
		Short: "Package a personality as a zip archive",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			return exportPersonality(cmd.Context(), cmd.OutOrStdout(), container, args[0], path)
		},
	}
}

// newPersonalityImportCommand creates the 'personality import' subcommand
func newPersonalityImportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "import <archive.zip>",
		Short: "Import a personality archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importPersonality(cmd.Context(), cmd.OutOrStdout(), container, args[0])
		},
	}
}

// personalityAddOptions holds options for adding a personality
type personalityAddOptions struct {
	Name        string
	Prompt      string
	Knowledge   string
	Model       string
	Temperature *float64
	MaxTokens   int
	Voice       string
	VoiceID     string
	Image       string
}

func personalitiesOf(container *app.Container) (ports.PersonalityRepository, error) {
	if container.Personalities == nil {
		return nil, errors.New(ErrPersonalitiesUnavailable)
	}
	return container.Personalities, nil
}

// listPersonalities prints the catalogue as a table
func listPersonalities(ctx context.Context, out io.Writer, container *app.Container) error {
	repo, err := personalitiesOf(container)
	if err != nil {
		return err
	}

	list, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list personalities: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, MsgNoPersonalities)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODEL\tTEMP\tMAX TOKENS\tVOICE")
	for _, p := range list {
		model := p.Model
		if model == "" {
			model = "-"
		}
		voice := p.Voice.Provider
		if voice == "" {
			voice = "-"
		}
		temp := "-"
		if p.Temperature != nil {
			temp = strconv.FormatFloat(*p.Temperature, 'f', 1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.Name, model, temp, p.MaxTokens, voice)
	}
	return tw.Flush()
}

// showPersonality prints one personality as YAML
func showPersonality(ctx context.Context, out io.Writer, container *app.Container, name string) error {
	repo, err := personalitiesOf(container)
	if err != nil {
		return err
	}

	p, err := repo.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to find personality %s: %w", name, err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal personality: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

// addPersonality creates a personality, or updates the one with the same name
func addPersonality(ctx context.Context, out io.Writer, container *app.Container, opts personalityAddOptions) error {
	if opts.Name == "" {
		return errors.New(ErrPersonalityNameRequired)
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		return errors.New(ErrPromptRequired)
	}
	repo, err := personalitiesOf(container)
	if err != nil {
		return err
	}

	p := domain.Personality{}
	verb := "Created"
	if existing, err := repo.Get(ctx, opts.Name); err == nil {
		p = existing
		verb = "Updated"
	} else if !errors.Is(err, personality.ErrNotFound) {
		return fmt.Errorf("failed to look up personality %s: %w", opts.Name, err)
	}

	p.Name = opts.Name
	p.Prompt = strings.TrimSpace(opts.Prompt)
	p.Knowledge = strings.TrimSpace(opts.Knowledge)
	p.Model = opts.Model
	if opts.Temperature != nil {
		p.Temperature = opts.Temperature
	}
	p.MaxTokens = opts.MaxTokens
	if opts.Voice != "" {
		p.Voice = domain.Voice{Provider: strings.ToLower(opts.Voice), VoiceID: opts.VoiceID}
	}
	p.Image = opts.Image

	if p.Model != "" && !container.Config.HasModel(p.Model) {
		return fmt.Errorf("model %s is not configured", p.Model)
	}
	if p.Voice.Provider != "" && !container.Config.HasVoiceProvider(p.Voice.Provider) {
		return fmt.Errorf("voice provider %s is not configured", p.Voice.Provider)
	}

	if err := repo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save personality: %w", err)
	}
	fmt.Fprintf(out, "%s personality %s.\n", verb, p.Name)
	return nil
}

// deletePersonality removes a personality after confirmation
func deletePersonality(ctx context.Context, out io.Writer, container *app.Container, name string, yes bool) error {
	repo, err := personalitiesOf(container)
	if err != nil {
		return err
	}

	p, err := repo.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to find personality %s: %w", name, err)
	}

	if !yes {
		ok, err := confirm(container, fmt.Sprintf("Delete personality %s?", p.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, MsgCancelled)
			return nil
		}
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete personality: %w", err)
	}
	fmt.Fprintf(out, "Deleted personality %s.\n", p.Name)
	return nil
}

// exportPersonality writes a zip archive, defaulting to the exports directory
func exportPersonality(ctx context.Context, out io.Writer, container *app.Container, name, path string) error {
	repo, err := personalitiesOf(container)
	if err != nil {
		return err
	}

	p, err := repo.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to find personality %s: %w", name, err)
	}

	if path == "" {
		path = filepath.Join(app.ExportsDir(), p.Name+ArchiveExtension)
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := personality.ExportFile(path, p); err != nil {
		return fmt.Errorf("failed to export personality: %w", err)
	}
	fmt.Fprintf(out, "Exported %s to %s\n", p.Name, path)
	return nil
}

// importPersonality reads an archive and adds it to the catalogue
func importPersonality(ctx context.Context, out io.Writer, container *app.Container, path string) error {
	repo, err := personalitiesOf(container)
	if err != nil {
		return err
	}

	p, err := personality.ImportFile(path, app.ImagesDir())
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}
	if err := repo.Save(ctx, p); err != nil {
		if errors.Is(err, personality.ErrDuplicateName) {
			return fmt.Errorf("a personality named %s already exists; delete it first", p.Name)
		}
		return fmt.Errorf("failed to save imported personality: %w", err)
	}
	fmt.Fprintf(out, "Imported personality %s.\n", p.Name)
	return nil
}
