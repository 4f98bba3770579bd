package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ShayOinif/Contacts/internal/app"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	PrefsPath  string
	Format     string // "text" | "json" | "yaml"
	Verbose    bool
	Demo       bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command. Without a subcommand it starts
// the TUI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "contacts",
		Short:         "Browse and edit contacts",
		Long:          "A terminal contact book over a SQLite contact store, with live search, detail view and inline editing.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, ErrCodeInvalidArgument,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/contacts/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "contact database (overrides the config file)")
	cmd.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/contacts/prefs.toml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&opts.Demo, "demo", false, "serve built-in demo contacts from memory")

	// Add subcommands
	cmd.AddCommand(NewTUICommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))

	return cmd
}

// Execute runs the root command with args and reports failures through the
// formatter. It returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	format := "text"
	if f := cmd.PersistentFlags().Lookup("format"); f != nil && slices.Contains(ValidFormats, f.Value.String()) {
		format = f.Value.String()
	}
	formatter := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr}

	code := ErrCodeGeneric
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ErrCode
	}
	_ = formatter.Error(code, err.Error())
	return GetExitCode(err)
}

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive contact browser (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rootOpts)
		},
	}
}

func runTUI(ctx context.Context, opts *RootOptions) error {
	if err := app.Run(ctx, opts.appOptions()); err != nil {
		return WrapExitError(ExitFailure, "run tui", err)
	}
	return nil
}

func (o *RootOptions) appOptions() app.Options {
	return app.Options{
		ConfigPath: o.ConfigPath,
		PrefsPath:  o.PrefsPath,
		DBPath:     o.DBPath,
		Demo:       o.Demo,
		Verbose:    o.Verbose,
	}
}

// openEnv opens the store for a one-shot command. Logs stay quiet below
// warnings unless --verbose is set.
func openEnv(opts *RootOptions) (*app.Env, error) {
	appOpts := opts.appOptions()
	if !opts.Verbose {
		appOpts.LogLevel = "warn"
	}
	env, err := app.Open(appOpts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open contacts", err)
	}
	return env, nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
