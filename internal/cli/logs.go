package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayOinif/Contacts/internal/config"
	"github.com/ShayOinif/Contacts/internal/logtail"
)

const defaultLogLines = 50

type logsOptions struct {
	lines int
	level string
}

// NewLogsCommand creates the logs command.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &logsOptions{}
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the TUI log file",
		Long: `Show the last lines of the log file written while the TUI runs.

The file location comes from log_file in the config file. Use --lines 0 to
show the whole file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", defaultLogLines, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&opts.level, "level", "", "minimum level to show (debug|info|warn|error)")
	return cmd
}

func runLogs(cmd *cobra.Command, rootOpts *RootOptions, opts *logsOptions) error {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	lines, err := logtail.Read(cfg.LogFile, opts.lines)
	if err != nil {
		return WrapExitError(ExitFailure, "read log", err)
	}

	result := logLines{Path: cfg.LogFile, Entries: []logtail.Entry{}}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e := logtail.Parse(line)
		if opts.level != "" && !e.AtLeast(opts.level) {
			continue
		}
		result.Entries = append(result.Entries, e)
	}

	formatter := newFormatter(rootOpts, cmd)
	formatter.VerboseLog("%d line(s) from %s", len(result.Entries), cfg.LogFile)
	return formatter.Success(result)
}
