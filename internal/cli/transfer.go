package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayOinif/Contacts/internal/contact"
	"github.com/ShayOinif/Contacts/internal/source"
	"github.com/ShayOinif/Contacts/internal/view"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.vcf>",
		Short: "Import contacts from a vCard file",
		Long: `Import every card of a vCard file into the contact database.

Cards are keyed by UID: importing the same file again updates the contacts
instead of duplicating them. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, opts *RootOptions, path string) error {
	if opts.Demo {
		return NewExitError(ExitCommandError, ErrCodeUnsupported, "import needs a database; drop --demo")
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "open vcard file", err)
		}
		defer f.Close()
		r = f
	}

	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	n, err := env.SQLite.Import(cmd.Context(), r)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("import %s (%d stored)", path, n), err)
	}
	return newFormatter(opts, cmd).Success(importSummary{File: path, Imported: n})
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [lookup-key]",
		Short: "Export contacts as vCard",
		Long: `Write contacts as vCard 4.0, all of them or those matching a lookup key.

Output is always vCard; --format does not apply.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return runExport(cmd, rootOpts, key, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions, key, output string) error {
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	res := env.Source.ListContacts(ctx)
	if res.Err != nil {
		return WrapExitError(ExitFailure, "list contacts", res.Err)
	}

	var records []contact.DetailedContact
	for _, c := range res.Value {
		if key != "" && !contact.MatchLookupKey(key, c.LookupKey) {
			continue
		}
		record, err := view.Join(ctx, env.Source, c)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("read %q", c.DisplayName), err)
		}
		records = append(records, record)
	}
	if key != "" && len(records) == 0 {
		return NewExitError(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no contact matches key %q", key))
	}

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return WrapExitError(ExitCommandError, "create output file", err)
		}
		defer f.Close()
		w = f
	}
	if err := source.Export(w, records...); err != nil {
		return WrapExitError(ExitFailure, "export contacts", err)
	}
	newFormatter(opts, cmd).VerboseLog("exported %d contact(s)", len(records))
	return nil
}
