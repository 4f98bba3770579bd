package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayOinif/Contacts/internal/contact"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List contacts, optionally filtered by name",
		Long: `List contacts ordered by display name.

The optional query keeps contacts whose display name contains it, ignoring
case. Multiple arguments are joined with spaces.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts, strings.Join(args, " "))
		},
	}
}

func runList(cmd *cobra.Command, opts *RootOptions, query string) error {
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	res := env.Source.ListContacts(cmd.Context())
	if res.Err != nil {
		return WrapExitError(ExitFailure, "list contacts", res.Err)
	}
	matches, err := contact.FilterContext(cmd.Context(), res.Value, query)
	if err != nil {
		return WrapExitError(ExitFailure, "filter contacts", err)
	}

	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("%d of %d contact(s) match %q", len(matches), len(res.Value), query)
	return formatter.Success(contactList{Query: query, Contacts: matches})
}
