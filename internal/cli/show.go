package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayOinif/Contacts/internal/view"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <lookup-key>",
		Short: "Show a contact with its phones and emails",
		Long: `Show the contact selected by a lookup key.

A compound key of a linked contact (fragments joined by ".") matches any
contact sharing one of its fragments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, rootOpts, args[0])
		},
	}
}

// runShow resolves the key through the detail view, exactly as the TUI does,
// and prints the first result.
func runShow(cmd *cobra.Command, opts *RootOptions, key string) error {
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	keys := make(chan string, 1)
	keys <- key
	results := env.Repo.ObserveDetail(ctx, keys)

	var res view.DetailResult
	select {
	case <-ctx.Done():
		return WrapExitError(ExitFailure, "show contact", ctx.Err())
	case res = <-results:
	}

	switch res.Status {
	case view.StatusFound:
		return newFormatter(opts, cmd).Success(contactDetail{res.Detail})
	case view.StatusNotFound:
		return NewExitError(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no contact matches key %q", key))
	default:
		return WrapExitError(ExitFailure, "show contact", res.Err)
	}
}
