package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <field-id> <value>",
		Short: "Update one phone or email field",
		Long: `Update the value of one detail field.

Field ids are printed by "contacts show". Empty values are rejected, as in
the editor.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, rootOpts, args[0], args[1])
		},
	}
}

func runSet(cmd *cobra.Command, opts *RootOptions, rawID, value string) error {
	fieldID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || fieldID <= 0 {
		return NewExitError(ExitCommandError, ErrCodeInvalidArgument, fmt.Sprintf("invalid field id %q", rawID))
	}
	if value == "" {
		return NewExitError(ExitCommandError, ErrCodeInvalidArgument, "value must not be empty")
	}

	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Source.WriteField(cmd.Context(), fieldID, value); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("update field %d", fieldID), err)
	}
	return newFormatter(opts, cmd).Success(fieldUpdate{FieldID: fieldID, Value: value})
}
