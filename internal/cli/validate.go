package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-server/validation"
)

// ErrInvalid is returned when a checked value breaks at least one rule.
var ErrInvalid = errors.New("value is invalid")

func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a value against a form field's rules",
	}
	cmd.AddCommand(newFieldCmd("password", "Check a password", validation.ValidatePassword))
	cmd.AddCommand(newFieldCmd("username", "Check a username", validation.ValidateUsername))
	cmd.AddCommand(newFieldCmd("email", "Check an email address", func(v string) validation.Result {
		return validation.ValidateEmail(validation.NormalizeEmail(v))
	}))
	cmd.AddCommand(newFieldCmd("id", "Check a record id", func(v string) validation.Result {
		_, res := validation.ParseID(v)
		return res
	}))
	return cmd
}

func newFieldCmd(field, short string, validate func(string) validation.Result) *cobra.Command {
	return &cobra.Command{
		Use:   field + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := validate(args[0])
			if res.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			for _, msg := range res.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return ErrInvalid
		},
	}
}
