package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-server/passwords"
)

// NewHashPasswordCmd hashes a password read from the first line of stdin, so it
// stays out of the shell history.
func NewHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.Wrap(err, "read password")
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password is empty")
			}

			hash, err := passwords.NewHasher(cost).Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", passwords.DefaultHasher.Cost, "bcrypt cost")
	return cmd
}
