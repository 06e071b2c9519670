// Package cli implements blogctl, the operator tool for the blog server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-server/internal/logging"
)

var logLevel string

// NewRootCmd creates the root command for blogctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogctl",
		Short: "blogctl - tools for the multi-tenant blog server",
		Long: `blogctl checks form values against the server's validation rules,
hashes passwords, signs in against a running server, applies database migrations
and lists registered tenants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Init(logging.Options{Level: logLevel, Pretty: true, Output: cmd.ErrOrStderr()})
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewTenantsCmd())

	return cmd
}
