package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-server/internal/database"
)

// runMigrations is a seam for tests.
var runMigrations = database.Migrate

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations for the tenant registry and credentials tables.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			cmd.Println("Running migrations...")
			if err := runMigrations(cmd.Context(), databaseURL); err != nil {
				return errors.Wrap(err, "run migrations")
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	return cmd
}
