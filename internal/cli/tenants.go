package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-server/internal/database"
	"github.com/jrsteele09/go-blog-server/tenants"
	tenantspg "github.com/jrsteele09/go-blog-server/tenants/postgres"
)

// openTenantRepo is a seam for tests.
var openTenantRepo = func(ctx context.Context, dsn string) (tenants.Repo, func(), error) {
	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return tenantspg.NewTenantRepo(pool), pool.Close, nil
}

// NewTenantsCmd lists the registered tenants and their owners.
func NewTenantsCmd() *cobra.Command {
	var (
		databaseURL string
		offset      int
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "List registered tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			repo, closeRepo, err := openTenantRepo(cmd.Context(), databaseURL)
			if err != nil {
				return errors.Wrap(err, "open tenant registry")
			}
			defer closeRepo()

			list, err := tenants.NewRegistry(repo).ListTenants(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCHEMA\tOWNER\tCREATED")
			for _, t := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.SchemaName, t.OwnerEmail, t.CreatedAt.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of tenants to skip")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum tenants to list, 0 for all")
	return cmd
}
