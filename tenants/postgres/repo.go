// Package postgres stores tenants in the shared public.tenants table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jrsteele09/go-blog-server/internal/database"
	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
	"github.com/jrsteele09/go-blog-server/tenants"
)

// poolIface is the subset of *pgxpool.Pool the repository needs.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ tenants.Repo = (*TenantRepo)(nil)

type TenantRepo struct {
	pool poolIface
}

func NewTenantRepo(pool poolIface) *TenantRepo {
	return &TenantRepo{pool: pool}
}

func (r *TenantRepo) Insert(ctx context.Context, t *tenants.Tenant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tenants (schema_name, owner_email, created_at) VALUES ($1, $2, $3)`,
		t.SchemaName, t.OwnerEmail, t.CreatedAt)
	if database.IsUniqueViolation(err) {
		return tenants.ErrTenantExists
	}
	if err != nil {
		return fmt.Errorf("[TenantRepo.Insert] %s: %w", t.OwnerEmail, err)
	}
	return nil
}

func (r *TenantRepo) GetByEmail(ctx context.Context, email string) (*tenants.Tenant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT schema_name, owner_email, created_at FROM tenants WHERE owner_email = $1`, email)
	t, err := scanTenant(row)
	if err != nil {
		return nil, fmt.Errorf("[TenantRepo.GetByEmail] %s: %w", email, err)
	}
	return t, nil
}

// List returns tenants ordered by schema name. A non-positive limit returns everything after offset.
func (r *TenantRepo) List(ctx context.Context, offset, limit int) ([]*tenants.Tenant, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.pool.Query(ctx,
		`SELECT schema_name, owner_email, created_at FROM tenants ORDER BY schema_name OFFSET $1 LIMIT $2`,
		offset, limitArg)
	if err != nil {
		return nil, fmt.Errorf("[TenantRepo.List] query: %w", err)
	}
	defer rows.Close()

	var list []*tenants.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("[TenantRepo.List] scan: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[TenantRepo.List] iterate: %w", err)
	}
	return list, nil
}

func scanTenant(row pgx.Row) (*tenants.Tenant, error) {
	var t tenants.Tenant
	if err := row.Scan(&t.SchemaName, &t.OwnerEmail, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
