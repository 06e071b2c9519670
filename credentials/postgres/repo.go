// Package postgres stores credentials in the shared public.credentials table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jrsteele09/go-blog-server/credentials"
	"github.com/jrsteele09/go-blog-server/internal/database"
	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
)

type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ credentials.Repo = (*CredentialRepo)(nil)

type CredentialRepo struct {
	pool poolIface
}

func NewCredentialRepo(pool poolIface) *CredentialRepo {
	return &CredentialRepo{pool: pool}
}

func (r *CredentialRepo) Insert(ctx context.Context, c *credentials.Credential) error {
	settings, err := encodeSettings(c.Settings)
	if err != nil {
		return fmt.Errorf("[CredentialRepo.Insert] %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO credentials (email, user_name, password_hash, tenant_schema, settings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.Email, c.UserName, c.PasswordHash, c.TenantSchema, settings, c.CreatedAt, c.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperrors.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("[CredentialRepo.Insert] %s: %w", c.Email, err)
	}
	return nil
}

func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*credentials.Credential, error) {
	var (
		c        credentials.Credential
		settings []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT email, user_name, password_hash, tenant_schema, settings, created_at, updated_at
		 FROM credentials WHERE email = $1`, email).
		Scan(&c.Email, &c.UserName, &c.PasswordHash, &c.TenantSchema, &settings, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[CredentialRepo.GetByEmail] %s: %w", email, err)
	}
	if c.Settings, err = decodeSettings(settings); err != nil {
		return nil, fmt.Errorf("[CredentialRepo.GetByEmail] %s: %w", email, err)
	}
	return &c, nil
}

func (r *CredentialRepo) UpdatePasswordHash(ctx context.Context, email, hash string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE credentials SET password_hash = $2, updated_at = $3 WHERE email = $1`,
		email, hash, at)
	if err != nil {
		return fmt.Errorf("[CredentialRepo.UpdatePasswordHash] %s: %w", email, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateSettings merges with the jsonb || operator, which replaces top-level keys only.
func (r *CredentialRepo) UpdateSettings(ctx context.Context, email string, partial map[string]any, at time.Time) (map[string]any, error) {
	patch, err := encodeSettings(partial)
	if err != nil {
		return nil, fmt.Errorf("[CredentialRepo.UpdateSettings] %w", err)
	}

	var merged []byte
	err = r.pool.QueryRow(ctx,
		`UPDATE credentials SET settings = settings || $2::jsonb, updated_at = $3
		 WHERE email = $1 RETURNING settings`,
		email, patch, at).Scan(&merged)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[CredentialRepo.UpdateSettings] %s: %w", email, err)
	}
	return decodeSettings(merged)
}

func encodeSettings(settings map[string]any) ([]byte, error) {
	if settings == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return b, nil
}

func decodeSettings(b []byte) (map[string]any, error) {
	settings := map[string]any{}
	if len(b) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(b, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}
