// Package credentials holds the login record that ties an email to a password hash
// and the tenant schema that owns the user's blog.
package credentials

import (
	"context"
	"maps"
	"time"
)

type Credential struct {
	Email        string         `json:"email"` // lowercase-normalized, unique
	UserName     string         `json:"user_name"`
	PasswordHash string         `json:"-"` // never serialize
	TenantSchema string         `json:"tenant_schema"`
	Settings     map[string]any `json:"settings"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Clone returns a copy whose Settings map is not shared with c.
func (c *Credential) Clone() *Credential {
	out := *c
	out.Settings = maps.Clone(c.Settings)
	if out.Settings == nil {
		out.Settings = map[string]any{}
	}
	return &out
}

type Repo interface {
	// Insert stores a new credential. It fails with apperrors.ErrEmailTaken when the email exists.
	Insert(ctx context.Context, cred *Credential) error
	// GetByEmail returns apperrors.ErrNotFound when there is no credential for email.
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	UpdatePasswordHash(ctx context.Context, email, hash string, at time.Time) error
	// UpdateSettings shallow-merges partial into the stored settings and returns the result.
	UpdateSettings(ctx context.Context, email string, partial map[string]any, at time.Time) (map[string]any, error)
}

// MergeSettings returns a new map holding base overlaid with partial. Keys in
// partial win; nested values are replaced, not merged.
func MergeSettings(base, partial map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(partial))
	maps.Copy(out, base)
	maps.Copy(out, partial)
	return out
}
