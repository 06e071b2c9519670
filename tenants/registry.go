package tenants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
	"github.com/jrsteele09/go-blog-server/validation"
)

const schemaPrefix = "tenant_"

var ErrTenantExists = errors.New("tenant already exists")

// Registry maps user emails to tenant schema names.
type Registry struct {
	repo          Repo
	nowTime       func() time.Time
	newSchemaName func() string
}

type RegistryOption func(*Registry)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.nowTime = nowFunc
	}
}

// WithSchemaNamer replaces the ULID-based schema name generator
func WithSchemaNamer(namer func() string) RegistryOption {
	return func(r *Registry) {
		r.newSchemaName = namer
	}
}

func NewRegistry(repo Repo, options ...RegistryOption) *Registry {
	r := &Registry{
		repo:          repo,
		nowTime:       time.Now,
		newSchemaName: NewSchemaName,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// NewSchemaName returns a unique schema identifier such as tenant_01hx3k...
// ULIDs are lowercased because Postgres folds unquoted identifiers.
func NewSchemaName() string {
	return schemaPrefix + strings.ToLower(ulid.Make().String())
}

// GetTenantSchemaByEmail returns the schema owned by email, or ErrTenantNotFound.
func (r *Registry) GetTenantSchemaByEmail(ctx context.Context, email string) (string, error) {
	t, err := r.repo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", apperrors.Wrapf(apperrors.ErrTenantNotFound, "[Registry.GetTenantSchemaByEmail]")
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "[Registry.GetTenantSchemaByEmail] repo.GetByEmail")
	}
	return t.SchemaName, nil
}

// RegisterTenant creates a tenant for email and returns its schema name.
// Registering an email twice returns the existing schema.
func (r *Registry) RegisterTenant(ctx context.Context, email string) (string, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return "", apperrors.Wrapf(apperrors.ErrMalformedInput, "[Registry.RegisterTenant] empty email")
	}

	existing, err := r.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing.SchemaName, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", apperrors.Wrapf(err, "[Registry.RegisterTenant] repo.GetByEmail")
	}

	t := &Tenant{
		SchemaName: r.newSchemaName(),
		OwnerEmail: email,
		CreatedAt:  r.nowTime().UTC(),
	}
	if err := r.repo.Insert(ctx, t); err != nil {
		// Lost a race with a concurrent signup for the same email
		if errors.Is(err, ErrTenantExists) {
			if existing, getErr := r.repo.GetByEmail(ctx, email); getErr == nil {
				return existing.SchemaName, nil
			}
		}
		return "", apperrors.Wrapf(err, "[Registry.RegisterTenant] insert")
	}
	return t.SchemaName, nil
}

// ListTenants pages through every registered tenant in schema name order.
func (r *Registry) ListTenants(ctx context.Context, offset, limit int) ([]*Tenant, error) {
	if offset < 0 {
		offset = 0
	}
	list, err := r.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Registry.ListTenants] repo.List")
	}
	return list, nil
}
