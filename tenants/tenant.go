package tenants

import (
	"context"
	"time"
)

// Tenant partitions one blog owner's data from everyone else's. SchemaName is the
// Postgres schema holding that owner's posts, topics and settings; provisioning the
// schema itself happens elsewhere.
type Tenant struct {
	SchemaName string    `json:"schema_name"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repo interface {
	// Insert stores a new tenant. It fails with ErrTenantExists if the owner already has one.
	Insert(ctx context.Context, tenant *Tenant) error
	GetByEmail(ctx context.Context, email string) (*Tenant, error)
	// List returns tenants ordered by schema name. A non-positive limit means no limit.
	List(ctx context.Context, offset, limit int) ([]*Tenant, error)
}
