package tenantrepofakes

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
	"github.com/jrsteele09/go-blog-server/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	tenants map[string]*tenants.Tenant // schema name to tenant
	emails  map[string]string          // owner email to schema name
	lock    sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		tenants: make(map[string]*tenants.Tenant),
		emails:  make(map[string]string),
	}
}

func (tr *FakeTenantRepo) Insert(_ context.Context, tenant *tenants.Tenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.emails[tenant.OwnerEmail]; ok {
		return tenants.ErrTenantExists
	}
	if _, ok := tr.tenants[tenant.SchemaName]; ok {
		return tenants.ErrTenantExists
	}
	stored := *tenant
	tr.tenants[tenant.SchemaName] = &stored
	tr.emails[tenant.OwnerEmail] = tenant.SchemaName
	return nil
}

func (tr *FakeTenantRepo) GetByEmail(_ context.Context, email string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	schema, ok := tr.emails[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	t := *tr.tenants[schema]
	return &t, nil
}

func (tr *FakeTenantRepo) List(_ context.Context, offset, limit int) ([]*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	list := make([]*tenants.Tenant, 0, len(tr.tenants))
	for _, t := range tr.tenants {
		c := *t
		list = append(list, &c)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].SchemaName < list[j].SchemaName
	})

	if offset >= len(list) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}
