package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-blog-server/internal/errors"
	"github.com/jrsteele09/go-blog-server/tenants"
)

var created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTenantRepo_Insert(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		errMsg    string
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO tenants`).
					WithArgs("tenant_abc", "ada@example.com", created).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to ErrTenantExists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO tenants`).
					WithArgs("tenant_abc", "ada@example.com", created).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: tenants.ErrTenantExists,
		},
		{
			name: "other errors are wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO tenants`).
					WithArgs("tenant_abc", "ada@example.com", created).
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			repo := NewTenantRepo(mock)
			err = repo.Insert(context.Background(), &tenants.Tenant{
				SchemaName: "tenant_abc",
				OwnerEmail: "ada@example.com",
				CreatedAt:  created,
			})

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTenantRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT schema_name, owner_email, created_at FROM tenants WHERE owner_email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"schema_name", "owner_email", "created_at"}).
			AddRow("tenant_abc", "ada@example.com", created))

	repo := NewTenantRepo(mock)
	got, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, &tenants.Tenant{SchemaName: "tenant_abc", OwnerEmail: "ada@example.com", CreatedAt: created}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepo_GetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM tenants WHERE owner_email`).
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"schema_name", "owner_email", "created_at"}))

	repo := NewTenantRepo(mock)
	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTenantRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`ORDER BY schema_name OFFSET \$1 LIMIT \$2`).
		WithArgs(0, 2).
		WillReturnRows(pgxmock.NewRows([]string{"schema_name", "owner_email", "created_at"}).
			AddRow("tenant_a", "a@example.com", created).
			AddRow("tenant_b", "b@example.com", created))

	repo := NewTenantRepo(mock)
	list, err := repo.List(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "tenant_b", list[1].SchemaName)
	require.NoError(t, mock.ExpectationsWereMet())
}
