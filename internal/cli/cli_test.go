package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-blog-server/passwords"
	"github.com/jrsteele09/go-blog-server/tenants"
	tenantrepofakes "github.com/jrsteele09/go-blog-server/tenants/repofakes"
	"github.com/jrsteele09/go-blog-server/validation"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, stdin, args...)
	return out, err
}

func executeWithStderr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidateCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "valid password",
			args: []string{"validate", "password", "SecurePass123"},
			want: []string{"ok"},
		},
		{
			name:    "weak password lists every rule",
			args:    []string{"validate", "password", "abc"},
			want:    validation.ValidatePassword("abc").Errors,
			wantErr: true,
		},
		{
			name:    "username charset",
			args:    []string{"validate", "username", "bad name"},
			want:    []string{validation.MsgUsernameCharset},
			wantErr: true,
		},
		{
			name: "email is normalised first",
			args: []string{"validate", "email", "  Ada@Example.com "},
			want: []string{"ok"},
		},
		{
			name:    "malformed id",
			args:    []string{"validate", "id", "12abc"},
			want:    []string{validation.MsgMalformedID},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, strings.Join(tt.want, "\n")+"\n", out)
		})
	}
}

func TestValidateCmd_RequiresValue(t *testing.T) {
	_, err := execute(t, "", "validate", "password")
	require.Error(t, err)
}

func TestHashPasswordCmd(t *testing.T) {
	out, err := execute(t, "SecurePass123\n", "hash-password", "--cost", "4")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	require.True(t, passwords.VerifyPassword("SecurePass123", hash))
	cost, err := passwords.Cost(hash)
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)

	_, err = execute(t, "\n", "hash-password")
	require.Error(t, err)
}

func TestMigrateCmd(t *testing.T) {
	var gotURL string
	orig := runMigrations
	runMigrations = func(_ context.Context, dsn string) error {
		gotURL = dsn
		return nil
	}
	t.Cleanup(func() { runMigrations = orig })

	out, err := execute(t, "", "migrate", "--database-url", "postgres://blog@localhost/blog")
	require.NoError(t, err)
	require.Equal(t, "postgres://blog@localhost/blog", gotURL)
	require.Contains(t, out, "Migrations completed successfully")

	runMigrations = func(context.Context, string) error { return errors.New("boom") }
	_, err = execute(t, "", "migrate", "--database-url", "postgres://blog@localhost/blog")
	require.ErrorContains(t, err, "boom")
}

func TestMigrateCmd_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "migrate")
	require.ErrorContains(t, err, "DATABASE_URL is required")
}

// fakeBlog answers the login and session actions for one account.
func fakeBlog(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "SecurePass123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Invalid email or password"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte(`{"success":true,"data":{"tenantSchemaName":"tenant_a","userName":"ada","userEmail":"ada@example.com","userSettings":{"theme":"dark"}}}`))
	})
	mux.HandleFunc("GET /api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if c, err := r.Cookie("session"); err != nil || c.Value != "tok" {
			_, _ = w.Write([]byte(`{"valid":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"valid":true,"data":{"tenantSchemaName":"tenant_a","userName":"ada","userEmail":"ada@example.com","userSettings":{"theme":"dark"}}}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestLoginCmd(t *testing.T) {
	ts := fakeBlog(t)

	out, stderr, err := executeWithStderr(t, "", "login", "--url", ts.URL, "--email", "ada@example.com", "--password", "SecurePass123", "--inspect")
	require.NoError(t, err)
	require.Contains(t, stderr, "auth state updated")
	require.Contains(t, stderr, "setAuth")

	var report struct {
		Decision struct {
			Path   string `json:"path"`
			Render bool   `json:"render"`
		} `json:"decision"`
		State struct {
			IsAuthenticated bool           `json:"isAuthenticated"`
			UserName        string         `json:"userName"`
			UserSettings    map[string]any `json:"userSettings"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "/", report.Decision.Path)
	assert.True(t, report.Decision.Render)
	assert.True(t, report.State.IsAuthenticated)
	assert.Equal(t, "ada", report.State.UserName)
	assert.Equal(t, "dark", report.State.UserSettings["theme"])
	assert.Equal(t, "markdown", report.State.UserSettings["editorMode"])
}

func TestLoginCmd_WrongPassword(t *testing.T) {
	ts := fakeBlog(t)

	out, err := execute(t, "", "login", "--url", ts.URL, "--email", "ada@example.com", "--password", "nope")
	require.ErrorIs(t, err, ErrLoginFailed)
	require.Contains(t, out, "Invalid email or password")
	require.Contains(t, out, `"isAuthenticated": false`)
}

func TestLoginCmd_QuietWithoutInspect(t *testing.T) {
	ts := fakeBlog(t)

	_, stderr, err := executeWithStderr(t, "", "login", "--url", ts.URL, "--email", "ada@example.com", "--password", "SecurePass123")
	require.NoError(t, err)
	require.NotContains(t, stderr, "auth state updated")
}

func TestTenantsCmd(t *testing.T) {
	ctx := context.Background()
	repo := tenantrepofakes.NewFakeTenantRepo()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, tn := range []*tenants.Tenant{
		{SchemaName: "tenant_b", OwnerEmail: "b@example.com", CreatedAt: created},
		{SchemaName: "tenant_a", OwnerEmail: "a@example.com", CreatedAt: created},
	} {
		require.NoError(t, repo.Insert(ctx, tn))
	}

	var gotURL string
	orig := openTenantRepo
	openTenantRepo = func(_ context.Context, dsn string) (tenants.Repo, func(), error) {
		gotURL = dsn
		return repo, func() {}, nil
	}
	t.Cleanup(func() { openTenantRepo = orig })

	out, err := execute(t, "", "tenants", "--database-url", "postgres://blog@localhost/blog")
	require.NoError(t, err)
	require.Equal(t, "postgres://blog@localhost/blog", gotURL)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[1], "tenant_a"))
	require.Contains(t, lines[2], "b@example.com")
	require.Contains(t, lines[2], "2026-03-01T12:00:00Z")

	out, err = execute(t, "", "tenants", "--database-url", "x", "--offset", "1", "--limit", "1")
	require.NoError(t, err)
	require.NotContains(t, out, "tenant_a")
	require.Contains(t, out, "tenant_b")
}

func TestTenantsCmd_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "tenants")
	require.ErrorContains(t, err, "DATABASE_URL is required")
}
