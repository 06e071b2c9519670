package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-blog-server/client"
)

// fakeServer mimics the session cookie handling of the real JSON actions.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if in.Password != "SecurePass123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Invalid email or password"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/", HttpOnly: true})
		_, _ = w.Write([]byte(`{"success":true,"data":{"tenantSchemaName":"tenant_a","userName":"ada","userEmail":"` + in.Email + `"}}`))
	})
	mux.HandleFunc("GET /api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err != nil || c.Value != "tok" {
			_, _ = w.Write([]byte(`{"valid":false}`))
			return
		}
		_, _ = w.Write([]byte(`{"valid":true,"data":{"tenantSchemaName":"tenant_a","userName":"ada","userEmail":"ada@example.com","userSettings":{"theme":"dark"}}}`))
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"validation failed","errors":["Username must be at least 3 characters long"]}`))
	})
	mux.HandleFunc("PATCH /api/settings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"settings":{"theme":"dark"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := client.New("/relative")
	require.Error(t, err)
}

func TestLoginSessionLogout(t *testing.T) {
	srv := fakeServer(t)
	c, err := client.New(srv.URL + "/")
	require.NoError(t, err)
	ctx := context.Background()

	require.False(t, c.ValidateSession(ctx).Valid)

	res := c.LoginUser(ctx, "ada@example.com", "SecurePass123")
	require.True(t, res.Success)
	require.Equal(t, "ada", res.Data.UserName)

	session := c.ValidateSession(ctx)
	require.True(t, session.Valid)
	require.Equal(t, "dark", session.Data.UserSettings["theme"])

	require.NoError(t, c.Logout(ctx))
	require.False(t, c.ValidateSession(ctx).Valid)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	c, err := client.New(fakeServer(t).URL)
	require.NoError(t, err)

	res := c.LoginUser(context.Background(), "ada@example.com", "nope")
	require.False(t, res.Success)
	require.Equal(t, "Invalid email or password", res.Error)
	require.Nil(t, res.Data)
}

func TestSignup_ReturnsValidationMessages(t *testing.T) {
	c, err := client.New(fakeServer(t).URL)
	require.NoError(t, err)

	res := c.Signup(context.Background(), client.SignupForm{Email: "ada@example.com", UserName: "ad", Password: "SecurePass123"})
	require.False(t, res.Success)
	require.Equal(t, []string{"Username must be at least 3 characters long"}, res.Errors)
}

func TestUpdateSettings(t *testing.T) {
	c, err := client.New(fakeServer(t).URL)
	require.NoError(t, err)

	settings, err := c.UpdateSettings(context.Background(), map[string]any{"theme": "dark"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"theme": "dark"}, settings)
}

func TestUnreachableServer_FailsClosed(t *testing.T) {
	srv := fakeServer(t)
	c, err := client.New(srv.URL)
	require.NoError(t, err)
	srv.Close()
	ctx := context.Background()

	require.Equal(t, client.SessionResult{Valid: false}, c.ValidateSession(ctx))

	res := c.LoginUser(ctx, "ada@example.com", "SecurePass123")
	require.False(t, res.Success)
	require.Equal(t, client.UnreachableMessage, res.Error)

	require.Error(t, c.Logout(ctx))
}

func TestValidateSession_GarbageResponseIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	require.False(t, c.ValidateSession(context.Background()).Valid)
}
