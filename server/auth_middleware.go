package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-blog-server/auth"
	"github.com/jrsteele09/go-blog-server/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the *auth.UserInfo of the validated session
	ContextKeyUser ContextKey = "user"
	// ContextKeySession stores the validated *sessions.Session
	ContextKeySession ContextKey = "session"
)

// UserFromContext returns the user stored by RequireSession or RequireSessionAPI.
func UserFromContext(ctx context.Context) (*auth.UserInfo, bool) {
	u, ok := ctx.Value(ContextKeyUser).(*auth.UserInfo)
	return u, ok
}

func withSession(r *http.Request, user *auth.UserInfo, session *sessions.Session) *http.Request {
	ctx := context.WithValue(r.Context(), ContextKeyUser, user)
	ctx = context.WithValue(ctx, ContextKeySession, session)
	return r.WithContext(ctx)
}

// RequireSession is middleware for HTML routes. Without a valid session cookie the
// request is redirected to the login page before anything is rendered.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessions.TokenFromRequest(r)
		user, session, err := s.auth.ValidateSession(r.Context(), token)
		if err != nil {
			if token != "" {
				sessions.ClearCookie(w, r)
			}
			redirectSuccess(w, r, RouteAuthLogin)
			return
		}
		next(w, withSession(r, user, session))
	}
}

// RequireSessionAPI is middleware for JSON routes; it answers 401 instead of redirecting.
func (s *Server) RequireSessionAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, session, err := s.auth.ValidateSession(r.Context(), sessions.TokenFromRequest(r))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, actionResponse{Error: msgSessionExpired})
			return
		}
		next(w, withSession(r, user, session))
	}
}
