// Package authflow drives the login, signup and logout forms and guards protected
// routes on navigation.
package authflow

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-blog-server/authstate"
	"github.com/jrsteele09/go-blog-server/client"
)

const (
	LoginPath  = "/auth/login"
	SignupPath = "/auth/signup"
	HomePath   = "/"
)

// Server is the part of the blog server the flows talk to; *client.Client implements it.
type Server interface {
	LoginUser(ctx context.Context, email, password string) client.ActionResult
	ValidateSession(ctx context.Context) client.SessionResult
	Logout(ctx context.Context) error
	Signup(ctx context.Context, form client.SignupForm) client.ActionResult
}

// Decision is the outcome of a navigation.
type Decision struct {
	Path       string `json:"path"`
	Render     bool   `json:"render"`               // show the view at Path
	RedirectTo string `json:"redirectTo,omitempty"` // go here instead, without rendering Path
	Superseded bool   `json:"superseded,omitempty"` // a newer navigation or Close made this result stale; nothing was changed
}

// Guard validates the session before a protected view renders. Each navigation
// takes a new generation, and a check that resolves after its generation is no
// longer current is discarded.
type Guard struct {
	server Server
	store  *authstate.Store
	public map[string]bool

	mu     sync.Mutex // orders generation bumps against commits
	gen    uint64
	closed bool
}

type GuardOption func(*Guard)

// WithPublicPaths adds paths that render without a session check.
func WithPublicPaths(paths ...string) GuardOption {
	return func(g *Guard) {
		for _, p := range paths {
			g.public[p] = true
		}
	}
}

func NewGuard(server Server, store *authstate.Store, options ...GuardOption) *Guard {
	g := &Guard{
		server: server,
		store:  store,
		public: map[string]bool{LoginPath: true, SignupPath: true},
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *Guard) IsPublic(path string) bool {
	return g.public[path]
}

// Navigate decides whether path may render. Public paths always render. For any
// other path the session is checked; an invalid session or a failed check clears
// the store and redirects to the login page. Store listeners run while the guard
// holds its lock and must not call Navigate synchronously.
func (g *Guard) Navigate(ctx context.Context, path string) Decision {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return Decision{Path: path, Superseded: true}
	}
	g.gen++
	gen := g.gen
	g.mu.Unlock()

	if g.IsPublic(path) {
		return Decision{Path: path, Render: true}
	}

	res := g.server.ValidateSession(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.gen != gen || ctx.Err() != nil {
		return Decision{Path: path, Superseded: true}
	}

	if !res.Valid || res.Data == nil {
		g.store.ClearAuth()
		return Decision{Path: path, RedirectTo: LoginPath}
	}
	g.store.SetAuth(authstate.AuthInput{
		UserName:     res.Data.UserName,
		UserEmail:    res.Data.UserEmail,
		UserSettings: res.Data.UserSettings,
	})
	return Decision{Path: path, Render: true}
}

// supersede discards any check still in flight without starting a new one.
func (g *Guard) supersede() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
}

// Go runs Navigate in its own goroutine. The channel receives one Decision and is closed.
func (g *Guard) Go(ctx context.Context, path string) <-chan Decision {
	ch := make(chan Decision, 1)
	go func() {
		defer close(ch)
		ch <- g.Navigate(ctx, path)
	}()
	return ch
}

// Close marks the guard unmounted. Checks still in flight are discarded and later
// navigations are reported as superseded.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.gen++
}
