package authflow

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-blog-server/authstate"
	"github.com/jrsteele09/go-blog-server/client"
	"github.com/jrsteele09/go-blog-server/validation"
)

// Outcome is the result of submitting a form.
type Outcome struct {
	Decision Decision
	Errors   []string // messages to show on the form; empty on success
}

func (o Outcome) OK() bool {
	return len(o.Errors) == 0
}

// Flow runs the login, signup and logout forms against the server and keeps
// the client store in step.
type Flow struct {
	server Server
	store  *authstate.Store
	guard  *Guard
}

func NewFlow(server Server, store *authstate.Store, guard *Guard) *Flow {
	return &Flow{server: server, store: store, guard: guard}
}

// Login submits the login form. On success the store is authenticated and the
// home page is navigated to. Checks still in flight are discarded first. On failure the store is left anonymous and exactly
// one message is returned.
func (f *Flow) Login(ctx context.Context, email, password string) Outcome {
	f.guard.supersede()
	res := f.server.LoginUser(ctx, email, password)
	if !res.Success || res.Data == nil {
		msg := res.Error
		if msg == "" {
			msg = "Login failed"
		}
		return Outcome{Decision: Decision{Path: LoginPath, Render: true}, Errors: []string{msg}}
	}

	f.store.SetAuth(authstate.AuthInput{
		UserName:     res.Data.UserName,
		UserEmail:    res.Data.UserEmail,
		UserSettings: res.Data.UserSettings,
	})
	return Outcome{Decision: f.guard.Navigate(ctx, HomePath)}
}

// Logout ends the session and returns to the login page. The client state is
// reset even if the server could not be reached.
func (f *Flow) Logout(ctx context.Context) Outcome {
	f.guard.supersede()
	if err := f.server.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("logout request failed, clearing local state anyway")
	}
	f.store.ClearAuth()
	return Outcome{Decision: f.guard.Navigate(ctx, LoginPath)}
}

// Signup validates the form locally, reporting every message, and only then
// submits it. A successful signup lands on the login page.
func (f *Flow) Signup(ctx context.Context, form client.SignupForm) Outcome {
	stay := Decision{Path: SignupPath, Render: true}

	local := validation.Merge(
		validation.ValidateEmail(validation.NormalizeEmail(form.Email)),
		validation.ValidateUsername(form.UserName),
		validation.ValidatePassword(form.Password),
	)
	if !local.Valid {
		return Outcome{Decision: stay, Errors: local.Errors}
	}

	res := f.server.Signup(ctx, form)
	if !res.Success {
		errs := res.Errors
		if len(errs) == 0 {
			msg := res.Error
			if msg == "" {
				msg = "Signup failed"
			}
			errs = []string{msg}
		}
		return Outcome{Decision: stay, Errors: errs}
	}
	return Outcome{Decision: f.guard.Navigate(ctx, LoginPath)}
}
