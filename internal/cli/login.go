package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-server/authflow"
	"github.com/jrsteele09/go-blog-server/authstate"
	"github.com/jrsteele09/go-blog-server/client"
	"github.com/jrsteele09/go-blog-server/internal/logging"
)

// ErrLoginFailed is returned when the server rejects the credentials.
var ErrLoginFailed = errors.New("login failed")

type loginOptions struct {
	url      string
	email    string
	password string
	inspect  bool
	timeout  time.Duration
}

// loginReport is printed after a login attempt
type loginReport struct {
	Decision authflow.Decision `json:"decision"`
	Errors   []string          `json:"errors,omitempty"`
	State    authstate.State   `json:"state"`
}

// NewLoginCmd signs in against a running server the way the browser does and
// prints the resulting client auth state.
func NewLoginCmd() *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a running blog server and print the client auth state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runLogin(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	cmd.Flags().BoolVar(&opts.inspect, "inspect", false, "log every auth state change to stderr (implies debug logging)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runLogin(ctx context.Context, cmd *cobra.Command, opts *loginOptions) error {
	c, err := client.New(opts.url)
	if err != nil {
		return err
	}

	if opts.inspect {
		// The inspector logs at debug, which the default --log-level hides
		logging.Init(logging.Options{Level: "debug", Pretty: true, Output: cmd.ErrOrStderr()})
	}
	store := authstate.New(authstate.WithMiddleware(authstate.DevInspector(opts.inspect, log.Logger)))
	guard := authflow.NewGuard(c, store)
	defer guard.Close()

	out := authflow.NewFlow(c, store, guard).Login(ctx, opts.email, opts.password)
	report := loginReport{Decision: out.Decision, Errors: out.Errors, State: store.Snapshot()}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "write report")
	}
	if !out.OK() {
		return ErrLoginFailed
	}
	return nil
}
