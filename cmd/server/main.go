package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-blog-server/auth"
	"github.com/jrsteele09/go-blog-server/credentials"
	credentialspg "github.com/jrsteele09/go-blog-server/credentials/postgres"
	credentialrepofake "github.com/jrsteele09/go-blog-server/credentials/repofake"
	"github.com/jrsteele09/go-blog-server/internal/cache"
	"github.com/jrsteele09/go-blog-server/internal/config"
	"github.com/jrsteele09/go-blog-server/internal/database"
	"github.com/jrsteele09/go-blog-server/internal/logging"
	"github.com/jrsteele09/go-blog-server/passwords"
	"github.com/jrsteele09/go-blog-server/server"
	"github.com/jrsteele09/go-blog-server/sessions"
	"github.com/jrsteele09/go-blog-server/tenants"
	tenantspg "github.com/jrsteele09/go-blog-server/tenants/postgres"
	tenantrepofakes "github.com/jrsteele09/go-blog-server/tenants/repofakes"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Init(logging.Options{Level: c.GetLogLevel(), Pretty: c.IsDev()})
	displayAppname(c.GetAppName())

	ctx := context.Background()
	authService, cleanup, err := buildAuthService(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	handler, err := server.New(c, authService)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// buildAuthService picks Postgres and Redis when they are configured and falls back to
// in-memory stores otherwise.
func buildAuthService(ctx context.Context, c config.Config) (*auth.Service, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var credRepo credentials.Repo
	var tenantRepo tenants.Repo
	if dsn := c.GetDatabaseURL(); dsn != "" {
		if err := database.Migrate(ctx, dsn); err != nil {
			return nil, func() {}, err
		}
		pool, err := database.Connect(ctx, dsn)
		if err != nil {
			return nil, func() {}, err
		}
		closers = append(closers, pool.Close)
		credRepo = credentialspg.NewCredentialRepo(pool)
		tenantRepo = tenantspg.NewTenantRepo(pool)
		log.Info().Msg("Using Postgres storage")
	} else {
		credRepo = credentialrepofake.NewFakeCredentialRepo()
		tenantRepo = tenantrepofakes.NewFakeTenantRepo()
		log.Warn().Msg("DATABASE_URL not set, accounts are kept in memory")
	}

	sessionOpts := []sessions.ManagerOption{sessions.WithMaxAge(c.GetMaxSessionAge())}
	if addr := c.GetRedisAddr(); addr != "" {
		rdb, err := cache.Connect(ctx, cache.Options{Addr: addr, DB: c.GetRedisDB()})
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		sessionOpts = append(sessionOpts, sessions.WithRevoker(sessions.NewRedisRevoker(rdb)))
		log.Info().Str("addr", addr).Msg("Using Redis revocation list")
	}

	manager, err := sessions.NewManager(c.GetSessionSecret(), sessionOpts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	svc, err := auth.NewService(
		auth.Repos{Credentials: credRepo, Tenants: tenants.NewRegistry(tenantRepo)},
		manager,
		auth.WithHasher(passwords.NewHasher(c.GetBcryptCost())),
	)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
