// Package app wires configuration, storage, services and the HTTP server
// into a runnable identity service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	identityhttp "github.com/atticlabs/attic-auth/internal/identity/http"
	"github.com/atticlabs/attic-auth/internal/identity/notify"
	"github.com/atticlabs/attic-auth/internal/identity/service"
	"github.com/atticlabs/attic-auth/internal/identity/store"
	"github.com/atticlabs/attic-auth/internal/identity/store/drivers/sqlite"
	"github.com/atticlabs/attic-auth/pkg/jwtx"
	"github.com/atticlabs/attic-auth/pkg/slogx"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type Application struct {
	cfg    Config
	log    *slog.Logger
	store  store.Store
	server *http.Server
}

func New(cfg Config) (*Application, error) {
	log := slogx.New(slogx.Config{
		Service: "attic-auth",
		Version: Version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	st, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}

	codec, err := jwtx.New([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	mailer := notify.NewMailer(notify.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		ResetURL: cfg.ResetURL,
	})

	router := identityhttp.NewRouter(http.NewServeMux(),
		slogx.HTTPMiddleware(log),
	)
	router.Store = st
	router.Tokens = codec
	router.Accounts = &service.AccountService{Store: st, Tokens: codec, Notifier: mailer}
	router.Auth = &service.AuthService{Store: st, Tokens: codec, Notifier: mailer}
	router.Users = &service.UserService{Store: st, Tokens: codec, Notifier: mailer}
	router.ApplyRoutes()

	return &Application{
		cfg:   cfg,
		log:   log,
		store: st,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router.Mux,
		},
	}, nil
}

func initDatabase(cfg Config) (store.Store, error) {
	st, err := sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return st, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or a
// termination signal arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		_ = a.store.Close()
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGracePeriod)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	return err
}
