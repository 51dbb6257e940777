package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"blog/internal/auth"
	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/handlers"
)

type serverOpts struct {
	cfg    config.Config
	secure bool
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &serverOpts{cfg: cfg}
	cmd := &cobra.Command{
		Use:   "blog",
		Args:  cobra.NoArgs,
		Short: "Serve the blog",
		Long: `Serve the blog

	Settings are read from the environment (and a .env file if present):
	SECRET_KEY, DATABASE_URL, PORT, PASSWORD_SALT_LENGTH, PASSWORD_ITERATIONS,
	SESSION_MAX_AGE. Flags override the environment.

	# Run against a local sqlite file on port 5002
	./blog --database-url sqlite:///data/blog.db --port 5002
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&opts.cfg.Port, "port", cfg.Port, "port to listen on")
	cmd.Flags().StringVar(&opts.cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "database connection string (sqlite path or postgres:// URL)")
	cmd.Flags().StringVar(&opts.cfg.SecretKey, "secret-key", cfg.SecretKey, "key used to sign session cookies")
	cmd.Flags().BoolVar(&opts.secure, "secure-cookies", false, "mark cookies as HTTPS only")

	return cmd
}

func (opts *serverOpts) run(ctx context.Context) error {
	logger := config.DefaultLogger()
	cfg := opts.cfg
	if cfg.InsecureSecret() {
		logger.Warn("SECRET_KEY is not set, using the insecure default")
	}

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if n, err := store.DeleteExpiredSessions(ctx, time.Now()); err != nil {
		logger.Warn("failed to clean up expired sessions", "error", err)
	} else if n > 0 {
		logger.Info("expired sessions removed", "count", n)
	}

	sessions := auth.NewManager(store, cfg.SecretKey, cfg.SessionMaxAge)
	sessions.SetSecure(opts.secure)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := handlers.New(store, sessions, auth.NewHasher(cfg.PasswordSaltLength, cfg.PasswordIterations), reg, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "database", store.Dialect().String())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
