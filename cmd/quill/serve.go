package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alphabot-ai/quill/internal/auth"
	"github.com/alphabot-ai/quill/internal/config"
	httpapp "github.com/alphabot-ai/quill/internal/http"
	"github.com/alphabot-ai/quill/internal/store"
	mongostore "github.com/alphabot-ai/quill/internal/store/mongo"
	"github.com/alphabot-ai/quill/internal/store/sqlite"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the Quill server (default when no command is given)",
	Long: `Start the Quill server.

Environment:
  QUILL_ADDR          Listen address (default :8080, or :$PORT)
  QUILL_STORE         sqlite or mongo (default sqlite)
  QUILL_DB            SQLite database path (default quill.db)
  QUILL_MONGO_URI     MongoDB connection string
  QUILL_MONGO_DB      MongoDB database name (default quill)
  JWT_SECRET          Token signing secret (required)
  QUILL_TOKEN_TTL     Token lifetime (default 24h)
  QUILL_BCRYPT_COST   bcrypt work factor (default 10)
  QUILL_LOG_LEVEL     debug, info, warn, error (default info)
  QUILL_LOG_FORMAT    console or json (default console)
  QUILL_CORS_ORIGINS  Comma separated allowed origins (default *)

A .env file in the working directory is read first.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger(cfg)

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("JWT_SECRET must be set: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer st.Close()

	httpapp.Version = version
	server, err := httpapp.NewServer(st, issuer, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("store", cfg.Store.Driver).Msg("quill listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		st, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "mongo", "mongodb":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		st, err := mongostore.Open(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.LogFormat == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
