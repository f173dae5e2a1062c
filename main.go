package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/blogem/spotify-auth-proxy/authenticator"
	"github.com/blogem/spotify-auth-proxy/config"
	"github.com/blogem/spotify-auth-proxy/controllers"
	"github.com/blogem/spotify-auth-proxy/database"
	"github.com/blogem/spotify-auth-proxy/logging"
	"github.com/blogem/spotify-auth-proxy/repositories"
	"github.com/blogem/spotify-auth-proxy/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.Command{
		Name:  "spotify-auth-proxy",
		Usage: "OAuth proxy and API forwarder for the Spotify web front end",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file loaded before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides LOG_LEVEL",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.NewLogger(nil, "info").Fatal("server error", "err", err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	// Load environment variables from .env file, if there is one
	envErr := godotenv.Load(cmd.String("env-file"))
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", envErr)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	logger := logging.NewLogger(nil, level)
	if envErr != nil {
		logger.Debug("no env file loaded", "path", cmd.String("env-file"))
	}

	// Outbound calls to the provider share one client with a hard timeout
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	provider, err := authenticator.NewSpotifyProvider(authenticator.SpotifyConfig{
		AccountsURL:  cfg.AccountsURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		CallbackURL:  cfg.RedirectURI,
		HTTPClient:   httpClient,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Spotify provider: %w", err)
	}

	srvs := services.NewServices(cfg, provider, httpClient)
	ctrl := controllers.NewControllers(cfg, provider, srvs, logger)

	var repos *repositories.Repositories
	var auditPending sync.WaitGroup
	if cfg.AuditDBPath != "" {
		db, err := database.InitializeDatabase(cfg.AuditDBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize audit database: %w", err)
		}
		// Runs after serve has shut the server down, so no new writes start
		defer func() {
			auditPending.Wait()
			if err := db.Close(); err != nil {
				logger.Error("failed to close audit database", "err", err)
			}
		}()

		repos = repositories.NewRepositories(db)
		logger.Info("audit log enabled", "path", cfg.AuditDBPath)
	}

	r := setupRouter(cfg, ctrl, repos, &auditPending, logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return serve(ctx, server, logger)
}

// serve runs the server until ctx is cancelled or a termination signal arrives
func serve(ctx context.Context, server *http.Server, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
