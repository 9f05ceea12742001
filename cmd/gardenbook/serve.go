package main

import (
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vbonduro/gardenbook/internal/config"
	"github.com/vbonduro/gardenbook/internal/devbackend"
	"github.com/vbonduro/gardenbook/internal/logging"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
	"github.com/vbonduro/gardenbook/internal/web"
	"github.com/vbonduro/gardenbook/internal/web/templates"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "address the UI listens on")
	cmd.Flags().StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "base URL of the record backend")
	return cmd
}

func runServe(cfg *config.Config) error {
	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	backendURL := cfg.BackendURL
	if cfg.TestMode {
		url, stop, err := startTestBackend(cfg, logger)
		if err != nil {
			logger.Error("failed to start test backend", "error", err)
			return err
		}
		defer stop()
		backendURL = url
	}

	server := web.NewServer(pocketbase.New(backendURL), web.Options{
		AuthCookie:     cfg.AuthCookie,
		AuthCollection: cfg.AuthCollection,
		SecureCookies:  cfg.SecureCookies,
		RequireLogin:   cfg.RequireLogin,
	}, templates.FS, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

// startTestBackend runs an in-memory dev backend next to the UI so the app
// can be exercised without any external service.
func startTestBackend(cfg *config.Config, logger *slog.Logger) (string, func(), error) {
	backend, err := devbackend.OpenForTesting(cfg.PhotoPath, devbackend.Options{}, logger)
	if err != nil {
		return "", nil, err
	}
	if err := applySeed(cfg.SeedFile, backend, logger); err != nil {
		_ = backend.Close()
		return "", nil, err
	}

	ln, err := net.Listen("tcp", cfg.DevListenAddr)
	if err != nil {
		_ = backend.Close()
		return "", nil, fmt.Errorf("failed to listen on %s: %w", cfg.DevListenAddr, err)
	}
	srv := &http.Server{Handler: backend}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("test backend error", "error", err)
		}
	}()

	url := "http://" + ln.Addr().String()
	logger.Warn("test mode: serving in-memory backend", "url", url)
	return url, func() {
		_ = srv.Close()
		_ = backend.Close()
	}, nil
}
