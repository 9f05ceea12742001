package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vbonduro/gardenbook/internal/config"
	"github.com/vbonduro/gardenbook/internal/devbackend"
	"github.com/vbonduro/gardenbook/internal/logging"
)

func newDevBackendCmd(cfg *config.Config) *cobra.Command {
	var opts devbackend.Options
	cmd := &cobra.Command{
		Use:   "devbackend",
		Short: "Run a local PocketBase-compatible backend over SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevBackend(cfg, opts)
		},
	}
	cmd.Flags().StringVar(&cfg.DevListenAddr, "listen", cfg.DevListenAddr, "address the backend listens on")
	cmd.Flags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	cmd.Flags().StringVar(&cfg.PhotoPath, "files", cfg.PhotoPath, "directory for uploaded files")
	cmd.Flags().StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML file with users and records to insert on start")
	cmd.Flags().BoolVar(&opts.RequireAuth, "require-auth", false, "reject record requests without a session token")
	return cmd
}

func runDevBackend(cfg *config.Config, opts devbackend.Options) error {
	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	backend, err := devbackend.Open(cfg.DBPath, cfg.PhotoPath, opts, logger)
	if err != nil {
		logger.Error("failed to open dev backend", "error", err)
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := applySeed(cfg.SeedFile, backend, logger); err != nil {
		logger.Error("failed to seed dev backend", "error", err)
		return err
	}

	if err := backend.ListenAndServe(cfg.DevListenAddr); err != nil {
		logger.Error("dev backend error", "error", err)
		return err
	}
	return nil
}

func applySeed(path string, backend *devbackend.Backend, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	seed, err := devbackend.LoadSeedFile(path)
	if err != nil {
		return err
	}
	return seed.Apply(context.Background(), backend.Records, backend.Users, logger)
}
