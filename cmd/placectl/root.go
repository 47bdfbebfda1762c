package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/placemap/internal/config"
	"github.com/JonMunkholm/placemap/internal/core"
	"github.com/JonMunkholm/placemap/internal/logging"
	"github.com/JonMunkholm/placemap/internal/schema"
	"github.com/JonMunkholm/placemap/internal/store"
)

// backend is what a subcommand needs to talk to the database.
type backend struct {
	store core.Store
	exec  schema.Execer
	opts  core.ServiceOptions
	close func()
}

// connectFunc opens a backend. Tests swap in an in-memory one.
type connectFunc func(ctx context.Context) (*backend, error)

func newRootCmd(connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "placectl",
		Short:         "Bulk import tools for categories and places",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newImportCmd(connect))
	cmd.AddCommand(newLogsCmd(connect))
	cmd.AddCommand(newBootstrapCmd(connect))
	return cmd
}

// connectPostgres loads .env and the environment, then opens a pool.
// Logs go to stderr so stdout carries only JSON.
func connectPostgres(ctx context.Context) (*backend, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &backend{
		store: store.New(pool),
		exec:  pool,
		opts: core.ServiceOptions{
			MaxConcurrent: 1,
			MaxWait:       cfg.Upload.MaxWaitTime,
			Timeout:       cfg.Upload.Timeout,
		},
		close: pool.Close,
	}, nil
}
