// Package cli implements the admin command line: schema migration, the
// refresh-token sweep and admin bootstrap.
package cli

import (
	"context"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/app"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
)

// Opener opens the application; migrate asks for schema migration first.
type Opener func(ctx context.Context, migrate bool) (*app.App, error)

// RootOptions holds what every subcommand shares.
type RootOptions struct {
	Cfg    config.Config
	Logger *log.Logger
	Open   Opener
}

// DefaultOptions loads the environment configuration and opens the real
// store.
func DefaultOptions() *RootOptions {
	cfg := config.Load()
	logger := cfg.NewLogger("admin")
	return &RootOptions{
		Cfg:    cfg,
		Logger: logger,
		Open: func(ctx context.Context, migrate bool) (*app.App, error) {
			return app.Open(ctx, cfg, logger, migrate)
		},
	}
}

func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "WIS2 administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	return cmd
}
