package main

import (
	"context"
	"log/slog"

	"github.com/billingcat/notes/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema of the configured database and seed it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := model.LoadConfig(configFile)
		if err != nil {
			return err
		}
		ctx := context.Background()
		store, err := model.InitDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		slog.Info("database ready", "mode", cfg.Mode)
		return store.Close(ctx)
	},
}
