package main

import (
	"context"
	"encoding/json"

	"github.com/billingcat/notes/model"

	"github.com/spf13/cobra"
)

var listUser string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the notes of the configured store as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := model.LoadConfig(configFile)
		if err != nil {
			return err
		}
		// listing needs no delay
		cfg.Latency = "0s"
		ctx := context.Background()
		store, err := model.InitDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		var filter *string
		if cmd.Flags().Changed("user") {
			filter = &listUser
		}
		listing, err := store.ListNotes(ctx, filter)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listUser, "user", "u", "", "only notes whose id equals this value")
}
