package main

import (
	"strings"

	"stock-watchlist/src/data_source/api"
	"stock-watchlist/src/render"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Look up symbols through the backend's search service",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient(cfg.Watchlist.APIBaseURL, setupNetwork())

		matches, err := client.SearchSymbols(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		render.RenderSearch(cmd.OutOrStdout(), matches)
		return nil
	},
}
