package main

import (
	"fmt"

	"stock-watchlist/src/watchlist"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <symbol>...",
	Short: "Add symbols to the persisted watchlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editWatchlist(cmd, args, (*watchlist.Watchlist).Add, "added", "already watched")
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <symbol>...",
	Short: "Remove symbols from the persisted watchlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editWatchlist(cmd, args, (*watchlist.Watchlist).Remove, "removed", "not watched")
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the persisted watchlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		persistence := setupPersistence()
		defer persistence.Store.Close()

		for _, symbol := range persistence.Load() {
			fmt.Fprintln(cmd.OutOrStdout(), symbol)
		}
		return nil
	},
}

// -----------------------------------------------------------------------------

func editWatchlist(cmd *cobra.Command, symbols []string, op func(*watchlist.Watchlist, string) bool, done, skipped string) error {
	persistence := setupPersistence()
	defer persistence.Store.Close()

	list := watchlist.NewWatchlist(persistence.Load())
	changed := false
	for _, symbol := range symbols {
		normalized := watchlist.NormalizeSymbol(symbol)
		if normalized == "" {
			continue
		}
		if op(list, normalized) {
			changed = true
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", normalized, done)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", normalized, skipped)
		}
	}

	if !changed {
		return nil
	}
	return persistence.Save(list.Symbols())
}
