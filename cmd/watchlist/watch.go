package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-watchlist/src/data_source/api"
	"stock-watchlist/src/render"
	"stock-watchlist/src/watchlist"

	"github.com/spf13/cobra"
)

const clearScreen = "\033[H\033[2J"

var (
	watchSort    string
	watchFilter  string
	watchNoColor bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the watchlist in the terminal",
	Long: `Mounts the watchlist against the backend's quote service (watchlist.api_base_url)
and redraws it every second with the countdown to the next refresh.`,
	Annotations: map[string]string{quietAnnotation: "true"},
	RunE:        runWatch,
}

func init() {
	options := make([]string, len(watchlist.SortOptions))
	for i, o := range watchlist.SortOptions {
		options[i] = string(o)
	}

	watchCmd.Flags().StringVar(&watchSort, "sort", string(watchlist.SortSymbol), fmt.Sprintf("sort order %v", options))
	watchCmd.Flags().StringVar(&watchFilter, "filter", "", "only show symbols containing this text")
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false, "disable colors")
}

func runWatch(cmd *cobra.Command, args []string) error {
	client := api.NewClient(cfg.Watchlist.APIBaseURL, setupNetwork())

	persistence := setupPersistence()
	defer persistence.Store.Close()

	engine := setupEngine(client, persistence)

	out := cmd.OutOrStdout()
	opts := render.Options{Color: !watchNoColor}

	// the display tick notifies every second, so this redraws the countdown too
	redraw := make(chan struct{}, 1)
	unsubscribe := engine.Subscribe(func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := engine.Mount(ctx); err != nil {
		return err
	}
	defer engine.Unmount()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-redraw:
			fmt.Fprint(out, clearScreen)
			render.RenderWatchlist(out, engine.Snapshot(watchSort, watchFilter), opts)
		case <-sigChan:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
