package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	datasource "stock-watchlist/src/data_source"
	"stock-watchlist/src/grpc_control"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend",
	Long: `Runs the quote proxy (/api/quote, /api/search), the watchlist REST
routes and websocket views, plus the gRPC health service when grpc_port is set.
Ctrl+C stops it.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	upstream, err := datasource.NewUpstream(cfg, setupNetwork(), logger.NewLogger("Upstream"))
	if err != nil {
		return err
	}

	persistence := setupPersistence()
	defer persistence.Store.Close()

	engine := setupEngine(upstream, persistence)

	var srv interfaces.IDataExchanger = server.NewWatchlistServer(cfg.MConfig, logger.NewLogger("WatchlistServer"), upstream, engine)

	var health *grpc_control.HealthReporter
	if cfg.GrpcPort != 0 {
		health = grpc_control.NewHealthReporter(engine, logger.NewLogger("HealthService"))
		unsubscribe := engine.Subscribe(health.Update)
		defer unsubscribe()

		go func() {
			if err := health.Serve(cfg.GrpcHost, cfg.GrpcPort); err != nil {
				appLogger.Error("gRPC health service failed: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Mount(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLogger.Info("Received signal %v, shutting down...", sig)
	case err = <-errCh:
		if err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}

	engine.Unmount()
	if stopErr := srv.Stop(); stopErr != nil {
		appLogger.Error("Server shutdown: %v", stopErr)
	}
	if health != nil {
		health.Stop()
	}

	appLogger.Info("Shutdown complete")
	return err
}
