package main

import (
	"fmt"

	"stock-watchlist/src/config"
	"stock-watchlist/src/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// quietAnnotation marks commands that own the terminal and must not log to it
const quietAnnotation = "quiet"

var (
	cfgFile   string
	cfg       *config.Config
	appLogger *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Stock watchlist with periodic quote refresh",
	Long: `Stock watchlist with periodic quote refresh

Commands:
    serve       backend: quote proxy, watchlist REST and websocket views
    watch       terminal view refreshed on the configured interval
    add/remove  edit the persisted watchlist
    list        print the persisted watchlist
    search      look up symbols by name or ticker

The config path may also be set with WATCHLIST_CONFIG.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.Annotations[quietAnnotation] == "true")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/default.yaml", "path to config file")

	viper.SetEnvPrefix("WATCHLIST")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(serveCmd, watchCmd, addCmd, removeCmd, listCmd, searchCmd)
}

// -----------------------------------------------------------------------------

// initConfig loads the YAML config and installs the global logger
func initConfig(quiet bool) error {
	path := viper.GetString("config")

	c, err := config.NewConfig(path)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		Dir:     c.LogDir,
		Service: c.Name,
		Quiet:   quiet,
	}); err != nil {
		return err
	}

	cfg = c
	appLogger = logger.NewLogger(c.Name)
	appLogger.Debug("Loaded config from %s", path)
	return nil
}
