/*
main.go - Application entry point

PURPOSE:
  The partyquote command: runs the quote API server and offers offline
  helpers to price a saved budget file and to browse the catalog.

COMMANDS:
  serve             Start the HTTP API (see serve.go)
  quote <file>      Price a saved budget, current or legacy format
  catalog           List catalog templates

GLOBAL FLAGS:
  --config     YAML config file (default: partyquote.yaml)
  --log-level  Overrides log.level from config

ENVIRONMENT:
  A .env file in the working directory is loaded first. Any setting can
  be overridden with PARTYQUOTE_<SECTION>_<KEY>, e.g. PARTYQUOTE_SERVER_PORT.

SEE ALSO:
  - internal/config/config.go: Configuration layers
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/party-budget/internal/config"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "partyquote",
	Short: "Quote engine for bachelor and bachelorette parties",
	Long: `partyquote assembles party quotes from a catalog of menus, activities,
transport and accommodation, and keeps the closed budgets.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "partyquote.yaml", "config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, quoteCmd, catalogCmd)
}

// loadConfig loads .env and the layered config, then applies logging.
func loadConfig() (config.Application, error) {
	config.LoadEnv()
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Application{}, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := config.ConfigureLogging(cfg.Log); err != nil {
		return config.Application{}, fmt.Errorf("invalid log level: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
