package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/williampepple1/partsearch/internal/config"
	"github.com/williampepple1/partsearch/internal/scraper"
	"github.com/williampepple1/partsearch/internal/search"
	"github.com/williampepple1/partsearch/internal/telemetry"
)

var (
	cfg        *config.AppConfig
	tel        *telemetry.Telemetry
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "partsearch",
	Short: "Search vendor sites for electronic parts",
	Long:  "Scrapes the search pages of a list of vendor sites for a part name or number and merges the matches into one de-duplicated list.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return eris.Wrap(err, "load .env")
		}

		c, err := config.Load(configFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		t, err := telemetry.Setup(cmd.Context(), cfg.Telemetry)
		if err != nil {
			return eris.Wrap(err, "init telemetry")
		}
		tel = t

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			zap.L().Warn("telemetry shutdown failed", zap.Error(err))
		}
		_ = zap.L().Sync()
	},
}

// newDispatcher wires the site scraper into a dispatcher
func newDispatcher(cfg *config.AppConfig) (*search.Dispatcher, error) {
	s, err := scraper.New(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "init scraper")
	}
	return search.NewDispatcher(cfg, s), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to configuration file (YAML)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
