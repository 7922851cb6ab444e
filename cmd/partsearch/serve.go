package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/williampepple1/partsearch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the part search API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		dispatcher, err := newDispatcher(cfg)
		if err != nil {
			return err
		}

		return server.NewServer(cfg, dispatcher).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
