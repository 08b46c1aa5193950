// Package cmd - serve command
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"car-price/internal/logging"
	"car-price/internal/server"
)

var (
	serveAddr string
	serveUI   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction API and UI",
	Long: `Serve the prediction API under /api and, when --ui is set, the static
prediction page at /.

Artifacts that fail to load do not stop the server: the affected routes
answer 503 until the artifacts are fixed and the server restarted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if serveUI != "" {
			cfg.Server.UIPath = serveUI
		}
		defer logging.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, &cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveUI, "ui", "", "directory of UI files to serve")
}
