// =============================================================================
// Budget Analyzer - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the JSON HTTP API used
// by the browser front end. Workbooks are uploaded (as .xlsx, or as sheets
// already parsed by the browser) and kept in memory as sessions.
//
// COMMAND USAGE:
//   presupuesto serve [--addr :8080]
//
// =============================================================================

package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/server"
)

// serveAddr overrides server.addr from the configuration.
var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `The serve command starts the JSON HTTP API under /api. Sessions live in
memory; the oldest is evicted once server.max_sessions is reached.`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		return server.New(cfg, logger).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(
		&serveAddr,
		"addr",
		"",
		"Listen address (overrides server.addr)",
	)
}
