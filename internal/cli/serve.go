package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aezell/nodpts/internal/api"
	"github.com/aezell/nodpts/internal/check"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP scan API",
	Long: `Start an HTTP server exposing the secret scanner.

Endpoints:
  GET  /health        Health check
  GET  /api/patterns  Effective rule catalog
  POST /api/scan      Scan {files:[{path,content}], ignored_files} for secrets
  POST /api/parse     Parse a diff into per-file stats`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 6142, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := check.BuildCatalog(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listen := fmt.Sprintf("%s:%d", addr, port)
	fmt.Fprintf(cmd.ErrOrStderr(), "nodpts API listening on http://%s\n", listen)
	return api.New(listen, catalog, logger).ListenAndServe(ctx)
}
