package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	insighthttp "github.com/custodia-labs/insight/internal/adapters/driving/http"
	"github.com/custodia-labs/insight/internal/core/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the JSON API used by the web frontend:

  POST   /api/upload           upload a PDF (multipart field "file")
  GET    /api/documents        list documents
  GET    /api/documents/{id}   get one document
  DELETE /api/documents/{id}   delete a document
  POST   /api/query            ask a question
  GET    /api/health           health check

The server shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, "+domain.DefaultServerAddr+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || queryService == nil || documentService == nil {
		return errors.New("services not configured")
	}

	addr := serveAddr
	if addr == "" {
		addr = serverConfig.Addr
	}
	if addr == "" {
		addr = domain.DefaultServerAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := insighthttp.NewServer(
		insighthttp.Config{Addr: addr, CORSOrigins: serverConfig.CORSOrigins},
		ingestService, queryService, documentService,
	)

	cmd.PrintErrf("Listening on %s\n", addr)
	return server.Run(ctx)
}
