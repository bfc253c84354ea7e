package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-engine/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for generating and validating invoices.

The API provides endpoints for:
  - POST /api/v1/invoices      - Generate a Factur-X PDF from a request
  - POST /api/v1/invoices/xml  - Generate only the CII XML
  - POST /api/v1/validate      - Validate a Factur-X PDF
  - POST /api/v1/extract       - Extract the embedded XML
  - POST /api/v1/info          - Inspect a PDF
  - GET  /health               - Health check

Examples:
  # Start server on default port
  facturx-engine serve

  # Start on custom port with an explicit veraPDF binary
  facturx-engine serve --address :8080 --verapdf /opt/verapdf/verapdf

  # Start in debug mode
  facturx-engine serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:           serverAddr,
		VeraPDFPath:       veraPDFPath,
		ValidationTimeout: valTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		Debug:             serverDebug,
	}

	srv := server.NewServer(config, log)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	return srv.Run()
}
