package cmd

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	veraPDFPath  string
	valTimeout   time.Duration

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "facturx-engine",
	Short: "Generate and validate Factur-X (EN 16931) electronic invoices",
	Long: `Factur-X Engine builds hybrid electronic invoices: a human-readable
PDF/A-3 with the machine-readable CII XML embedded as factur-x.xml.

Pipeline:
  - Build the invoice document with derived totals and VAT breakdown
  - Serialize deterministic UN/CEFACT CII XML (EN 16931 BASIC profile)
  - Package a PDF/A-3 with the XML attached (AFRelationship Data)
  - Validate PDF/A-3 structure and EN 16931 business rules concurrently

Examples:
  # Generate a Factur-X PDF from a JSON invoice request
  facturx-engine generate invoice.json -o invoice.pdf

  # Validate an existing Factur-X PDF
  facturx-engine validate invoice.pdf

  # Pull the embedded XML back out
  facturx-engine extract invoice.pdf -o factur-x.xml`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&veraPDFPath, "verapdf", "", "Path to the veraPDF binary (env: VERAPDF_PATH)")
	rootCmd.PersistentFlags().DurationVar(&valTimeout, "validation-timeout", 60*time.Second, "Per-validator timeout")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Local .env is optional
	_ = godotenv.Load()

	if veraPDFPath == "" {
		veraPDFPath = os.Getenv("VERAPDF_PATH")
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
