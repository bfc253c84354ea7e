package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-engine/internal/engine"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract [file.pdf]",
	Short: "Extract the embedded factur-x.xml from a PDF",
	Long: `Extract the embedded CII XML attachment from a Factur-X PDF.

Writes the XML to stdout unless -o is given.

Examples:
  facturx-engine extract invoice.pdf
  facturx-engine extract invoice.pdf -o factur-x.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output XML path (default: stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	pdf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}

	eng := engine.New(engine.WithLogger(log))
	xmlBytes, err := eng.Extract(pdf)
	if err != nil {
		return fmt.Errorf("no embedded invoice XML in %s: %w", args[0], err)
	}

	if extractOutput == "" {
		_, err = os.Stdout.Write(xmlBytes)
		return err
	}
	if err := os.WriteFile(extractOutput, xmlBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	printVerbose("wrote %s (%d bytes)\n", extractOutput, len(xmlBytes))
	return nil
}
