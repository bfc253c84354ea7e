package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-engine/internal/engine"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about Factur-X PDF files",
	Long: `Display what a PDF carries without running full validation.

Shows:
  - File size
  - Whether a factur-x.xml attachment is embedded
  - The guideline URN, invoice number and currency when parseable

Examples:
  facturx-engine info invoice.pdf
  facturx-engine info *.pdf -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	eng := engine.New(engine.WithLogger(log))

	if outputFormat == "json" {
		out := make(map[string]*engine.Info, len(args))
		for _, file := range args {
			pdf, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			out[file] = eng.Inspect(pdf)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	for _, file := range args {
		pdf, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		printFileInfo(file, eng.Inspect(pdf))
		fmt.Println()
	}
	return nil
}

func printFileInfo(file string, info *engine.Info) {
	fmt.Printf("File: %s\n", file)
	fmt.Printf("  Size: %d bytes\n", info.PDFBytes)
	if !info.HasXML {
		fmt.Printf("  Embedded XML: none\n")
		return
	}
	fmt.Printf("  Embedded XML: factur-x.xml (%d bytes)\n", info.XMLBytes)
	if info.Guideline != "" {
		fmt.Printf("  Guideline: %s\n", info.Guideline)
	}
	if info.InvoiceNum != "" {
		fmt.Printf("  Invoice: %s\n", info.InvoiceNum)
	}
	if info.Currency != "" {
		fmt.Printf("  Currency: %s\n", info.Currency)
	}
}
