package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-engine/internal/engine"
	"github.com/rezonia/facturx-engine/internal/validate"
)

var validateSourceXML string

var validateCmd = &cobra.Command{
	Use:   "validate [file.pdf]",
	Short: "Validate a Factur-X PDF",
	Long: `Validate a Factur-X PDF on both compliance axes:

  - PDF/A-3 structure (veraPDF when available, built-in checks otherwise)
  - EN 16931 business rules against the embedded factur-x.xml

Both validators run concurrently; an unavailable or timed-out validator is
reported as an infrastructure failure, never as non-compliance.

Examples:
  facturx-engine validate invoice.pdf
  facturx-engine validate invoice.pdf --source-xml factur-x.xml
  facturx-engine validate invoice.pdf -f table`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateSourceXML, "source-xml", "", "Original XML to verify the embedded copy against byte for byte")
}

func runValidate(cmd *cobra.Command, args []string) error {
	pdf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read PDF: %w", err)
	}

	var sourceXML []byte
	if validateSourceXML != "" {
		sourceXML, err = os.ReadFile(validateSourceXML)
		if err != nil {
			return fmt.Errorf("failed to read source XML: %w", err)
		}
	}

	eng := engine.New(
		engine.WithLogger(log),
		engine.WithVeraPDFPath(veraPDFPath),
		engine.WithValidationTimeout(valTimeout),
	)

	report := eng.Validate(context.Background(), pdf, sourceXML)
	printReport(report)

	if !report.OverallCompliant() {
		return fmt.Errorf("%s is not compliant", args[0])
	}
	return nil
}

func printReport(report *validate.Report) {
	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.Encode(report)
		return
	}

	printAxis("PDF/A-3", report.PDFA3)
	printAxis("EN 16931", report.EN16931)
	printBool("Round trip", report.RoundTripOK)
	printBool("Overall", report.OverallCompliant())
}

func printAxis(label string, r validate.ValidatorResult) {
	if r.InfraError != "" {
		fmt.Printf("? %s: %s (%s)\n", label, "UNCHECKED", r.InfraError)
	} else {
		printBool(label, r.Compliant)
	}
	for _, f := range r.Errors {
		fmt.Printf("  - [%s] %s\n", f.Code, f.Message)
	}
	for _, f := range r.Warnings {
		fmt.Printf("  ⚠ [%s] %s\n", f.Code, f.Message)
	}
}

func printBool(label string, ok bool) {
	if ok {
		fmt.Printf("✓ %s: PASS\n", label)
	} else {
		fmt.Printf("✗ %s: FAIL\n", label)
	}
}
