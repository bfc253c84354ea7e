package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-engine/internal/engine"
	"github.com/rezonia/facturx-engine/internal/model"
)

var (
	generateOutput string
	generateXMLOut string
	xmlOnly        bool
	skipValidation bool
	useSample      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [request.json]",
	Short: "Generate a Factur-X invoice from a JSON request",
	Long: `Generate a Factur-X invoice: build the document, serialize CII XML and
package a PDF/A-3 with the XML embedded as factur-x.xml.

The input is a JSON invoice request (see 'facturx-engine generate --sample'
for the shape). The generated artifact is validated unless --skip-validation
is given; validation findings are reported but never block the output.

Examples:
  facturx-engine generate invoice.json -o invoice.pdf
  facturx-engine generate invoice.json --xml-only -o factur-x.xml
  facturx-engine generate --sample | facturx-engine generate /dev/stdin -o out.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output PDF path (default: <request>.pdf)")
	generateCmd.Flags().StringVar(&generateXMLOut, "xml-output", "", "Also write the CII XML to this path")
	generateCmd.Flags().BoolVar(&xmlOnly, "xml-only", false, "Emit only the CII XML, no PDF")
	generateCmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Skip validating the generated PDF")
	generateCmd.Flags().BoolVar(&useSample, "sample", false, "Print a sample invoice request and exit")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if useSample {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(model.SampleRequest())
	}

	if len(args) == 0 {
		return fmt.Errorf("a request file is required (or --sample)")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	var req model.InvoiceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("invalid request JSON: %w", err)
	}

	eng := engine.New(
		engine.WithLogger(log),
		engine.WithVeraPDFPath(veraPDFPath),
		engine.WithValidationTimeout(valTimeout),
	)

	if xmlOnly {
		_, xmlBytes, err := eng.GenerateXML(&req)
		if err != nil {
			return err
		}
		return writeOutput(xmlBytes, generateOutput, args[0], ".xml")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var result *engine.GenerateResult
	if skipValidation {
		result, err = eng.GeneratePDF(ctx, &req)
	} else {
		result, err = eng.Generate(ctx, &req)
	}
	if err != nil {
		return err
	}

	if err := writeOutput(result.PDF, generateOutput, args[0], ".pdf"); err != nil {
		return err
	}
	if generateXMLOut != "" {
		if err := os.WriteFile(generateXMLOut, result.XML, 0o644); err != nil {
			return fmt.Errorf("failed to write XML: %w", err)
		}
	}

	if result.Report != nil {
		printReport(result.Report)
		if !result.Report.OverallCompliant() {
			return fmt.Errorf("generated invoice is not compliant")
		}
	}
	return nil
}

func writeOutput(data []byte, explicit, input, ext string) error {
	path := explicit
	if path == "" {
		base := strings.TrimSuffix(input, ".json")
		path = base + ext
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	printVerbose("wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
