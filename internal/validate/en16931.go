package validate

import (
	"context"
	"fmt"

	dec "github.com/shopspring/decimal"

	"github.com/rezonia/facturx-engine/internal/cii"
	"github.com/rezonia/facturx-engine/internal/decimal"
	"github.com/rezonia/facturx-engine/internal/model"
)

// Business-rule codes follow the EN 16931 rule catalogue
const (
	CodeBR05   = "BR-05"    // invoice currency code required
	CodeBR06   = "BR-06"    // seller name required
	CodeBR07   = "BR-07"    // buyer name required
	CodeBR16   = "BR-16"    // at least one invoice line
	CodeBRCL17 = "BR-CL-17" // VAT category from the permitted set
	CodeBRCO10 = "BR-CO-10" // sum of line amounts equals line total
	CodeBRCO14 = "BR-CO-14" // sum of category tax equals tax total
	CodeBRCO15 = "BR-CO-15" // grand total equals line total plus tax total
	CodeBRCO16 = "BR-CO-16" // payable amount derivation

	CodeInvoiceNumber = "BR-02"
	CodeTypeCode      = "BR-04"
	CodeNoXML         = "EN16931-NO-XML"
	CodeXMLParse      = "EN16931-XML-PARSE"
)

// EN16931Validator checks the business rules of EN 16931 against the XML
// extracted from a packaged PDF. It never touches the PDF bytes; a missing
// or unparseable XML payload is itself a compliance failure.
type EN16931Validator struct{}

// NewEN16931Validator creates a business-rule validator
func NewEN16931Validator() *EN16931Validator {
	return &EN16931Validator{}
}

// Name implements Validator
func (v *EN16931Validator) Name() string {
	return "en16931-rules"
}

// Validate implements Validator
func (v *EN16931Validator) Validate(ctx context.Context, artifact *Artifact) *Result {
	res := &Result{Name: v.Name(), Compliant: false}

	if err := ctx.Err(); err != nil {
		res.Err = ErrValidatorTimeout(v.Name(), err)
		return res
	}

	if len(artifact.XML) == 0 {
		res.AddFinding(SeverityError, CodeNoXML, "no CII XML available for business-rule validation")
		return res
	}

	inv, err := cii.Parse(artifact.XML)
	if err != nil {
		res.AddFinding(SeverityError, CodeXMLParse, fmt.Sprintf("CII XML is not well-formed: %v", err))
		return res
	}

	v.checkHeader(inv, res)
	v.checkLines(inv, res)
	v.checkTotals(inv, res)

	res.Compliant = true
	for _, f := range res.Findings {
		if f.Severity == SeverityError {
			res.Compliant = false
			break
		}
	}
	return res
}

func (v *EN16931Validator) checkHeader(inv *cii.ParsedInvoice, res *Result) {
	if inv.InvoiceNumber == "" {
		res.AddFinding(SeverityError, CodeInvoiceNumber, "invoice number (BT-1) is required")
	}
	if inv.TypeCode == "" {
		res.AddFinding(SeverityError, CodeTypeCode, "invoice type code (BT-3) is required")
	} else if !model.InvoiceType(inv.TypeCode).Valid() {
		res.AddFinding(SeverityError, CodeTypeCode, fmt.Sprintf("invoice type code %q is not permitted", inv.TypeCode))
	}
	if inv.Currency == "" {
		res.AddFinding(SeverityError, CodeBR05, "invoice currency code (BT-5) is required")
	} else if !model.CurrencySupported(inv.Currency) {
		res.AddFinding(SeverityError, CodeBR05, fmt.Sprintf("currency code %q is not supported", inv.Currency))
	}
	if inv.SellerName == "" {
		res.AddFinding(SeverityError, CodeBR06, "seller name (BT-27) is required")
	}
	if inv.BuyerName == "" {
		res.AddFinding(SeverityError, CodeBR07, "buyer name (BT-44) is required")
	}
}

func (v *EN16931Validator) checkLines(inv *cii.ParsedInvoice, res *Result) {
	if len(inv.Lines) == 0 {
		res.AddFinding(SeverityError, CodeBR16, "an invoice shall have at least one invoice line (BG-25)")
		return
	}
	for _, line := range inv.Lines {
		if line.Category == "" || !model.VATCategory(line.Category).Valid() {
			res.AddFinding(SeverityError, CodeBRCL17,
				fmt.Sprintf("line %s: VAT category code %q is not in the permitted set", line.LineID, line.Category))
		}
	}
	for _, tax := range inv.VATBreakdown {
		if tax.Category == "" || !model.VATCategory(tax.Category).Valid() {
			res.AddFinding(SeverityError, CodeBRCL17,
				fmt.Sprintf("VAT breakdown: category code %q is not in the permitted set", tax.Category))
		}
	}
}

func (v *EN16931Validator) checkTotals(inv *cii.ParsedInvoice, res *Result) {
	if len(inv.Lines) == 0 {
		return
	}

	lineSum := dec.Zero
	for _, line := range inv.Lines {
		lineSum = lineSum.Add(line.NetAmount)
	}
	if inv.LineTotal.Present && !decimal.WithinTolerance(lineSum, inv.LineTotal.Value) {
		res.AddFinding(SeverityError, CodeBRCO10,
			fmt.Sprintf("sum of line net amounts %s does not match line total %s",
				decimal.FormatAmount(lineSum), decimal.FormatAmount(inv.LineTotal.Value)))
	}

	taxSum := dec.Zero
	for _, tax := range inv.VATBreakdown {
		taxSum = taxSum.Add(tax.Calculated)
	}
	if inv.TaxTotal.Present && !decimal.WithinTolerance(taxSum, inv.TaxTotal.Value) {
		res.AddFinding(SeverityError, CodeBRCO14,
			fmt.Sprintf("sum of VAT category amounts %s does not match tax total %s",
				decimal.FormatAmount(taxSum), decimal.FormatAmount(inv.TaxTotal.Value)))
	}

	if inv.LineTotal.Present && inv.TaxTotal.Present && inv.GrandTotal.Present {
		expected := inv.LineTotal.Value.Add(inv.TaxTotal.Value)
		if !decimal.WithinTolerance(expected, inv.GrandTotal.Value) {
			res.AddFinding(SeverityError, CodeBRCO15,
				fmt.Sprintf("grand total %s does not equal line total plus tax total %s",
					decimal.FormatAmount(inv.GrandTotal.Value), decimal.FormatAmount(expected)))
		}
	}

	if inv.GrandTotal.Present && inv.PayableAmount.Present {
		if inv.PayableAmount.Value.GreaterThan(inv.GrandTotal.Value) {
			res.AddFinding(SeverityError, CodeBRCO16,
				fmt.Sprintf("payable amount %s exceeds grand total %s",
					decimal.FormatAmount(inv.PayableAmount.Value), decimal.FormatAmount(inv.GrandTotal.Value)))
		}
	}
}
