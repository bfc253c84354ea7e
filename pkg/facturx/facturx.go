// Package facturx provides a public API for generating and validating
// Factur-X (EN 16931) hybrid invoices: a PDF/A-3 carrying the machine
// readable CII XML as an embedded factur-x.xml attachment.
//
// Example usage:
//
//	client := facturx.New()
//	result, err := client.Generate(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("invoice.pdf", result.PDF, 0o644)
package facturx

import (
	"github.com/rezonia/facturx-engine/internal/engine"
	"github.com/rezonia/facturx-engine/internal/model"
	"github.com/rezonia/facturx-engine/internal/validate"
)

// Re-export core types for public API
type (
	InvoiceRequest  = model.InvoiceRequest
	LineRequest     = model.LineRequest
	InvoiceDocument = model.InvoiceDocument
	LineItem        = model.LineItem
	Party           = model.Party
	Address         = model.Address
	VATEntry        = model.VATEntry
	Totals          = model.Totals
	VATCategory     = model.VATCategory
	InvoiceType     = model.InvoiceType

	GenerateResult = engine.GenerateResult
	Info           = engine.Info
	Report         = validate.Report
	Finding        = validate.Finding
)

// Re-export VAT category codes
const (
	VATStandard      = model.VATStandard
	VATZero          = model.VATZero
	VATExempt        = model.VATExempt
	VATReverseCharge = model.VATReverseCharge
	VATReducedA      = model.VATReducedA
	VATReducedB      = model.VATReducedB
)

// Re-export invoice type codes
const (
	InvoiceTypeCommercial = model.InvoiceTypeCommercial
	InvoiceTypeCreditNote = model.InvoiceTypeCreditNote
	InvoiceTypeDebitNote  = model.InvoiceTypeDebitNote
	InvoiceTypeCorrective = model.InvoiceTypeCorrective
)

// Re-export error types
type (
	FieldError         = model.FieldError
	ValidationError    = model.ValidationError
	SerializationError = model.SerializationError
	PackagingError     = model.PackagingError
)

// SampleRequest returns a minimal valid invoice request
func SampleRequest() *InvoiceRequest {
	return model.SampleRequest()
}

// SupportedCurrencies lists the accepted ISO 4217 currency codes
func SupportedCurrencies() []string {
	return model.SupportedCurrencies()
}
