package model

import "sort"

// VATCategory is an EN 16931 VAT category code (UNCL 5305 subset)
type VATCategory string

// Supported VAT category codes
const (
	VATStandard      VATCategory = "S"  // standard rate
	VATZero          VATCategory = "Z"  // zero rated
	VATExempt        VATCategory = "E"  // exempt from VAT
	VATReverseCharge VATCategory = "AE" // reverse charge
	VATReducedA      VATCategory = "AA" // reduced rate
	VATReducedB      VATCategory = "AB" // super reduced rate
)

// vatCategories is the process-wide category table, read-only after init
var vatCategories = map[VATCategory]bool{
	VATStandard:      true,
	VATZero:          true,
	VATExempt:        true,
	VATReverseCharge: true,
	VATReducedA:      true,
	VATReducedB:      true,
}

// Valid reports whether the category is in the supported enumeration
func (c VATCategory) Valid() bool {
	return vatCategories[c]
}

// RequiresZeroRate reports whether the category only admits a 0 rate
func (c VATCategory) RequiresZeroRate() bool {
	switch c {
	case VATZero, VATExempt, VATReverseCharge:
		return true
	}
	return false
}

// InvoiceType is a UNTDID 1001 invoice type code
type InvoiceType string

// Supported invoice type codes
const (
	InvoiceTypeCommercial InvoiceType = "380"
	InvoiceTypeCreditNote InvoiceType = "381"
	InvoiceTypeDebitNote  InvoiceType = "383"
	InvoiceTypeCorrective InvoiceType = "384"
)

var invoiceTypes = map[InvoiceType]bool{
	InvoiceTypeCommercial: true,
	InvoiceTypeCreditNote: true,
	InvoiceTypeDebitNote:  true,
	InvoiceTypeCorrective: true,
}

// Valid reports whether the type code is supported
func (t InvoiceType) Valid() bool {
	return invoiceTypes[t]
}

// currencies is the supported ISO 4217 set, read-only after init.
// All are 2-fractional-digit currencies, so one rounding scale applies.
var currencies = map[string]bool{
	"EUR": true,
	"USD": true,
	"GBP": true,
	"CHF": true,
}

// CurrencySupported reports whether code is in the configured currency set
func CurrencySupported(code string) bool {
	return currencies[code]
}

// SupportedCurrencies returns the configured currency codes
func SupportedCurrencies() []string {
	out := make([]string, 0, len(currencies))
	for c := range currencies {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
