package model

import (
	dec "github.com/shopspring/decimal"
)

// InvoiceRequest is the JSON-shaped boundary payload. Loosely-typed wire data
// never flows past Build: the request is converted into an InvoiceDocument by
// the one validating constructor or rejected with field-level errors.
type InvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	InvoiceType   string `json:"invoice_type,omitempty"`
	IssueDate     string `json:"issue_date"`
	DueDate       string `json:"due_date,omitempty"`
	Currency      string `json:"currency"`

	Seller Party `json:"seller"`
	Buyer  Party `json:"buyer"`

	Lines []LineRequest `json:"lines"`

	PrepaidAmount *dec.Decimal `json:"prepaid_amount,omitempty"`

	OrderReference    string `json:"order_reference,omitempty"`
	ContractReference string `json:"contract_reference,omitempty"`
	PaymentTerms      string `json:"payment_terms,omitempty"`
	Note              string `json:"note,omitempty"`
}

// LineRequest is one requested invoice line
type LineRequest struct {
	LineID      string      `json:"line_id"`
	Description string      `json:"description"`
	Quantity    dec.Decimal `json:"quantity"`
	UnitCode    string      `json:"unit_code,omitempty"`
	UnitPrice   dec.Decimal `json:"unit_price"`
	VATCategory string      `json:"vat_category"`
	VATRate     dec.Decimal `json:"vat_rate"`
}

// SampleRequest returns a well-formed demo invoice request. Used by the CLI
// `generate --sample` flow and by tests.
func SampleRequest() *InvoiceRequest {
	return &InvoiceRequest{
		InvoiceNumber: "FX-2026-000001",
		IssueDate:     "2026-01-15",
		DueDate:       "2026-02-14",
		Currency:      "EUR",
		Seller: Party{
			Name: "Factur-X Express SAS",
			Address: Address{
				Street:     "42 Avenue des Champs-Elysees",
				City:       "Paris",
				PostalCode: "75008",
				Country:    "FR",
			},
			VATID:   "FR12345678901",
			LegalID: "123456789",
		},
		Buyer: Party{
			Name: "Example Client SARL",
			Address: Address{
				Street:     "123 Rue de la Paix",
				City:       "Lyon",
				PostalCode: "69000",
				Country:    "FR",
			},
			VATID: "FR98765432109",
		},
		Lines: []LineRequest{
			{
				LineID:      "1",
				Description: "Consulting services",
				Quantity:    dec.NewFromInt(2),
				UnitPrice:   dec.NewFromInt(100),
				VATCategory: "S",
				VATRate:     dec.NewFromInt(20),
			},
			{
				LineID:      "2",
				Description: "Printed documentation",
				Quantity:    dec.NewFromInt(1),
				UnitPrice:   dec.NewFromFloat(45.50),
				VATCategory: "AA",
				VATRate:     dec.NewFromFloat(5.5),
			},
		},
		OrderReference: "PO-2026-001",
		PaymentTerms:   "Payment within 30 days",
		Note:           "Thank you for your business",
	}
}
