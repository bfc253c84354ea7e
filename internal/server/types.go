package server

import (
	"github.com/rezonia/facturx-engine/internal/model"
	"github.com/rezonia/facturx-engine/internal/validate"
)

// GenerateResponse is the response for invoice generation endpoints
type GenerateResponse struct {
	Invoice *model.InvoiceDocument `json:"invoice"`
	PDF     []byte                 `json:"pdf"`
	XML     []byte                 `json:"xml"`
	Report  *validate.Report       `json:"report"`
}

// XMLResponse is the response for XML-only generation
type XMLResponse struct {
	Invoice *model.InvoiceDocument `json:"invoice"`
	XML     []byte                 `json:"xml"`
}

// ExtractResponse is the response for the extract endpoint
type ExtractResponse struct {
	XML []byte `json:"xml"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []*model.FieldError `json:"fields,omitempty"`
}
