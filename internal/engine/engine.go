package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/facturx-engine/internal/cii"
	"github.com/rezonia/facturx-engine/internal/model"
	"github.com/rezonia/facturx-engine/internal/pdfa"
	"github.com/rezonia/facturx-engine/internal/validate"
)

// Engine is the full Factur-X pipeline: build, serialize, package,
// validate. One Engine is safe for concurrent use.
type Engine struct {
	serializer *cii.Serializer
	packager   *pdfa.Packager
	orch       *validate.Orchestrator
	log        zerolog.Logger

	veraPDFPath string
	timeout     time.Duration
	skipVera    bool
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger; sub-components inherit it
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithVeraPDFPath points the structural validation at an explicit veraPDF
// binary instead of PATH discovery
func WithVeraPDFPath(path string) Option {
	return func(e *Engine) { e.veraPDFPath = path }
}

// WithValidationTimeout bounds each validator run
func WithValidationTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithoutVeraPDF forces the built-in structural validator even when a
// veraPDF binary is present
func WithoutVeraPDF() Option {
	return func(e *Engine) { e.skipVera = true }
}

// New creates an Engine. The structural validator prefers veraPDF when a
// binary is discoverable and falls back to the built-in checks otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{
		serializer: cii.NewSerializer(),
		log:        zerolog.Nop(),
		timeout:    validate.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.packager = pdfa.NewPackager(pdfa.WithLogger(e.log))

	var pdfaValidator validate.Validator = validate.NewStructuralValidator()
	if !e.skipVera {
		if vera := validate.NewVeraPDFValidator(e.veraPDFPath); vera.Available() {
			e.log.Debug().Str("path", e.veraPDFPath).Msg("using veraPDF for structural validation")
			pdfaValidator = vera
		}
	}

	e.orch = validate.NewOrchestrator(e.packager,
		validate.WithPDFAValidator(pdfaValidator),
		validate.WithTimeout(e.timeout),
		validate.WithLogger(e.log),
	)
	return e
}

// GenerateResult is the outcome of a full generation run
type GenerateResult struct {
	Document *model.InvoiceDocument
	XML      []byte
	PDF      []byte
	Report   *validate.Report
}

// Generate runs the full pipeline for one invoice request: construct the
// document, serialize CII XML, package the PDF/A-3, then validate the
// artifact. Construction, serialization and packaging errors abort the run;
// validation findings never do, they land in the report instead.
func (e *Engine) Generate(ctx context.Context, req *model.InvoiceRequest) (*GenerateResult, error) {
	doc, err := model.Build(req)
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("invoice", doc.Number).Msg("invoice document built")

	xmlBytes, err := e.serializer.Serialize(doc)
	if err != nil {
		return nil, err
	}

	pdf, err := e.packager.Package(ctx, doc, xmlBytes)
	if err != nil {
		return nil, err
	}

	report := e.orch.Run(ctx, pdf, xmlBytes)
	e.log.Info().
		Str("invoice", doc.Number).
		Bool("compliant", report.OverallCompliant()).
		Int("pdf_bytes", len(pdf)).
		Msg("invoice generated")

	return &GenerateResult{Document: doc, XML: xmlBytes, PDF: pdf, Report: report}, nil
}

// GenerateXML builds the document and returns only the CII XML
func (e *Engine) GenerateXML(req *model.InvoiceRequest) (*model.InvoiceDocument, []byte, error) {
	doc, err := model.Build(req)
	if err != nil {
		return nil, nil, err
	}
	xmlBytes, err := e.serializer.Serialize(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, xmlBytes, nil
}

// GeneratePDF builds, serializes and packages without validating
func (e *Engine) GeneratePDF(ctx context.Context, req *model.InvoiceRequest) (*GenerateResult, error) {
	doc, xmlBytes, err := e.GenerateXML(req)
	if err != nil {
		return nil, err
	}
	pdf, err := e.packager.Package(ctx, doc, xmlBytes)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{Document: doc, XML: xmlBytes, PDF: pdf}, nil
}

// Validate runs both validators against an existing PDF. sourceXML is
// optional; when present the round-trip check compares it against the
// extracted attachment byte for byte.
func (e *Engine) Validate(ctx context.Context, pdf []byte, sourceXML []byte) *validate.Report {
	return e.orch.Run(ctx, pdf, sourceXML)
}

// Extract returns the embedded factur-x.xml payload of a packaged PDF
func (e *Engine) Extract(pdf []byte) ([]byte, error) {
	return e.packager.Extract(pdf)
}

// Info summarizes a packaged PDF without full validation
type Info struct {
	PDFBytes   int    `json:"pdf_bytes"`
	HasXML     bool   `json:"has_xml"`
	XMLBytes   int    `json:"xml_bytes,omitempty"`
	Guideline  string `json:"guideline,omitempty"`
	InvoiceNum string `json:"invoice_number,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// Inspect reports what an existing PDF carries: whether factur-x.xml is
// embedded and, when parseable, the headline invoice fields.
func (e *Engine) Inspect(pdf []byte) *Info {
	info := &Info{PDFBytes: len(pdf)}

	xmlBytes, err := e.packager.Extract(pdf)
	if err != nil {
		e.log.Debug().Err(err).Msg("no embedded invoice XML found")
		return info
	}
	info.HasXML = true
	info.XMLBytes = len(xmlBytes)

	parsed, err := cii.Parse(xmlBytes)
	if err != nil {
		e.log.Debug().Err(err).Msg("embedded XML is not parseable CII")
		return info
	}
	info.Guideline = parsed.Guideline
	info.InvoiceNum = parsed.InvoiceNumber
	info.Currency = parsed.Currency
	return info
}
