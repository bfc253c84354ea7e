package facturx

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/facturx-engine/internal/engine"
)

// Options configures a Client
type Options struct {
	// VeraPDFPath points at an explicit veraPDF binary. Empty means PATH
	// discovery; the built-in structural checks run when neither finds one.
	VeraPDFPath string
	// ValidationTimeout bounds each validator run
	ValidationTimeout time.Duration
	// Logger receives pipeline logs; zerolog.Nop() by default
	Logger zerolog.Logger
}

// DefaultOptions returns the default client options
func DefaultOptions() Options {
	return Options{
		ValidationTimeout: 60 * time.Second,
		Logger:            zerolog.Nop(),
	}
}

// Client is the public pipeline handle, safe for concurrent use
type Client struct {
	engine *engine.Engine
}

// New creates a client with default options
func New() *Client {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a client with the given options
func NewWithOptions(opts Options) *Client {
	engineOpts := []engine.Option{engine.WithLogger(opts.Logger)}
	if opts.VeraPDFPath != "" {
		engineOpts = append(engineOpts, engine.WithVeraPDFPath(opts.VeraPDFPath))
	}
	if opts.ValidationTimeout > 0 {
		engineOpts = append(engineOpts, engine.WithValidationTimeout(opts.ValidationTimeout))
	}
	return &Client{engine: engine.New(engineOpts...)}
}

// Generate runs the full pipeline: build, serialize, package, validate
func (c *Client) Generate(ctx context.Context, req *InvoiceRequest) (*GenerateResult, error) {
	return c.engine.Generate(ctx, req)
}

// GenerateXML builds the document and returns only the CII XML
func (c *Client) GenerateXML(req *InvoiceRequest) (*InvoiceDocument, []byte, error) {
	return c.engine.GenerateXML(req)
}

// GeneratePDF builds and packages without validating
func (c *Client) GeneratePDF(ctx context.Context, req *InvoiceRequest) (*GenerateResult, error) {
	return c.engine.GeneratePDF(ctx, req)
}

// Validate checks an existing PDF on both compliance axes. sourceXML is
// optional; when given the round-trip check compares it byte for byte
// against the embedded attachment.
func (c *Client) Validate(ctx context.Context, pdf []byte, sourceXML []byte) *Report {
	return c.engine.Validate(ctx, pdf, sourceXML)
}

// ValidateReader reads a PDF from r and validates it
func (c *Client) ValidateReader(ctx context.Context, r io.Reader) (*Report, error) {
	pdf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return c.engine.Validate(ctx, pdf, nil), nil
}

// Extract returns the embedded factur-x.xml payload
func (c *Client) Extract(pdf []byte) ([]byte, error) {
	return c.engine.Extract(pdf)
}

// Inspect summarizes a PDF without full validation
func (c *Client) Inspect(pdf []byte) *Info {
	return c.engine.Inspect(pdf)
}
