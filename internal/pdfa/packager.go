// Package pdfa builds and opens PDF/A-3 containers for Factur-X invoices.
package pdfa

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"

	"github.com/rezonia/facturx-engine/internal/model"
)

// AttachmentName is the exact embedded file name required by Factur-X
const AttachmentName = "factur-x.xml"

// MIMEType of the embedded invoice XML
const MIMEType = "text/xml"

// Packager renders a visual invoice and embeds CII XML into a PDF/A-3
// container. Package never returns an artifact it has not itself round-tripped.
type Packager struct {
	conf *pdfmodel.Configuration
	log  zerolog.Logger
}

// Option configures a Packager
type Option func(*Packager)

// WithLogger sets the packager logger
func WithLogger(log zerolog.Logger) Option {
	return func(p *Packager) {
		p.log = log
	}
}

// NewPackager creates a new packager
func NewPackager(opts ...Option) *Packager {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	// PDF/A forbids cross-reference streams; keep catalog keys scannable
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	p := &Packager{
		conf: conf,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Package renders doc and embeds xmlBytes as factur-x.xml with AFRelationship
// Data and PDF/A-3 XMP metadata. Returns PackagingError on any failure,
// including the final self-check (re-extract and byte-compare).
func (p *Packager) Package(ctx context.Context, doc *model.InvoiceDocument, xmlBytes []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewPackagingError("render", "request cancelled", err)
	}

	visual, err := renderVisual(doc)
	if err != nil {
		return nil, model.NewPackagingError("render", "failed to render visual invoice", err)
	}
	p.log.Debug().Str("invoice", doc.Number).Int("bytes", len(visual)).Msg("rendered visual invoice")

	embedded, err := p.embed(visual, xmlBytes)
	if err != nil {
		return nil, model.NewPackagingError("embed", "failed to embed invoice XML", err)
	}

	final, err := p.finalize(embedded, doc.Number)
	if err != nil {
		return nil, model.NewPackagingError("finalize", "failed to apply PDF/A-3 metadata", err)
	}

	// Self-check: the attachment must come back out byte-identical.
	extracted, err := p.Extract(final)
	if err != nil {
		return nil, model.NewPackagingError("selfcheck", "failed to re-extract embedded XML", err)
	}
	if !bytes.Equal(extracted, xmlBytes) {
		return nil, model.NewPackagingError("selfcheck", "re-extracted XML differs from source", nil)
	}

	p.log.Debug().Str("invoice", doc.Number).Int("bytes", len(final)).Msg("packaged PDF/A-3 artifact")
	return final, nil
}

// embed attaches xmlBytes under the mandated file name. pdfcpu's attachment
// API works on file paths, so the XML goes through a scratch directory.
func (p *Packager) embed(pdf, xmlBytes []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "facturx-pack-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	xmlPath := filepath.Join(tmpDir, AttachmentName)
	if err := os.WriteFile(xmlPath, xmlBytes, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write attachment file: %w", err)
	}

	var buf bytes.Buffer
	if err := api.AddAttachments(bytes.NewReader(pdf), &buf, []string{xmlPath}, false, p.conf); err != nil {
		return nil, fmt.Errorf("failed to add attachment: %w", err)
	}
	return buf.Bytes(), nil
}

// finalize marks the container as PDF/A-3: document-level XMP metadata,
// AFRelationship Data on the file specification and the catalog /AF array.
func (p *Packager) finalize(pdf []byte, title string) ([]byte, error) {
	pctx, err := api.ReadContext(bytes.NewReader(pdf), p.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to re-open container: %w", err)
	}

	rootDict, err := pctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to access catalog: %w", err)
	}

	// XMP metadata stream, uncompressed as PDF/A requires
	packet := buildXMP(title)
	sd := types.StreamDict{
		Dict: types.Dict(map[string]types.Object{
			"Type":    types.Name("Metadata"),
			"Subtype": types.Name("XML"),
			"Length":  types.Integer(len(packet)),
		}),
		Content:        packet,
		FilterPipeline: nil,
	}
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("failed to encode metadata stream: %w", err)
	}
	indRef, err := pctx.IndRefForNewObject(sd)
	if err != nil {
		return nil, fmt.Errorf("failed to register metadata stream: %w", err)
	}
	rootDict["Metadata"] = *indRef

	if err := p.markAssociatedFiles(pctx, rootDict); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := api.WriteContext(pctx, &out); err != nil {
		return nil, fmt.Errorf("failed to write container: %w", err)
	}
	return out.Bytes(), nil
}

// markAssociatedFiles walks the EmbeddedFiles name tree, sets AFRelationship
// on every file specification and records them in the catalog /AF array.
func (p *Packager) markAssociatedFiles(pctx *pdfmodel.Context, rootDict types.Dict) error {
	namesObj, found := rootDict.Find("Names")
	if !found {
		return fmt.Errorf("no Names dictionary after embedding")
	}
	namesDict, err := pctx.DereferenceDict(namesObj)
	if err != nil {
		return fmt.Errorf("failed to dereference Names: %w", err)
	}

	efObj, found := namesDict.Find("EmbeddedFiles")
	if !found {
		return fmt.Errorf("no EmbeddedFiles name tree after embedding")
	}
	efDict, err := pctx.DereferenceDict(efObj)
	if err != nil {
		return fmt.Errorf("failed to dereference EmbeddedFiles: %w", err)
	}

	arrObj, found := efDict.Find("Names")
	if !found {
		return fmt.Errorf("EmbeddedFiles name tree has no leaf names")
	}
	arr, err := pctx.DereferenceArray(arrObj)
	if err != nil {
		return fmt.Errorf("failed to dereference name array: %w", err)
	}

	af := types.Array{}
	for i := 0; i+1 < len(arr); i += 2 {
		fsDict, err := pctx.DereferenceDict(arr[i+1])
		if err != nil {
			return fmt.Errorf("failed to dereference file spec: %w", err)
		}
		fsDict["AFRelationship"] = types.Name("Data")
		af = append(af, arr[i+1])
	}
	if len(af) == 0 {
		return fmt.Errorf("embedded file specification not found")
	}
	rootDict["AF"] = af
	return nil
}

// Extract re-opens a packaged PDF and returns the factur-x.xml attachment
// bytes. Used by the packager self-check, the orchestrator round-trip stage
// and the extract command.
func (p *Packager) Extract(pdf []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "facturx-extract-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractAttachments(bytes.NewReader(pdf), tmpDir, []string{AttachmentName}, p.conf); err != nil {
		return nil, fmt.Errorf("failed to extract attachments: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, AttachmentName))
	if err != nil {
		return nil, fmt.Errorf("attachment %s not present: %w", AttachmentName, err)
	}
	return data, nil
}
