package validate

import (
	"bytes"
	"context"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Finding codes emitted by the structural validator
const (
	CodePDFHeader        = "PDFA-HEADER"
	CodePDFTrailer       = "PDFA-TRAILER"
	CodePDFStructure     = "PDFA-STRUCTURE"
	CodePDFEncrypted     = "PDFA-ENCRYPTED"
	CodePDFTransparency  = "PDFA-TRANSPARENCY"
	CodePDFNoXMP         = "PDFA-NO-XMP"
	CodePDFNoConformance = "PDFA-NO-CONFORMANCE"
	CodePDFNoEmbedded    = "PDFA-NO-EMBEDDED-FILES"
	CodePDFNoFacturX     = "PDFA-NO-FACTURX-FILE"
	CodePDFFonts         = "PDFA-FONTS"
	CodePDFColorSpace    = "PDFA-COLORSPACE"
)

var pdfMagic = []byte("%PDF-")

// StructuralValidator is the built-in PDF/A-3 conformance pre-check. It
// combines a pdfcpu structural pass with the byte-level Factur-X container
// checks: XMP presence, PDF/A declaration, embedded factur-x.xml, no
// encryption, no transparency groups. Checks that cannot be decided without
// a full ISO 19005 engine (font embedding for base-14 fonts, ICC-calibrated
// color) downgrade to warnings; the veraPDF adapter is the authoritative
// validator for those.
type StructuralValidator struct {
	conf *pdfmodel.Configuration
}

// NewStructuralValidator creates the built-in PDF/A validator
func NewStructuralValidator() *StructuralValidator {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &StructuralValidator{conf: conf}
}

// Name implements Validator
func (v *StructuralValidator) Name() string {
	return "pdfa3-structural"
}

// Validate implements Validator
func (v *StructuralValidator) Validate(ctx context.Context, artifact *Artifact) *Result {
	res := &Result{Name: v.Name(), Compliant: true}

	if err := ctx.Err(); err != nil {
		res.Err = ErrValidatorTimeout(v.Name(), err)
		return res
	}

	data := artifact.PDF

	if !bytes.HasPrefix(data, pdfMagic) {
		res.AddFinding(SeverityError, CodePDFHeader, "invalid PDF header")
		// nothing else is meaningful without a PDF
		return res
	}

	tail := data
	if len(tail) > 1024 {
		tail = tail[len(tail)-1024:]
	}
	if !bytes.Contains(tail, []byte("%%EOF")) {
		res.AddFinding(SeverityWarning, CodePDFTrailer, "PDF trailer not found in expected location")
	}

	if bytes.Contains(data, []byte("/Encrypt")) {
		res.AddFinding(SeverityError, CodePDFEncrypted, "encryption present; PDF/A forbids encryption")
	}

	if pctx, err := api.ReadContext(bytes.NewReader(data), v.conf); err != nil {
		res.AddFinding(SeverityError, CodePDFStructure, "document cannot be parsed: "+err.Error())
	} else if err := api.ValidateContext(pctx); err != nil {
		res.AddFinding(SeverityError, CodePDFStructure, "document structure invalid: "+err.Error())
	}

	if err := ctx.Err(); err != nil {
		res.Err = ErrValidatorTimeout(v.Name(), err)
		return res
	}

	if !bytes.Contains(data, []byte("<x:xmpmeta")) {
		res.AddFinding(SeverityError, CodePDFNoXMP, "XMP metadata not found; required for PDF/A")
	} else if !bytes.Contains(data, []byte("pdfaid:part")) {
		res.AddFinding(SeverityError, CodePDFNoConformance, "PDF/A part/conformance declaration not found in XMP")
	}

	if !bytes.Contains(data, []byte("/EmbeddedFiles")) {
		res.AddFinding(SeverityError, CodePDFNoEmbedded, "no embedded files; Factur-X requires an embedded XML invoice")
	} else if !bytes.Contains(data, []byte("factur-x.xml")) && !bytes.Contains(data, []byte("ZUGFeRD-invoice.xml")) {
		res.AddFinding(SeverityError, CodePDFNoFacturX, "Factur-X XML file name not found among embedded files")
	}

	if bytes.Contains(data, []byte("/Transparency")) {
		res.AddFinding(SeverityError, CodePDFTransparency, "transparency group present; PDF/A-3 visual content must not use transparency")
	}

	if bytes.Contains(data, []byte("/Font")) && !bytes.Contains(data, []byte("/FontFile")) {
		res.AddFinding(SeverityWarning, CodePDFFonts, "no embedded font program found; PDF/A requires all fonts embedded")
	}

	if bytes.Contains(data, []byte("/DeviceRGB")) && !bytes.Contains(data, []byte("/OutputIntent")) {
		res.AddFinding(SeverityWarning, CodePDFColorSpace, "DeviceRGB used without an OutputIntent ICC profile")
	}

	return res
}
