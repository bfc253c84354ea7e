package model

import (
	"sort"
	"strconv"
	"time"

	dec "github.com/shopspring/decimal"

	money "github.com/rezonia/facturx-engine/internal/decimal"
)

// Address holds a postal address for a trade party
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"` // ISO 3166-1 alpha-2
}

// Party holds seller or buyer information
type Party struct {
	Name         string  `json:"name"`
	TradingName  string  `json:"trading_name,omitempty"`
	Address      Address `json:"address"`
	VATID        string  `json:"vat_id,omitempty"`
	LegalID      string  `json:"legal_id,omitempty"` // e.g. SIREN/SIRET
	ContactEmail string  `json:"contact_email,omitempty"`
}

// LineItem is one invoice line. Owned exclusively by its InvoiceDocument.
type LineItem struct {
	ID          string      `json:"line_id"`
	Description string      `json:"description"`
	Quantity    dec.Decimal `json:"quantity"`
	UnitCode    string      `json:"unit_code,omitempty"` // UN/ECE Rec 20, default C62
	UnitPrice   dec.Decimal `json:"unit_price"`
	VATCategory VATCategory `json:"vat_category"`
	VATRate     dec.Decimal `json:"vat_rate"`
	NetAmount   dec.Decimal `json:"net_amount"` // quantity * unit_price, rounded to 2 decimals
}

// VATEntry is one aggregated VAT breakdown entry per (category, rate) pair
type VATEntry struct {
	Category      VATCategory `json:"vat_category"`
	Rate          dec.Decimal `json:"vat_rate"`
	TaxableAmount dec.Decimal `json:"taxable_amount"`
	TaxAmount     dec.Decimal `json:"tax_amount"`
}

// Totals holds the derived document totals
type Totals struct {
	LineTotal     dec.Decimal `json:"line_total"`
	TaxTotal      dec.Decimal `json:"tax_total"`
	GrandTotal    dec.Decimal `json:"grand_total"`
	PrepaidAmount dec.Decimal `json:"prepaid_amount"`
	PayableAmount dec.Decimal `json:"payable_amount"`
}

// InvoiceDocument is the in-memory CII-structured invoice. Build is the only
// constructor; treat a built document as immutable and build a new one for
// revisions. A document never violates its own totals invariants.
type InvoiceDocument struct {
	Number    string      `json:"invoice_number"`
	Type      InvoiceType `json:"invoice_type"`
	IssueDate time.Time   `json:"issue_date"`
	DueDate   *time.Time  `json:"due_date,omitempty"`
	Currency  string      `json:"currency"`

	Seller Party `json:"seller"`
	Buyer  Party `json:"buyer"`

	Lines        []LineItem `json:"lines"`
	VATBreakdown []VATEntry `json:"vat_breakdown"`
	Totals       Totals     `json:"totals"`

	OrderReference    string `json:"order_reference,omitempty"`
	ContractReference string `json:"contract_reference,omitempty"`
	PaymentTerms      string `json:"payment_terms,omitempty"`
	Note              string `json:"note,omitempty"`
}

// DateFormat is the wire format for request dates
const DateFormat = "2006-01-02"

// Build validates an invoice request and constructs the document. Every field
// constraint is checked before any derivation; violations accumulate into a
// single ValidationError listing all offending fields.
func Build(req *InvoiceRequest) (*InvoiceDocument, error) {
	verr := &ValidationError{}

	if req == nil {
		verr.Add("request", nil, "required", "missing invoice request")
		return nil, verr
	}

	if req.InvoiceNumber == "" {
		verr.Add("invoice_number", nil, "required", "invoice number must not be empty")
	}

	invType := InvoiceTypeCommercial
	if req.InvoiceType != "" {
		invType = InvoiceType(req.InvoiceType)
		if !invType.Valid() {
			verr.Add("invoice_type", req.InvoiceType, "enum", "unsupported invoice type code")
		}
	}

	issueDate, err := time.Parse(DateFormat, req.IssueDate)
	if err != nil {
		verr.Add("issue_date", req.IssueDate, "date", "issue date must be YYYY-MM-DD")
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := time.Parse(DateFormat, req.DueDate)
		if err != nil {
			verr.Add("due_date", req.DueDate, "date", "due date must be YYYY-MM-DD")
		} else if !issueDate.IsZero() && d.Before(issueDate) {
			verr.Add("due_date", req.DueDate, "range", "due date must not precede issue date")
		} else {
			dueDate = &d
		}
	}

	if len(req.Currency) != 3 {
		verr.Add("currency", req.Currency, "format", "currency must be a 3-letter ISO 4217 code")
	} else if !CurrencySupported(req.Currency) {
		verr.Add("currency", req.Currency, "enum", "currency not in the supported set")
	}

	validateParty(verr, "seller", &req.Seller)
	validateParty(verr, "buyer", &req.Buyer)

	if len(req.Lines) == 0 {
		verr.Add("lines", nil, "min_items", "invoice must contain at least one line")
	}

	prepaid := money.Zero
	if req.PrepaidAmount != nil {
		prepaid = *req.PrepaidAmount
		if prepaid.IsNegative() {
			verr.Add("prepaid_amount", prepaid.String(), "range", "prepaid amount must not be negative")
		}
	}

	lines := make([]LineItem, 0, len(req.Lines))
	seenIDs := make(map[string]bool, len(req.Lines))
	for i, lr := range req.Lines {
		line, ok := buildLine(verr, i, &lr)
		if !ok {
			continue
		}
		if seenIDs[line.ID] {
			verr.Add(fieldAt(i, "line_id"), line.ID, "unique", "line id must be unique per invoice")
			continue
		}
		seenIDs[line.ID] = true
		lines = append(lines, line)
	}

	if verr.HasErrors() {
		return nil, verr
	}

	doc := &InvoiceDocument{
		Number:            req.InvoiceNumber,
		Type:              invType,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Currency:          req.Currency,
		Seller:            req.Seller,
		Buyer:             req.Buyer,
		Lines:             lines,
		OrderReference:    req.OrderReference,
		ContractReference: req.ContractReference,
		PaymentTerms:      req.PaymentTerms,
		Note:              req.Note,
	}
	doc.VATBreakdown = deriveBreakdown(lines)
	doc.Totals = deriveTotals(lines, doc.VATBreakdown, prepaid)

	// Invariants over already-rounded values; a violation here means the
	// derivation itself is broken, so refuse to build.
	if err := doc.checkInvariants(); err != nil {
		return nil, err
	}
	return doc, nil
}

func validateParty(verr *ValidationError, role string, p *Party) {
	if p.Name == "" {
		verr.Add(role+".name", nil, "required", role+" name must not be empty")
	}
	if p.Address.Country != "" && len(p.Address.Country) != 2 {
		verr.Add(role+".address.country", p.Address.Country, "format", "country must be an ISO 3166-1 alpha-2 code")
	}
}

func fieldAt(i int, name string) string {
	return "lines[" + strconv.Itoa(i) + "]." + name
}

func buildLine(verr *ValidationError, i int, lr *LineRequest) (LineItem, bool) {
	ok := true

	if lr.LineID == "" {
		verr.Add(fieldAt(i, "line_id"), nil, "required", "line id must not be empty")
		ok = false
	}
	if lr.Description == "" {
		verr.Add(fieldAt(i, "description"), nil, "required", "line description must not be empty")
		ok = false
	}
	if !money.IsPositive(lr.Quantity) {
		verr.Add(fieldAt(i, "quantity"), lr.Quantity.String(), "range", "quantity must be greater than zero")
		ok = false
	}
	if lr.UnitPrice.IsNegative() {
		verr.Add(fieldAt(i, "unit_price"), lr.UnitPrice.String(), "range", "unit price must not be negative")
		ok = false
	}

	cat := VATCategory(lr.VATCategory)
	if !cat.Valid() {
		verr.Add(fieldAt(i, "vat_category"), lr.VATCategory, "enum", "vat category not in the permitted code list")
		ok = false
	}
	if lr.VATRate.IsNegative() || lr.VATRate.GreaterThan(money.Hundred) {
		verr.Add(fieldAt(i, "vat_rate"), lr.VATRate.String(), "range", "vat rate must be between 0 and 100")
		ok = false
	} else if cat.RequiresZeroRate() && !lr.VATRate.IsZero() {
		verr.Add(fieldAt(i, "vat_rate"), lr.VATRate.String(), "consistency", "vat category "+string(cat)+" requires rate 0")
		ok = false
	}

	if !ok {
		return LineItem{}, false
	}

	unitCode := lr.UnitCode
	if unitCode == "" {
		unitCode = "C62"
	}

	return LineItem{
		ID:          lr.LineID,
		Description: lr.Description,
		Quantity:    lr.Quantity,
		UnitCode:    unitCode,
		UnitPrice:   lr.UnitPrice,
		VATCategory: cat,
		VATRate:     lr.VATRate,
		// round per line before any aggregation
		NetAmount: money.Mul(lr.Quantity, lr.UnitPrice),
	}, true
}

// deriveBreakdown aggregates lines into one entry per (category, rate) pair,
// sorted by (category, rate) for stable serialization.
func deriveBreakdown(lines []LineItem) []VATEntry {
	type key struct {
		cat  VATCategory
		rate string
	}
	agg := make(map[key]*VATEntry)
	order := make([]key, 0)
	for _, l := range lines {
		k := key{l.VATCategory, l.VATRate.StringFixed(2)}
		e, found := agg[k]
		if !found {
			e = &VATEntry{Category: l.VATCategory, Rate: l.VATRate}
			agg[k] = e
			order = append(order, k)
		}
		e.TaxableAmount = e.TaxableAmount.Add(l.NetAmount)
	}
	out := make([]VATEntry, 0, len(order))
	for _, k := range order {
		e := agg[k]
		e.TaxAmount = money.CalculateVAT(e.TaxableAmount, e.Rate)
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Rate.LessThan(out[j].Rate)
	})
	return out
}

func deriveTotals(lines []LineItem, breakdown []VATEntry, prepaid dec.Decimal) Totals {
	lineTotal := money.Zero
	for _, l := range lines {
		lineTotal = lineTotal.Add(l.NetAmount)
	}
	taxTotal := money.Zero
	for _, e := range breakdown {
		taxTotal = taxTotal.Add(e.TaxAmount)
	}
	grand := lineTotal.Add(taxTotal)
	return Totals{
		LineTotal:     lineTotal,
		TaxTotal:      taxTotal,
		GrandTotal:    grand,
		PrepaidAmount: prepaid,
		PayableAmount: grand.Sub(prepaid),
	}
}

func (d *InvoiceDocument) checkInvariants() error {
	verr := &ValidationError{}

	sum := money.Zero
	for _, l := range d.Lines {
		sum = sum.Add(l.NetAmount)
	}
	if !money.WithinTolerance(sum, d.Totals.LineTotal) {
		verr.Add("totals.line_total", d.Totals.LineTotal.String(), "invariant", "line total does not match sum of line net amounts")
	}

	taxSum := money.Zero
	for _, e := range d.VATBreakdown {
		taxSum = taxSum.Add(e.TaxAmount)
	}
	if !taxSum.Equal(d.Totals.TaxTotal) {
		verr.Add("totals.tax_total", d.Totals.TaxTotal.String(), "invariant", "tax total does not match sum of vat breakdown amounts")
	}
	if !d.Totals.GrandTotal.Equal(d.Totals.LineTotal.Add(d.Totals.TaxTotal)) {
		verr.Add("totals.grand_total", d.Totals.GrandTotal.String(), "invariant", "grand total must equal line total plus tax total")
	}
	if !d.Totals.PayableAmount.Equal(d.Totals.GrandTotal.Sub(d.Totals.PrepaidAmount)) {
		verr.Add("totals.payable_amount", d.Totals.PayableAmount.String(), "invariant", "payable amount must equal grand total minus prepaid amount")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
