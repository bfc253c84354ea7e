package pdfa

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	dec "github.com/shopspring/decimal"

	money "github.com/rezonia/facturx-engine/internal/decimal"
	"github.com/rezonia/facturx-engine/internal/model"
)

// renderVisual produces the human-readable invoice page: header, parties,
// line table, VAT breakdown, totals and legal mentions. The output is the
// baseline PDF the packager turns into a PDF/A-3 container.
func renderVisual(doc *model.InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(8, "Invoice "+doc.Number, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Factur-X / EN 16931", props.Text{
			Size:  8,
			Align: align.Right,
			Top:   4,
		}),
	)

	meta := []string{
		"Date of issue: " + doc.IssueDate.Format(model.DateFormat),
	}
	if doc.DueDate != nil {
		meta = append(meta, "Date due: "+doc.DueDate.Format(model.DateFormat))
	}
	meta = append(meta, "Currency: "+doc.Currency)
	if doc.OrderReference != "" {
		meta = append(meta, "Order reference: "+doc.OrderReference)
	}
	metaCol := col.New(6)
	for i, s := range meta {
		metaCol.Add(text.New(s, props.Text{Size: 9, Top: float64(i * 4)}))
	}
	m.AddRow(float64(len(meta)*4+6), metaCol, col.New(6))

	m.AddRow(34,
		col.New(6).Add(
			text.New("Seller", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(doc.Seller.Name, props.Text{Size: 9, Top: 4}),
			text.New(doc.Seller.Address.Street, props.Text{Size: 9, Top: 8}),
			text.New(doc.Seller.Address.PostalCode+" "+doc.Seller.Address.City+" "+doc.Seller.Address.Country, props.Text{Size: 9, Top: 12}),
			text.New(vatLabel(doc.Seller.VATID), props.Text{Size: 9, Top: 16}),
		),
		col.New(6).Add(
			text.New("Buyer", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(doc.Buyer.Name, props.Text{Size: 9, Top: 4}),
			text.New(doc.Buyer.Address.Street, props.Text{Size: 9, Top: 8}),
			text.New(doc.Buyer.Address.PostalCode+" "+doc.Buyer.Address.City+" "+doc.Buyer.Address.Country, props.Text{Size: 9, Top: 12}),
			text.New(vatLabel(doc.Buyer.VATID), props.Text{Size: 9, Top: 16}),
		),
	)

	// Line table
	m.AddRow(8,
		text.NewCol(1, "ID", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "VAT %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Net amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range doc.Lines {
		m.AddRow(7,
			text.NewCol(1, item.ID, props.Text{Size: 9}),
			text.NewCol(4, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatAmount(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, money.FormatRate(item.VATRate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money.FormatAmount(item.NetAmount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))

	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Total net", props.Text{Size: 9}),
		text.NewCol(2, amount(doc, doc.Totals.LineTotal), props.Text{Size: 9, Align: align.Right}),
	)
	for _, entry := range doc.VATBreakdown {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, fmt.Sprintf("VAT %s %s%%", entry.Category, money.FormatRate(entry.Rate)), props.Text{Size: 9}),
			text.NewCol(2, amount(doc, entry.TaxAmount), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, amount(doc, doc.Totals.GrandTotal), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	if !doc.Totals.PrepaidAmount.IsZero() {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, "Prepaid", props.Text{Size: 9}),
			text.NewCol(2, amount(doc, doc.Totals.PrepaidAmount), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Amount due", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, amount(doc, doc.Totals.PayableAmount), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if doc.PaymentTerms != "" {
		m.AddRow(10, text.NewCol(12, doc.PaymentTerms, props.Text{Size: 8, Top: 4}))
	}

	legal := doc.Seller.Name
	if doc.Seller.LegalID != "" {
		legal += " | SIREN: " + doc.Seller.LegalID
	}
	if doc.Seller.VATID != "" {
		legal += " | VAT: " + doc.Seller.VATID
	}
	m.AddRow(10, text.NewCol(12, legal, props.Text{Size: 7, Top: 4}))
	m.AddRow(6, text.NewCol(12,
		"Cette facture est conforme au standard Factur-X / This invoice complies with the Factur-X standard",
		props.Text{Size: 7}))

	result, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return result.GetBytes(), nil
}

func vatLabel(vatID string) string {
	if vatID == "" {
		return ""
	}
	return "VAT: " + vatID
}

func amount(doc *model.InvoiceDocument, v dec.Decimal) string {
	return money.FormatAmount(v) + " " + doc.Currency
}
