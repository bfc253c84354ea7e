package cii

import (
	"fmt"

	"github.com/beevik/etree"
	dec "github.com/shopspring/decimal"
)

// ParsedInvoice is the neutral view of a CII document re-parsed from
// extracted XML. It carries exactly the values the business-rule validator
// needs; absent elements stay at their zero value with presence flags.
type ParsedInvoice struct {
	Guideline     string
	InvoiceNumber string
	TypeCode      string
	IssueDate     string
	Currency      string
	SellerName    string
	BuyerName     string

	Lines        []ParsedLine
	VATBreakdown []ParsedTax

	LineTotal     ParsedAmount
	TaxTotal      ParsedAmount
	GrandTotal    ParsedAmount
	PayableAmount ParsedAmount
}

// ParsedLine is one re-parsed invoice line
type ParsedLine struct {
	LineID    string
	Name      string
	Category  string
	Rate      dec.Decimal
	NetAmount dec.Decimal
}

// ParsedTax is one re-parsed VAT breakdown entry
type ParsedTax struct {
	Category   string
	Rate       dec.Decimal
	Basis      dec.Decimal
	Calculated dec.Decimal
}

// ParsedAmount is a monetary value with a presence flag
type ParsedAmount struct {
	Present bool
	Value   dec.Decimal
}

// Parse re-parses CII XML bytes, typically extracted from a packaged PDF.
// Structural XML errors are returned; missing business elements are not, the
// business-rule validator reports those as findings.
func Parse(data []byte) (*ParsedInvoice, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse CII XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty XML document")
	}
	if root.Tag != "CrossIndustryInvoice" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	inv := &ParsedInvoice{
		Guideline:     elementText(root, "rsm:ExchangedDocumentContext/ram:GuidelineSpecifiedDocumentContextParameter/ram:ID"),
		InvoiceNumber: elementText(root, "rsm:ExchangedDocument/ram:ID"),
		TypeCode:      elementText(root, "rsm:ExchangedDocument/ram:TypeCode"),
		IssueDate:     elementText(root, "rsm:ExchangedDocument/ram:IssueDateTime/udt:DateTimeString"),
	}

	tx := root.FindElement("rsm:SupplyChainTradeTransaction")
	if tx == nil {
		return inv, nil
	}

	inv.SellerName = elementText(tx, "ram:ApplicableHeaderTradeAgreement/ram:SellerTradeParty/ram:Name")
	inv.BuyerName = elementText(tx, "ram:ApplicableHeaderTradeAgreement/ram:BuyerTradeParty/ram:Name")

	for _, item := range tx.FindElements("ram:IncludedSupplyChainTradeLineItem") {
		line := ParsedLine{
			LineID:   elementText(item, "ram:AssociatedDocumentLineDocument/ram:LineID"),
			Name:     elementText(item, "ram:SpecifiedTradeProduct/ram:Name"),
			Category: elementText(item, "ram:SpecifiedLineTradeSettlement/ram:ApplicableTradeTax/ram:CategoryCode"),
		}
		line.Rate = parseDecimal(elementText(item, "ram:SpecifiedLineTradeSettlement/ram:ApplicableTradeTax/ram:RateApplicablePercent"))
		line.NetAmount = parseDecimal(elementText(item, "ram:SpecifiedLineTradeSettlement/ram:SpecifiedTradeSettlementLineMonetarySummation/ram:LineTotalAmount"))
		inv.Lines = append(inv.Lines, line)
	}

	settlement := tx.FindElement("ram:ApplicableHeaderTradeSettlement")
	if settlement == nil {
		return inv, nil
	}

	inv.Currency = elementText(settlement, "ram:InvoiceCurrencyCode")

	for _, tax := range settlement.FindElements("ram:ApplicableTradeTax") {
		inv.VATBreakdown = append(inv.VATBreakdown, ParsedTax{
			Category:   elementText(tax, "ram:CategoryCode"),
			Rate:       parseDecimal(elementText(tax, "ram:RateApplicablePercent")),
			Basis:      parseDecimal(elementText(tax, "ram:BasisAmount")),
			Calculated: parseDecimal(elementText(tax, "ram:CalculatedAmount")),
		})
	}

	summation := settlement.FindElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	if summation != nil {
		inv.LineTotal = parseAmount(summation, "ram:LineTotalAmount")
		inv.TaxTotal = parseAmount(summation, "ram:TaxTotalAmount")
		inv.GrandTotal = parseAmount(summation, "ram:GrandTotalAmount")
		inv.PayableAmount = parseAmount(summation, "ram:DuePayableAmount")
	}

	return inv, nil
}

func elementText(el *etree.Element, path string) string {
	found := el.FindElement(path)
	if found == nil {
		return ""
	}
	return found.Text()
}

func parseDecimal(s string) dec.Decimal {
	if s == "" {
		return dec.Zero
	}
	d, err := dec.NewFromString(s)
	if err != nil {
		return dec.Zero
	}
	return d
}

func parseAmount(el *etree.Element, path string) ParsedAmount {
	found := el.FindElement(path)
	if found == nil {
		return ParsedAmount{}
	}
	return ParsedAmount{Present: true, Value: parseDecimal(found.Text())}
}
