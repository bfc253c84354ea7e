// Package cii maps invoice documents to and from UN/CEFACT
// Cross-Industry-Invoice XML (EN 16931 subset, Factur-X profile).
package cii

import (
	"github.com/beevik/etree"

	money "github.com/rezonia/facturx-engine/internal/decimal"
	"github.com/rezonia/facturx-engine/internal/model"
)

// CII namespace set
const (
	NSRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NSQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
	NSRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NSUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
	NSXSI = "http://www.w3.org/2001/XMLSchema-instance"
)

// GuidelineID names the EN 16931 compliant Factur-X profile
const GuidelineID = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic"

// dateFormat102 is CII date format code 102 (CCYYMMDD)
const dateFormat102 = "20060102"

// Serializer produces deterministic CII XML: the same document always yields
// byte-identical output. No timestamps, line items in stored order,
// vat breakdown in its stable (category, rate) order.
type Serializer struct{}

// NewSerializer creates a new CII serializer
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Serialize maps the document to CII XML bytes. Returns SerializationError
// for a VAT category outside the supported enumeration or a currency outside
// the supported set.
func (s *Serializer) Serialize(doc *model.InvoiceDocument) ([]byte, error) {
	if !model.CurrencySupported(doc.Currency) {
		return nil, model.NewSerializationError("currency", doc.Currency, "currency not in the supported set")
	}
	for _, l := range doc.Lines {
		if !l.VATCategory.Valid() {
			return nil, model.NewSerializationError("vat_category", string(l.VATCategory), "vat category not in the supported enumeration")
		}
	}
	for _, e := range doc.VATBreakdown {
		if !e.Category.Valid() {
			return nil, model.NewSerializationError("vat_category", string(e.Category), "vat category not in the supported enumeration")
		}
	}

	x := etree.NewDocument()
	x.WriteSettings.CanonicalEndTags = true
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := x.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", NSRSM)
	root.CreateAttr("xmlns:qdt", NSQDT)
	root.CreateAttr("xmlns:ram", NSRAM)
	root.CreateAttr("xmlns:udt", NSUDT)
	root.CreateAttr("xmlns:xsi", NSXSI)

	s.addExchangeContext(root)
	s.addExchangedDocument(root, doc)
	s.addTradeTransaction(root, doc)

	x.Indent(2)
	return x.WriteToBytes()
}

func (s *Serializer) addExchangeContext(root *etree.Element) {
	context := root.CreateElement("rsm:ExchangedDocumentContext")

	process := context.CreateElement("ram:BusinessProcessSpecifiedDocumentContextParameter")
	process.CreateElement("ram:ID").SetText("A1")

	guideline := context.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	guideline.CreateElement("ram:ID").SetText(GuidelineID)
}

func (s *Serializer) addExchangedDocument(root *etree.Element, doc *model.InvoiceDocument) {
	document := root.CreateElement("rsm:ExchangedDocument")
	document.CreateElement("ram:ID").SetText(doc.Number)
	document.CreateElement("ram:TypeCode").SetText(string(doc.Type))

	issue := document.CreateElement("ram:IssueDateTime")
	dt := issue.CreateElement("udt:DateTimeString")
	dt.CreateAttr("format", "102")
	dt.SetText(doc.IssueDate.Format(dateFormat102))

	if doc.Note != "" {
		note := document.CreateElement("ram:IncludedNote")
		note.CreateElement("ram:Content").SetText(doc.Note)
	}
}

func (s *Serializer) addTradeTransaction(root *etree.Element, doc *model.InvoiceDocument) {
	transaction := root.CreateElement("rsm:SupplyChainTradeTransaction")

	for _, line := range doc.Lines {
		s.addLineItem(transaction, doc, &line)
	}
	s.addTradeAgreement(transaction, doc)
	s.addTradeDelivery(transaction, doc)
	s.addTradeSettlement(transaction, doc)
}

func (s *Serializer) addLineItem(transaction *etree.Element, doc *model.InvoiceDocument, line *model.LineItem) {
	item := transaction.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	docLine := item.CreateElement("ram:AssociatedDocumentLineDocument")
	docLine.CreateElement("ram:LineID").SetText(line.ID)

	product := item.CreateElement("ram:SpecifiedTradeProduct")
	product.CreateElement("ram:Name").SetText(line.Description)

	agreement := item.CreateElement("ram:SpecifiedLineTradeAgreement")
	price := agreement.CreateElement("ram:NetPriceProductTradePrice")
	charge := price.CreateElement("ram:ChargeAmount")
	charge.CreateAttr("currencyID", doc.Currency)
	charge.SetText(money.FormatAmount(line.UnitPrice))

	delivery := item.CreateElement("ram:SpecifiedLineTradeDelivery")
	qty := delivery.CreateElement("ram:BilledQuantity")
	qty.CreateAttr("unitCode", line.UnitCode)
	qty.SetText(line.Quantity.String())

	settlement := item.CreateElement("ram:SpecifiedLineTradeSettlement")

	tax := settlement.CreateElement("ram:ApplicableTradeTax")
	tax.CreateElement("ram:TypeCode").SetText("VAT")
	tax.CreateElement("ram:CategoryCode").SetText(string(line.VATCategory))
	tax.CreateElement("ram:RateApplicablePercent").SetText(money.FormatRate(line.VATRate))

	summation := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	total := summation.CreateElement("ram:LineTotalAmount")
	total.CreateAttr("currencyID", doc.Currency)
	total.SetText(money.FormatAmount(line.NetAmount))
}

func (s *Serializer) addTradeAgreement(transaction *etree.Element, doc *model.InvoiceDocument) {
	agreement := transaction.CreateElement("ram:ApplicableHeaderTradeAgreement")

	if doc.OrderReference != "" {
		agreement.CreateElement("ram:BuyerReference").SetText(doc.OrderReference)
	}

	seller := agreement.CreateElement("ram:SellerTradeParty")
	s.addTradeParty(seller, &doc.Seller)

	buyer := agreement.CreateElement("ram:BuyerTradeParty")
	s.addTradeParty(buyer, &doc.Buyer)

	if doc.ContractReference != "" {
		contract := agreement.CreateElement("ram:ContractReferencedDocument")
		contract.CreateElement("ram:IssuerAssignedID").SetText(doc.ContractReference)
	}
}

func (s *Serializer) addTradeParty(el *etree.Element, p *model.Party) {
	el.CreateElement("ram:Name").SetText(p.Name)

	if p.LegalID != "" {
		legal := el.CreateElement("ram:SpecifiedLegalOrganization")
		legal.CreateElement("ram:ID").SetText(p.LegalID)
	}

	addr := el.CreateElement("ram:PostalTradeAddress")
	if p.Address.PostalCode != "" {
		addr.CreateElement("ram:PostcodeCode").SetText(p.Address.PostalCode)
	}
	if p.Address.Street != "" {
		addr.CreateElement("ram:LineOne").SetText(p.Address.Street)
	}
	if p.Address.City != "" {
		addr.CreateElement("ram:CityName").SetText(p.Address.City)
	}
	if p.Address.Country != "" {
		addr.CreateElement("ram:CountryID").SetText(p.Address.Country)
	}

	if p.ContactEmail != "" {
		comm := el.CreateElement("ram:URIUniversalCommunication")
		uri := comm.CreateElement("ram:URIID")
		uri.CreateAttr("schemeID", "EM")
		uri.SetText(p.ContactEmail)
	}

	if p.VATID != "" {
		reg := el.CreateElement("ram:SpecifiedTaxRegistration")
		id := reg.CreateElement("ram:ID")
		id.CreateAttr("schemeID", "VA")
		id.SetText(p.VATID)
	}
}

func (s *Serializer) addTradeDelivery(transaction *etree.Element, doc *model.InvoiceDocument) {
	delivery := transaction.CreateElement("ram:ApplicableHeaderTradeDelivery")

	event := delivery.CreateElement("ram:ActualDeliverySupplyChainEvent")
	occurrence := event.CreateElement("ram:OccurrenceDateTime")
	dt := occurrence.CreateElement("udt:DateTimeString")
	dt.CreateAttr("format", "102")
	dt.SetText(doc.IssueDate.Format(dateFormat102))
}

func (s *Serializer) addTradeSettlement(transaction *etree.Element, doc *model.InvoiceDocument) {
	settlement := transaction.CreateElement("ram:ApplicableHeaderTradeSettlement")
	settlement.CreateElement("ram:InvoiceCurrencyCode").SetText(doc.Currency)

	for _, entry := range doc.VATBreakdown {
		tax := settlement.CreateElement("ram:ApplicableTradeTax")

		calculated := tax.CreateElement("ram:CalculatedAmount")
		calculated.CreateAttr("currencyID", doc.Currency)
		calculated.SetText(money.FormatAmount(entry.TaxAmount))

		tax.CreateElement("ram:TypeCode").SetText("VAT")

		basis := tax.CreateElement("ram:BasisAmount")
		basis.CreateAttr("currencyID", doc.Currency)
		basis.SetText(money.FormatAmount(entry.TaxableAmount))

		tax.CreateElement("ram:CategoryCode").SetText(string(entry.Category))
		tax.CreateElement("ram:RateApplicablePercent").SetText(money.FormatRate(entry.Rate))
	}

	if doc.PaymentTerms != "" || doc.DueDate != nil {
		terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
		if doc.PaymentTerms != "" {
			terms.CreateElement("ram:Description").SetText(doc.PaymentTerms)
		}
		if doc.DueDate != nil {
			due := terms.CreateElement("ram:DueDateDateTime")
			dt := due.CreateElement("udt:DateTimeString")
			dt.CreateAttr("format", "102")
			dt.SetText(doc.DueDate.Format(dateFormat102))
		}
	}

	summation := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")

	lineTotal := summation.CreateElement("ram:LineTotalAmount")
	lineTotal.CreateAttr("currencyID", doc.Currency)
	lineTotal.SetText(money.FormatAmount(doc.Totals.LineTotal))

	taxBasis := summation.CreateElement("ram:TaxBasisTotalAmount")
	taxBasis.CreateAttr("currencyID", doc.Currency)
	taxBasis.SetText(money.FormatAmount(doc.Totals.LineTotal))

	taxTotal := summation.CreateElement("ram:TaxTotalAmount")
	taxTotal.CreateAttr("currencyID", doc.Currency)
	taxTotal.SetText(money.FormatAmount(doc.Totals.TaxTotal))

	grand := summation.CreateElement("ram:GrandTotalAmount")
	grand.CreateAttr("currencyID", doc.Currency)
	grand.SetText(money.FormatAmount(doc.Totals.GrandTotal))

	if !doc.Totals.PrepaidAmount.IsZero() {
		prepaid := summation.CreateElement("ram:TotalPrepaidAmount")
		prepaid.CreateAttr("currencyID", doc.Currency)
		prepaid.SetText(money.FormatAmount(doc.Totals.PrepaidAmount))
	}

	payable := summation.CreateElement("ram:DuePayableAmount")
	payable.CreateAttr("currencyID", doc.Currency)
	payable.SetText(money.FormatAmount(doc.Totals.PayableAmount))
}
