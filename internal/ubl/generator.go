package ubl

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
)

const (
	NamespaceInvoice    = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceCreditNote = "urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"
	NamespaceOrder      = "urn:oasis:names:specification:ubl:schema:xsd:Order-2"
	NamespaceCAC        = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceCBC        = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	// PEPPOL BIS Billing 3.0
	BillingCustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
	BillingProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
	// PEPPOL BIS Order only 3
	OrderCustomizationID = "urn:fdc:peppol.eu:poacc:trns:order:3"
	OrderProfileID       = "urn:fdc:peppol.eu:poacc:bis:order_only:3"

	InvoiceTypeCommercial    = "380"
	CreditNoteTypeCommercial = "381"
	OrderTypeStandard        = "220"
)

// Namespace returns the default namespace of the UBL root element for t.
func (t DocumentType) Namespace() string {
	switch t {
	case TypeInvoice:
		return NamespaceInvoice
	case TypeCreditNote:
		return NamespaceCreditNote
	case TypeOrder:
		return NamespaceOrder
	}
	return ""
}

// Attachment is a binary document embedded as cac:AdditionalDocumentReference.
type Attachment struct {
	ID          string
	Description string
	MimeCode    string
	Filename    string
	Content     []byte
}

type Option func(*options)

type options struct {
	attachments []Attachment
}

// WithAttachment embeds a base64 encoded copy of a.Content in the document.
func WithAttachment(a Attachment) Option {
	return func(o *options) { o.attachments = append(o.attachments, a) }
}

// Generate dispatches on the concrete document type.
func Generate(doc Document, opts ...Option) (string, error) {
	switch d := doc.(type) {
	case *InvoiceData:
		return GenerateInvoice(d, opts...)
	case *CreditNoteData:
		return GenerateCreditNote(d, opts...)
	case *OrderData:
		return GenerateOrder(d, opts...)
	}
	return "", fmt.Errorf("ubl: unsupported document %T", doc)
}

func GenerateInvoice(d *InvoiceData, opts ...Option) (string, error) {
	o := applyOptions(opts)
	cur := d.CurrencyCode
	doc := xmlInvoice{
		Xmlns:                       NamespaceInvoice,
		Cac:                         NamespaceCAC,
		Cbc:                         NamespaceCBC,
		CustomizationID:             BillingCustomizationID,
		ProfileID:                   BillingProfileID,
		ID:                          d.ID,
		IssueDate:                   d.IssueDate,
		DueDate:                     d.DueDate,
		InvoiceTypeCode:             orDefault(d.InvoiceTypeCode, InvoiceTypeCommercial),
		Note:                        d.Note,
		DocumentCurrencyCode:        cur,
		BuyerReference:              d.BuyerReference,
		OrderReference:              buildReference(d.OrderReference),
		AdditionalDocumentReference: buildAttachments(o.attachments),
		SupplierParty:               xmlPartyWrapper{Party: buildParty(d.Supplier)},
		CustomerParty:               xmlPartyWrapper{Party: buildParty(d.Customer)},
		PaymentMeans:                buildPaymentMeans(d.PaymentMeans),
		PaymentTerms:                buildPaymentTerms(d.PaymentTerms),
		AllowanceCharges:            buildAllowanceCharges(d.AllowanceCharges, cur),
		TaxTotal:                    buildTaxTotal(d.TaxTotal, d.Lines, d.AllowanceCharges, cur),
		LegalMonetaryTotal:          buildMonetaryTotal(d.LegalMonetaryTotal, cur),
	}
	for _, line := range d.Lines {
		doc.Lines = append(doc.Lines, xmlInvoiceLine{
			ID:                  line.ID,
			Note:                line.Note,
			InvoicedQuantity:    NewQuantity(line.Quantity, line.UnitCode),
			LineExtensionAmount: NewAmount(line.LineExtensionAmount, cur),
			Item:                buildItem(line),
			Price:               buildPrice(line, cur),
		})
	}
	return marshal(doc)
}

func GenerateCreditNote(d *CreditNoteData, opts ...Option) (string, error) {
	o := applyOptions(opts)
	cur := d.CurrencyCode
	doc := xmlCreditNote{
		Xmlns:                       NamespaceCreditNote,
		Cac:                         NamespaceCAC,
		Cbc:                         NamespaceCBC,
		CustomizationID:             BillingCustomizationID,
		ProfileID:                   BillingProfileID,
		ID:                          d.ID,
		IssueDate:                   d.IssueDate,
		CreditNoteTypeCode:          orDefault(d.CreditNoteTypeCode, CreditNoteTypeCommercial),
		Note:                        d.Note,
		DocumentCurrencyCode:        cur,
		BuyerReference:              d.BuyerReference,
		OrderReference:              buildReference(d.OrderReference),
		AdditionalDocumentReference: buildAttachments(o.attachments),
		SupplierParty:               xmlPartyWrapper{Party: buildParty(d.Supplier)},
		CustomerParty:               xmlPartyWrapper{Party: buildParty(d.Customer)},
		PaymentMeans:                buildPaymentMeans(d.PaymentMeans),
		PaymentTerms:                buildPaymentTerms(d.PaymentTerms),
		AllowanceCharges:            buildAllowanceCharges(d.AllowanceCharges, cur),
		TaxTotal:                    buildTaxTotal(d.TaxTotal, d.Lines, d.AllowanceCharges, cur),
		LegalMonetaryTotal:          buildMonetaryTotal(d.LegalMonetaryTotal, cur),
	}
	if d.BillingReference != "" {
		doc.BillingReference = &xmlBillingReference{
			InvoiceDocumentReference: xmlReference{ID: d.BillingReference},
		}
	}
	for _, line := range d.Lines {
		doc.Lines = append(doc.Lines, xmlCreditNoteLine{
			ID:                  line.ID,
			Note:                line.Note,
			CreditedQuantity:    NewQuantity(line.Quantity, line.UnitCode),
			LineExtensionAmount: NewAmount(line.LineExtensionAmount, cur),
			Item:                buildItem(line),
			Price:               buildPrice(line, cur),
		})
	}
	return marshal(doc)
}

func GenerateOrder(d *OrderData, opts ...Option) (string, error) {
	o := applyOptions(opts)
	cur := d.CurrencyCode
	doc := xmlOrder{
		Xmlns:                       NamespaceOrder,
		Cac:                         NamespaceCAC,
		Cbc:                         NamespaceCBC,
		CustomizationID:             OrderCustomizationID,
		ProfileID:                   OrderProfileID,
		ID:                          d.ID,
		IssueDate:                   d.IssueDate,
		OrderTypeCode:               orDefault(d.OrderTypeCode, OrderTypeStandard),
		Note:                        d.Note,
		DocumentCurrencyCode:        cur,
		CustomerReference:           d.BuyerReference,
		AdditionalDocumentReference: buildAttachments(o.attachments),
		BuyerCustomerParty:          xmlPartyWrapper{Party: buildParty(d.Buyer)},
		SellerSupplierParty:         xmlPartyWrapper{Party: buildParty(d.Seller)},
		AllowanceCharges:            buildAllowanceCharges(d.AllowanceCharges, cur),
		TaxTotal:                    buildTaxTotal(d.TaxTotal, d.Lines, d.AllowanceCharges, cur),
		AnticipatedMonetaryTotal:    buildMonetaryTotal(d.AnticipatedMonetaryTotal, cur),
	}
	if d.DeliveryAddress != nil || d.RequestedDeliveryDate != "" {
		doc.Delivery = &xmlDelivery{}
		if d.DeliveryAddress != nil {
			doc.Delivery.DeliveryLocation = &xmlDeliveryLocation{Address: buildAddress(*d.DeliveryAddress)}
		}
		if d.RequestedDeliveryDate != "" {
			doc.Delivery.RequestedDeliveryPeriod = &xmlPeriod{StartDate: d.RequestedDeliveryDate}
		}
	}
	for _, line := range d.Lines {
		doc.Lines = append(doc.Lines, xmlOrderLine{LineItem: xmlOrderLineItem{
			ID:                  line.ID,
			Note:                line.Note,
			Quantity:            NewQuantity(line.Quantity, line.UnitCode),
			LineExtensionAmount: NewAmount(line.LineExtensionAmount, cur),
			Price:               buildPrice(line, cur),
			Item:                buildItem(line),
		}})
	}
	return marshal(doc)
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func marshal(v any) (string, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ubl: marshal: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func buildReference(id string) *xmlReference {
	if id == "" {
		return nil
	}
	return &xmlReference{ID: id}
}

func buildAttachments(attachments []Attachment) []xmlDocumentReference {
	refs := make([]xmlDocumentReference, 0, len(attachments))
	for _, a := range attachments {
		refs = append(refs, xmlDocumentReference{
			ID:                  a.ID,
			DocumentDescription: a.Description,
			Attachment: &xmlAttachment{EmbeddedDocumentBinaryObject: xmlBinaryObject{
				MimeCode: a.MimeCode,
				Filename: a.Filename,
				Value:    base64.StdEncoding.EncodeToString(a.Content),
			}},
		})
	}
	return refs
}

func buildAddress(a Address) xmlPostalAddress {
	return xmlPostalAddress{
		StreetName:           a.StreetName,
		AdditionalStreetName: a.AdditionalStreetName,
		CityName:             a.CityName,
		PostalZone:           a.PostalZone,
		CountrySubentity:     a.CountrySubentity,
		Country:              xmlCountry{IdentificationCode: a.CountryCode},
	}
}

func buildParty(p Party) xmlParty {
	party := xmlParty{
		PostalAddress: buildAddress(p.PostalAddress),
		PartyLegalEntity: xmlPartyLegalEntity{
			RegistrationName: orDefault(p.RegistrationName, p.Name),
			CompanyID:        p.CompanyID,
		},
	}
	if p.EndpointID != nil {
		party.EndpointID = &xmlIdentifier{SchemeID: p.EndpointID.SchemeID, Value: p.EndpointID.Value}
	}
	if p.Name != "" {
		party.PartyName = &xmlPartyName{Name: p.Name}
	}
	if p.VATNumber != "" {
		party.PartyTaxScheme = &xmlPartyTaxScheme{
			CompanyID: p.VATNumber,
			TaxScheme: xmlTaxScheme{ID: DefaultTaxScheme},
		}
	}
	if p.Contact != nil && (p.Contact.Name != "" || p.Contact.Telephone != "" || p.Contact.Email != "") {
		party.Contact = &xmlContact{
			Name:           p.Contact.Name,
			Telephone:      p.Contact.Telephone,
			ElectronicMail: p.Contact.Email,
		}
	}
	return party
}

func buildPaymentMeans(pm *PaymentMeans) *xmlPaymentMeans {
	if pm == nil {
		return nil
	}
	out := &xmlPaymentMeans{PaymentMeansCode: pm.Code, PaymentID: pm.PaymentID}
	if pm.IBAN != "" {
		out.PayeeFinancialAccount = &xmlFinancialAccount{ID: pm.IBAN, Name: pm.AccountName}
		if pm.BIC != "" {
			out.PayeeFinancialAccount.FinancialInstitutionBranch = &xmlBranch{ID: pm.BIC}
		}
	}
	return out
}

func buildPaymentTerms(note string) *xmlPaymentTerms {
	if note == "" {
		return nil
	}
	return &xmlPaymentTerms{Note: note}
}

func buildTaxCategory(c TaxCategory) xmlTaxCategory {
	cat := xmlTaxCategory{
		ID:                     c.ID,
		TaxExemptionReasonCode: c.ExemptionReasonCode,
		TaxExemptionReason:     c.ExemptionReason,
		TaxScheme:              xmlTaxScheme{ID: taxSchemeOf(c)},
	}
	// category O ("not subject to VAT") carries no rate
	if c.ID != CategoryNotSubject {
		cat.Percent = c.Percent.StringFixed(2)
	}
	return cat
}

func buildAllowanceCharges(adjustments []AllowanceCharge, cur string) []xmlAllowanceCharge {
	out := make([]xmlAllowanceCharge, 0, len(adjustments))
	for _, ac := range adjustments {
		x := xmlAllowanceCharge{
			ChargeIndicator:           ac.ChargeIndicator,
			AllowanceChargeReasonCode: ac.ReasonCode,
			AllowanceChargeReason:     ac.Reason,
			Amount:                    NewAmount(ac.Amount, cur),
			TaxCategory:               buildTaxCategory(ac.TaxCategory),
		}
		if ac.BaseAmount != nil {
			base := NewAmount(*ac.BaseAmount, cur)
			x.BaseAmount = &base
		}
		out = append(out, x)
	}
	return out
}

func buildTaxTotal(t TaxTotal, lines []LineItem, adjustments []AllowanceCharge, cur string) xmlTaxTotal {
	subtotals := t.Subtotals
	if len(subtotals) == 0 {
		subtotals = DeriveDocumentTaxSubtotals(lines, adjustments)
	}
	out := xmlTaxTotal{TaxAmount: NewAmount(t.TaxAmount, cur)}
	for _, s := range subtotals {
		out.Subtotals = append(out.Subtotals, xmlTaxSubtotal{
			TaxableAmount: NewAmount(s.TaxableAmount, cur),
			TaxAmount:     NewAmount(s.TaxAmount, cur),
			TaxCategory:   buildTaxCategory(s.TaxCategory),
		})
	}
	return out
}

func buildMonetaryTotal(m MonetaryTotal, cur string) xmlMonetaryTotal {
	out := xmlMonetaryTotal{
		LineExtensionAmount: NewAmount(m.LineExtensionAmount, cur),
		TaxExclusiveAmount:  NewAmount(m.TaxExclusiveAmount, cur),
		TaxInclusiveAmount:  NewAmount(m.TaxInclusiveAmount, cur),
		PayableAmount:       NewAmount(m.PayableAmount, cur),
	}
	if m.AllowanceTotalAmount != nil {
		a := NewAmount(*m.AllowanceTotalAmount, cur)
		out.AllowanceTotalAmount = &a
	}
	if m.ChargeTotalAmount != nil {
		a := NewAmount(*m.ChargeTotalAmount, cur)
		out.ChargeTotalAmount = &a
	}
	if m.PrepaidAmount != nil {
		a := NewAmount(*m.PrepaidAmount, cur)
		out.PrepaidAmount = &a
	}
	if m.PayableRoundingAmount != nil {
		a := NewAmount(*m.PayableRoundingAmount, cur)
		out.PayableRoundingAmount = &a
	}
	return out
}

func buildItem(line LineItem) xmlItem {
	item := xmlItem{
		Description:           line.Description,
		Name:                  line.Name,
		ClassifiedTaxCategory: buildTaxCategory(line.TaxCategory),
	}
	if line.SellersItemID != "" {
		item.SellersItemIdentification = &xmlReference{ID: line.SellersItemID}
	}
	return item
}

func buildPrice(line LineItem, cur string) xmlPrice {
	price := xmlPrice{PriceAmount: newPriceAmount(line.UnitPrice, cur)}
	if line.BaseQuantity != nil {
		q := NewQuantity(*line.BaseQuantity, line.UnitCode)
		price.BaseQuantity = &q
	}
	return price
}

// ── XML shapes ───────────────────────────────────────────────────────────────
// Field order follows the UBL 2.1 XSD sequences.

type xmlInvoice struct {
	XMLName                     xml.Name               `xml:"Invoice"`
	Xmlns                       string                 `xml:"xmlns,attr"`
	Cac                         string                 `xml:"xmlns:cac,attr"`
	Cbc                         string                 `xml:"xmlns:cbc,attr"`
	CustomizationID             string                 `xml:"cbc:CustomizationID"`
	ProfileID                   string                 `xml:"cbc:ProfileID"`
	ID                          string                 `xml:"cbc:ID"`
	IssueDate                   string                 `xml:"cbc:IssueDate"`
	DueDate                     string                 `xml:"cbc:DueDate,omitempty"`
	InvoiceTypeCode             string                 `xml:"cbc:InvoiceTypeCode"`
	Note                        string                 `xml:"cbc:Note,omitempty"`
	DocumentCurrencyCode        string                 `xml:"cbc:DocumentCurrencyCode"`
	BuyerReference              string                 `xml:"cbc:BuyerReference,omitempty"`
	OrderReference              *xmlReference          `xml:"cac:OrderReference,omitempty"`
	AdditionalDocumentReference []xmlDocumentReference `xml:"cac:AdditionalDocumentReference,omitempty"`
	SupplierParty               xmlPartyWrapper        `xml:"cac:AccountingSupplierParty"`
	CustomerParty               xmlPartyWrapper        `xml:"cac:AccountingCustomerParty"`
	PaymentMeans                *xmlPaymentMeans       `xml:"cac:PaymentMeans,omitempty"`
	PaymentTerms                *xmlPaymentTerms       `xml:"cac:PaymentTerms,omitempty"`
	AllowanceCharges            []xmlAllowanceCharge   `xml:"cac:AllowanceCharge,omitempty"`
	TaxTotal                    xmlTaxTotal            `xml:"cac:TaxTotal"`
	LegalMonetaryTotal          xmlMonetaryTotal       `xml:"cac:LegalMonetaryTotal"`
	Lines                       []xmlInvoiceLine       `xml:"cac:InvoiceLine"`
}

type xmlCreditNote struct {
	XMLName                     xml.Name               `xml:"CreditNote"`
	Xmlns                       string                 `xml:"xmlns,attr"`
	Cac                         string                 `xml:"xmlns:cac,attr"`
	Cbc                         string                 `xml:"xmlns:cbc,attr"`
	CustomizationID             string                 `xml:"cbc:CustomizationID"`
	ProfileID                   string                 `xml:"cbc:ProfileID"`
	ID                          string                 `xml:"cbc:ID"`
	IssueDate                   string                 `xml:"cbc:IssueDate"`
	CreditNoteTypeCode          string                 `xml:"cbc:CreditNoteTypeCode"`
	Note                        string                 `xml:"cbc:Note,omitempty"`
	DocumentCurrencyCode        string                 `xml:"cbc:DocumentCurrencyCode"`
	BuyerReference              string                 `xml:"cbc:BuyerReference,omitempty"`
	OrderReference              *xmlReference          `xml:"cac:OrderReference,omitempty"`
	BillingReference            *xmlBillingReference   `xml:"cac:BillingReference,omitempty"`
	AdditionalDocumentReference []xmlDocumentReference `xml:"cac:AdditionalDocumentReference,omitempty"`
	SupplierParty               xmlPartyWrapper        `xml:"cac:AccountingSupplierParty"`
	CustomerParty               xmlPartyWrapper        `xml:"cac:AccountingCustomerParty"`
	PaymentMeans                *xmlPaymentMeans       `xml:"cac:PaymentMeans,omitempty"`
	PaymentTerms                *xmlPaymentTerms       `xml:"cac:PaymentTerms,omitempty"`
	AllowanceCharges            []xmlAllowanceCharge   `xml:"cac:AllowanceCharge,omitempty"`
	TaxTotal                    xmlTaxTotal            `xml:"cac:TaxTotal"`
	LegalMonetaryTotal          xmlMonetaryTotal       `xml:"cac:LegalMonetaryTotal"`
	Lines                       []xmlCreditNoteLine    `xml:"cac:CreditNoteLine"`
}

type xmlOrder struct {
	XMLName                     xml.Name               `xml:"Order"`
	Xmlns                       string                 `xml:"xmlns,attr"`
	Cac                         string                 `xml:"xmlns:cac,attr"`
	Cbc                         string                 `xml:"xmlns:cbc,attr"`
	CustomizationID             string                 `xml:"cbc:CustomizationID"`
	ProfileID                   string                 `xml:"cbc:ProfileID"`
	ID                          string                 `xml:"cbc:ID"`
	IssueDate                   string                 `xml:"cbc:IssueDate"`
	OrderTypeCode               string                 `xml:"cbc:OrderTypeCode"`
	Note                        string                 `xml:"cbc:Note,omitempty"`
	DocumentCurrencyCode        string                 `xml:"cbc:DocumentCurrencyCode"`
	CustomerReference           string                 `xml:"cbc:CustomerReference,omitempty"`
	AdditionalDocumentReference []xmlDocumentReference `xml:"cac:AdditionalDocumentReference,omitempty"`
	BuyerCustomerParty          xmlPartyWrapper        `xml:"cac:BuyerCustomerParty"`
	SellerSupplierParty         xmlPartyWrapper        `xml:"cac:SellerSupplierParty"`
	Delivery                    *xmlDelivery           `xml:"cac:Delivery,omitempty"`
	AllowanceCharges            []xmlAllowanceCharge   `xml:"cac:AllowanceCharge,omitempty"`
	TaxTotal                    xmlTaxTotal            `xml:"cac:TaxTotal"`
	AnticipatedMonetaryTotal    xmlMonetaryTotal       `xml:"cac:AnticipatedMonetaryTotal"`
	Lines                       []xmlOrderLine         `xml:"cac:OrderLine"`
}

type xmlReference struct {
	ID string `xml:"cbc:ID"`
}

type xmlBillingReference struct {
	InvoiceDocumentReference xmlReference `xml:"cac:InvoiceDocumentReference"`
}

type xmlDocumentReference struct {
	ID                  string         `xml:"cbc:ID"`
	DocumentDescription string         `xml:"cbc:DocumentDescription,omitempty"`
	Attachment          *xmlAttachment `xml:"cac:Attachment,omitempty"`
}

type xmlAttachment struct {
	EmbeddedDocumentBinaryObject xmlBinaryObject `xml:"cbc:EmbeddedDocumentBinaryObject"`
}

type xmlBinaryObject struct {
	MimeCode string `xml:"mimeCode,attr"`
	Filename string `xml:"filename,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type xmlPartyWrapper struct {
	Party xmlParty `xml:"cac:Party"`
}

type xmlParty struct {
	EndpointID       *xmlIdentifier      `xml:"cbc:EndpointID,omitempty"`
	PartyName        *xmlPartyName       `xml:"cac:PartyName,omitempty"`
	PostalAddress    xmlPostalAddress    `xml:"cac:PostalAddress"`
	PartyTaxScheme   *xmlPartyTaxScheme  `xml:"cac:PartyTaxScheme,omitempty"`
	PartyLegalEntity xmlPartyLegalEntity `xml:"cac:PartyLegalEntity"`
	Contact          *xmlContact         `xml:"cac:Contact,omitempty"`
}

type xmlIdentifier struct {
	SchemeID string `xml:"schemeID,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type xmlPartyName struct {
	Name string `xml:"cbc:Name"`
}

type xmlPostalAddress struct {
	StreetName           string     `xml:"cbc:StreetName,omitempty"`
	AdditionalStreetName string     `xml:"cbc:AdditionalStreetName,omitempty"`
	CityName             string     `xml:"cbc:CityName,omitempty"`
	PostalZone           string     `xml:"cbc:PostalZone,omitempty"`
	CountrySubentity     string     `xml:"cbc:CountrySubentity,omitempty"`
	Country              xmlCountry `xml:"cac:Country"`
}

type xmlCountry struct {
	IdentificationCode string `xml:"cbc:IdentificationCode"`
}

type xmlPartyTaxScheme struct {
	CompanyID string       `xml:"cbc:CompanyID"`
	TaxScheme xmlTaxScheme `xml:"cac:TaxScheme"`
}

type xmlTaxScheme struct {
	ID string `xml:"cbc:ID"`
}

type xmlPartyLegalEntity struct {
	RegistrationName string `xml:"cbc:RegistrationName"`
	CompanyID        string `xml:"cbc:CompanyID,omitempty"`
}

type xmlContact struct {
	Name           string `xml:"cbc:Name,omitempty"`
	Telephone      string `xml:"cbc:Telephone,omitempty"`
	ElectronicMail string `xml:"cbc:ElectronicMail,omitempty"`
}

type xmlPaymentMeans struct {
	PaymentMeansCode      string               `xml:"cbc:PaymentMeansCode"`
	PaymentID             string               `xml:"cbc:PaymentID,omitempty"`
	PayeeFinancialAccount *xmlFinancialAccount `xml:"cac:PayeeFinancialAccount,omitempty"`
}

type xmlFinancialAccount struct {
	ID                         string     `xml:"cbc:ID"`
	Name                       string     `xml:"cbc:Name,omitempty"`
	FinancialInstitutionBranch *xmlBranch `xml:"cac:FinancialInstitutionBranch,omitempty"`
}

type xmlBranch struct {
	ID string `xml:"cbc:ID"`
}

type xmlPaymentTerms struct {
	Note string `xml:"cbc:Note"`
}

type xmlDelivery struct {
	DeliveryLocation        *xmlDeliveryLocation `xml:"cac:DeliveryLocation,omitempty"`
	RequestedDeliveryPeriod *xmlPeriod           `xml:"cac:RequestedDeliveryPeriod,omitempty"`
}

type xmlDeliveryLocation struct {
	Address xmlPostalAddress `xml:"cac:Address"`
}

type xmlPeriod struct {
	StartDate string `xml:"cbc:StartDate"`
}

type xmlAllowanceCharge struct {
	ChargeIndicator           bool           `xml:"cbc:ChargeIndicator"`
	AllowanceChargeReasonCode string         `xml:"cbc:AllowanceChargeReasonCode,omitempty"`
	AllowanceChargeReason     string         `xml:"cbc:AllowanceChargeReason,omitempty"`
	Amount                    Amount         `xml:"cbc:Amount"`
	BaseAmount                *Amount        `xml:"cbc:BaseAmount,omitempty"`
	TaxCategory               xmlTaxCategory `xml:"cac:TaxCategory"`
}

type xmlTaxTotal struct {
	TaxAmount Amount           `xml:"cbc:TaxAmount"`
	Subtotals []xmlTaxSubtotal `xml:"cac:TaxSubtotal"`
}

type xmlTaxSubtotal struct {
	TaxableAmount Amount         `xml:"cbc:TaxableAmount"`
	TaxAmount     Amount         `xml:"cbc:TaxAmount"`
	TaxCategory   xmlTaxCategory `xml:"cac:TaxCategory"`
}

type xmlTaxCategory struct {
	ID                     string       `xml:"cbc:ID"`
	Percent                string       `xml:"cbc:Percent,omitempty"`
	TaxExemptionReasonCode string       `xml:"cbc:TaxExemptionReasonCode,omitempty"`
	TaxExemptionReason     string       `xml:"cbc:TaxExemptionReason,omitempty"`
	TaxScheme              xmlTaxScheme `xml:"cac:TaxScheme"`
}

type xmlMonetaryTotal struct {
	LineExtensionAmount   Amount  `xml:"cbc:LineExtensionAmount"`
	TaxExclusiveAmount    Amount  `xml:"cbc:TaxExclusiveAmount"`
	TaxInclusiveAmount    Amount  `xml:"cbc:TaxInclusiveAmount"`
	AllowanceTotalAmount  *Amount `xml:"cbc:AllowanceTotalAmount,omitempty"`
	ChargeTotalAmount     *Amount `xml:"cbc:ChargeTotalAmount,omitempty"`
	PrepaidAmount         *Amount `xml:"cbc:PrepaidAmount,omitempty"`
	PayableRoundingAmount *Amount `xml:"cbc:PayableRoundingAmount,omitempty"`
	PayableAmount         Amount  `xml:"cbc:PayableAmount"`
}

type xmlInvoiceLine struct {
	ID                  string   `xml:"cbc:ID"`
	Note                string   `xml:"cbc:Note,omitempty"`
	InvoicedQuantity    Quantity `xml:"cbc:InvoicedQuantity"`
	LineExtensionAmount Amount   `xml:"cbc:LineExtensionAmount"`
	Item                xmlItem  `xml:"cac:Item"`
	Price               xmlPrice `xml:"cac:Price"`
}

type xmlCreditNoteLine struct {
	ID                  string   `xml:"cbc:ID"`
	Note                string   `xml:"cbc:Note,omitempty"`
	CreditedQuantity    Quantity `xml:"cbc:CreditedQuantity"`
	LineExtensionAmount Amount   `xml:"cbc:LineExtensionAmount"`
	Item                xmlItem  `xml:"cac:Item"`
	Price               xmlPrice `xml:"cac:Price"`
}

type xmlOrderLine struct {
	LineItem xmlOrderLineItem `xml:"cac:LineItem"`
}

type xmlOrderLineItem struct {
	ID                  string   `xml:"cbc:ID"`
	Note                string   `xml:"cbc:Note,omitempty"`
	Quantity            Quantity `xml:"cbc:Quantity"`
	LineExtensionAmount Amount   `xml:"cbc:LineExtensionAmount"`
	Price               xmlPrice `xml:"cac:Price"`
	Item                xmlItem  `xml:"cac:Item"`
}

type xmlItem struct {
	Description               string         `xml:"cbc:Description,omitempty"`
	Name                      string         `xml:"cbc:Name"`
	SellersItemIdentification *xmlReference  `xml:"cac:SellersItemIdentification,omitempty"`
	ClassifiedTaxCategory     xmlTaxCategory `xml:"cac:ClassifiedTaxCategory"`
}

type xmlPrice struct {
	PriceAmount  Amount    `xml:"cbc:PriceAmount"`
	BaseQuantity *Quantity `xml:"cbc:BaseQuantity,omitempty"`
}
