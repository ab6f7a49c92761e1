// Package ubl turns the JSON document model (invoice, credit note, order) into
// PEPPOL BIS 3 flavoured UBL 2.1 XML and validates both sides of that transform:
// the input model before generation and the produced XML afterwards.
//
// Generation is a pure, deterministic function of its input. Validation never
// mutates the model and never adjusts amounts; it only reports.
package ubl

import (
	"github.com/shopspring/decimal"
)

// DocumentType selects the UBL root element.
type DocumentType string

const (
	TypeInvoice    DocumentType = "invoice"
	TypeCreditNote DocumentType = "credit_note"
	TypeOrder      DocumentType = "order"
)

// Valid reports whether t is one of the supported document types.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeInvoice, TypeCreditNote, TypeOrder:
		return true
	}
	return false
}

// RootElement is the local name of the UBL root element for t.
func (t DocumentType) RootElement() string {
	switch t {
	case TypeInvoice:
		return "Invoice"
	case TypeCreditNote:
		return "CreditNote"
	case TypeOrder:
		return "Order"
	}
	return ""
}

// Document is implemented by InvoiceData, CreditNoteData and OrderData.
type Document interface {
	DocumentType() DocumentType
	DocumentID() string
}

type Address struct {
	StreetName           string `json:"streetName"`
	AdditionalStreetName string `json:"additionalStreetName,omitempty"`
	CityName             string `json:"cityName"`
	PostalZone           string `json:"postalZone"`
	CountrySubentity     string `json:"countrySubentity,omitempty"`
	CountryCode          string `json:"countryCode"`
}

// EndpointID is the PEPPOL electronic address of a party (BT-34 / BT-49).
type EndpointID struct {
	SchemeID string `json:"schemeId"`
	Value    string `json:"value"`
}

type Contact struct {
	Name      string `json:"name,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	Email     string `json:"email,omitempty"`
}

type Party struct {
	EndpointID       *EndpointID `json:"endpointId,omitempty"`
	Name             string      `json:"name"`
	RegistrationName string      `json:"registrationName,omitempty"`
	CompanyID        string      `json:"companyId,omitempty"`
	VATNumber        string      `json:"vatNumber,omitempty"`
	PostalAddress    Address     `json:"postalAddress"`
	Contact          *Contact    `json:"contact,omitempty"`
}

// TaxCategory is a UNCL5305 category with its rate. TaxScheme defaults to VAT.
type TaxCategory struct {
	ID                  string          `json:"id"`
	Percent             decimal.Decimal `json:"percent"`
	TaxScheme           string          `json:"taxScheme,omitempty"`
	ExemptionReasonCode string          `json:"exemptionReasonCode,omitempty"`
	ExemptionReason     string          `json:"exemptionReason,omitempty"`
}

type LineItem struct {
	ID                  string           `json:"id"`
	Note                string           `json:"note,omitempty"`
	Quantity            decimal.Decimal  `json:"quantity"`
	UnitCode            string           `json:"unitCode,omitempty"`
	UnitPrice           decimal.Decimal  `json:"unitPrice"`
	BaseQuantity        *decimal.Decimal `json:"baseQuantity,omitempty"`
	LineExtensionAmount decimal.Decimal  `json:"lineExtensionAmount"`
	Name                string           `json:"name"`
	Description         string           `json:"description,omitempty"`
	SellersItemID       string           `json:"sellersItemId,omitempty"`
	TaxCategory         TaxCategory      `json:"taxCategory"`
}

type TaxSubtotal struct {
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TaxCategory   TaxCategory     `json:"taxCategory"`
}

type TaxTotal struct {
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Subtotals []TaxSubtotal   `json:"taxSubtotals,omitempty"`
}

// MonetaryTotal is the LegalMonetaryTotal of invoices and credit notes and the
// AnticipatedMonetaryTotal of orders.
type MonetaryTotal struct {
	LineExtensionAmount   decimal.Decimal  `json:"lineExtensionAmount"`
	TaxExclusiveAmount    decimal.Decimal  `json:"taxExclusiveAmount"`
	TaxInclusiveAmount    decimal.Decimal  `json:"taxInclusiveAmount"`
	AllowanceTotalAmount  *decimal.Decimal `json:"allowanceTotalAmount,omitempty"`
	ChargeTotalAmount     *decimal.Decimal `json:"chargeTotalAmount,omitempty"`
	PrepaidAmount         *decimal.Decimal `json:"prepaidAmount,omitempty"`
	PayableRoundingAmount *decimal.Decimal `json:"payableRoundingAmount,omitempty"`
	PayableAmount         decimal.Decimal  `json:"payableAmount"`
}

// PaymentMeans carries UNCL4461 code 30/58 credit transfer details.
type PaymentMeans struct {
	Code        string `json:"code"`
	PaymentID   string `json:"paymentId,omitempty"`
	IBAN        string `json:"iban,omitempty"`
	BIC         string `json:"bic,omitempty"`
	AccountName string `json:"accountName,omitempty"`
}

// AllowanceCharge is a document level allowance (ChargeIndicator false) or
// charge (true). Its amount moves the tax base of its category.
type AllowanceCharge struct {
	ChargeIndicator bool             `json:"chargeIndicator"`
	ReasonCode      string           `json:"reasonCode,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	BaseAmount      *decimal.Decimal `json:"baseAmount,omitempty"`
	TaxCategory     TaxCategory      `json:"taxCategory"`
}

// Header holds the fields every document type shares.
type Header struct {
	ID             string `json:"id"`
	IssueDate      string `json:"issueDate"`
	CurrencyCode   string `json:"currencyCode"`
	Note           string `json:"note,omitempty"`
	BuyerReference string `json:"buyerReference,omitempty"`
}

type InvoiceData struct {
	Header
	DueDate            string            `json:"dueDate,omitempty"`
	InvoiceTypeCode    string            `json:"invoiceTypeCode,omitempty"`
	OrderReference     string            `json:"orderReference,omitempty"`
	Supplier           Party             `json:"accountingSupplierParty"`
	Customer           Party             `json:"accountingCustomerParty"`
	PaymentMeans       *PaymentMeans     `json:"paymentMeans,omitempty"`
	PaymentTerms       string            `json:"paymentTerms,omitempty"`
	AllowanceCharges   []AllowanceCharge `json:"allowanceCharges,omitempty"`
	Lines              []LineItem        `json:"invoiceLines"`
	TaxTotal           TaxTotal          `json:"taxTotal"`
	LegalMonetaryTotal MonetaryTotal     `json:"legalMonetaryTotal"`
}

func (d *InvoiceData) DocumentType() DocumentType { return TypeInvoice }
func (d *InvoiceData) DocumentID() string         { return d.ID }

type CreditNoteData struct {
	Header
	CreditNoteTypeCode string            `json:"creditNoteTypeCode,omitempty"`
	OrderReference     string            `json:"orderReference,omitempty"`
	BillingReference   string            `json:"billingReference,omitempty"`
	Supplier           Party             `json:"accountingSupplierParty"`
	Customer           Party             `json:"accountingCustomerParty"`
	PaymentMeans       *PaymentMeans     `json:"paymentMeans,omitempty"`
	PaymentTerms       string            `json:"paymentTerms,omitempty"`
	AllowanceCharges   []AllowanceCharge `json:"allowanceCharges,omitempty"`
	Lines              []LineItem        `json:"creditNoteLines"`
	TaxTotal           TaxTotal          `json:"taxTotal"`
	LegalMonetaryTotal MonetaryTotal     `json:"legalMonetaryTotal"`
}

func (d *CreditNoteData) DocumentType() DocumentType { return TypeCreditNote }
func (d *CreditNoteData) DocumentID() string         { return d.ID }

type OrderData struct {
	Header
	OrderTypeCode            string            `json:"orderTypeCode,omitempty"`
	Buyer                    Party             `json:"buyerCustomerParty"`
	Seller                   Party             `json:"sellerSupplierParty"`
	DeliveryAddress          *Address          `json:"deliveryAddress,omitempty"`
	RequestedDeliveryDate    string            `json:"requestedDeliveryDate,omitempty"`
	AllowanceCharges         []AllowanceCharge `json:"allowanceCharges,omitempty"`
	Lines                    []LineItem        `json:"orderLines"`
	TaxTotal                 TaxTotal          `json:"taxTotal"`
	AnticipatedMonetaryTotal MonetaryTotal     `json:"anticipatedMonetaryTotal"`
}

func (d *OrderData) DocumentType() DocumentType { return TypeOrder }
func (d *OrderData) DocumentID() string         { return d.ID }
