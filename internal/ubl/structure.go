package ubl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type structureRules struct {
	typeCode string
	supplier string
	customer string
	total    string
	line     string
}

var rulesByType = map[DocumentType]structureRules{
	TypeInvoice: {
		typeCode: "InvoiceTypeCode",
		supplier: "AccountingSupplierParty",
		customer: "AccountingCustomerParty",
		total:    "LegalMonetaryTotal",
		line:     "InvoiceLine",
	},
	TypeCreditNote: {
		typeCode: "CreditNoteTypeCode",
		supplier: "AccountingSupplierParty",
		customer: "AccountingCustomerParty",
		total:    "LegalMonetaryTotal",
		line:     "CreditNoteLine",
	},
	TypeOrder: {
		typeCode: "OrderTypeCode",
		supplier: "SellerSupplierParty",
		customer: "BuyerCustomerParty",
		total:    "AnticipatedMonetaryTotal",
		line:     "OrderLine",
	},
}

// xmlScan is what a single pass over the token stream collects. Paths are
// slash-joined local names below the root element.
type xmlScan struct {
	root      xml.Name
	present   map[string]bool
	text      map[string]string
	currency  []currencyAttr
	lineCount map[string]int
}

type currencyAttr struct {
	path  string
	value string
}

// ValidateXMLStructure checks generated XML against the mandatory skeleton of
// document type t. A failure here points at the generator, not the caller.
func ValidateXMLStructure(doc string, t DocumentType) Result {
	r := &report{}
	rules, ok := rulesByType[t]
	if !ok {
		r.errorf("unsupported document type %q", t)
		return r.result()
	}
	scan, err := scanXML(doc)
	if err != nil {
		r.errorf("XML is not well-formed: %v", err)
		return r.result()
	}

	if scan.root.Local != t.RootElement() {
		r.errorf("root element is %q, expected %q", scan.root.Local, t.RootElement())
	}
	if scan.root.Space != t.Namespace() {
		r.errorf("root namespace is %q, expected %q", scan.root.Space, t.Namespace())
	}

	for _, leaf := range []string{"CustomizationID", "ProfileID", "ID", "IssueDate", rules.typeCode, "DocumentCurrencyCode"} {
		if !scan.present[leaf] {
			r.errorf("missing mandatory element %s", leaf)
		} else if scan.text[leaf] == "" {
			r.errorf("mandatory element %s is empty", leaf)
		}
	}
	for _, party := range []string{rules.supplier, rules.customer} {
		if !scan.present[party+"/Party"] {
			r.errorf("missing mandatory element %s/Party", party)
			continue
		}
		if !scan.present[party+"/Party/EndpointID"] {
			r.warnf("%s has no EndpointID", party)
		}
	}
	if !scan.present["TaxTotal/TaxAmount"] {
		r.errorf("missing mandatory element TaxTotal/TaxAmount")
	}
	if !scan.present[rules.total+"/PayableAmount"] {
		r.errorf("missing mandatory element %s/PayableAmount", rules.total)
	}
	if scan.lineCount[rules.line] == 0 {
		r.errorf("document has no %s", rules.line)
	}
	if t == TypeInvoice && !scan.present["DueDate"] {
		r.warnf("DueDate is missing")
	}

	if currency := scan.text["DocumentCurrencyCode"]; currency != "" {
		for _, c := range scan.currency {
			if c.value != currency {
				r.errorf("%s currencyID %q does not match DocumentCurrencyCode %q", c.path, c.value, currency)
			}
		}
	}
	return r.result()
}

func scanXML(doc string) (*xmlScan, error) {
	scan := &xmlScan{
		present:   make(map[string]bool),
		text:      make(map[string]string),
		lineCount: make(map[string]int),
	}
	dec := xml.NewDecoder(strings.NewReader(doc))
	var stack []string
	var chars strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			chars.Reset()
			if scan.root.Local == "" {
				scan.root = el.Name
				stack = append(stack, "")
				continue
			}
			if len(stack) == 0 {
				return nil, errors.New("multiple root elements")
			}
			stack = append(stack, el.Name.Local)
			path := strings.Join(stack[1:], "/")
			scan.present[path] = true
			if len(stack) == 2 {
				scan.lineCount[el.Name.Local]++
			}
			for _, attr := range el.Attr {
				if attr.Name.Local == "currencyID" {
					scan.currency = append(scan.currency, currencyAttr{path: path, value: attr.Value})
				}
			}
		case xml.CharData:
			chars.Write(el)
		case xml.EndElement:
			if len(stack) > 1 {
				path := strings.Join(stack[1:], "/")
				if _, seen := scan.text[path]; !seen {
					scan.text[path] = strings.TrimSpace(chars.String())
				}
			}
			chars.Reset()
			stack = stack[:len(stack)-1]
		}
	}
	if scan.root.Local == "" {
		return nil, errors.New("document has no root element")
	}
	return scan, nil
}

// ExtractDocumentID returns the top-level cbc:ID of a UBL document.
func ExtractDocumentID(doc string) (string, error) {
	scan, err := scanXML(doc)
	if err != nil {
		return "", fmt.Errorf("XML is not well-formed: %w", err)
	}
	id := scan.text["ID"]
	if id == "" {
		return "", errors.New("document has no ID")
	}
	return id, nil
}
