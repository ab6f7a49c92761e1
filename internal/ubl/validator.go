package ubl

import (
	"fmt"
	"regexp"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	countryPattern  = regexp.MustCompile(`^[A-Z]{2}$`)
	typeCodePattern = regexp.MustCompile(`^[0-9]{3}$`)
)

// Result is the outcome of a validation pass. Errors block generation,
// warnings are advisory. Both slices are never nil so they encode as [].
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type report struct {
	errs  []string
	warns []string
}

func (r *report) errorf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func (r *report) warnf(format string, args ...any) {
	r.warns = append(r.warns, fmt.Sprintf(format, args...))
}

func (r *report) result() Result {
	res := Result{Errors: []string{}, Warnings: []string{}}
	if len(r.errs) > 0 {
		res.Errors = lo.Uniq(r.errs)
	}
	if len(r.warns) > 0 {
		res.Warnings = lo.Uniq(r.warns)
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// Validate dispatches on the concrete document type.
func Validate(doc Document) Result {
	switch d := doc.(type) {
	case *InvoiceData:
		return ValidateInvoiceData(d)
	case *CreditNoteData:
		return ValidateCreditNoteData(d)
	case *OrderData:
		return ValidateOrderData(d)
	}
	r := &report{}
	r.errorf("unsupported document %T", doc)
	return r.result()
}

func ValidateInvoiceData(d *InvoiceData) Result {
	r := &report{}
	if d == nil {
		r.errorf("document data is required")
		return r.result()
	}
	issue := checkHeader(r, d.Header)
	checkTypeCode(r, "invoiceTypeCode", d.InvoiceTypeCode)
	if d.DueDate == "" {
		r.warnf("dueDate is missing")
	} else if due, ok := parseDate(r, "dueDate", d.DueDate); ok && !issue.IsZero() && due.Before(issue) {
		r.errorf("dueDate %s is before issueDate %s", d.DueDate, d.IssueDate)
	}
	checkParty(r, "accountingSupplierParty", d.Supplier, true)
	checkParty(r, "accountingCustomerParty", d.Customer, false)
	checkPaymentMeans(r, d.PaymentMeans)
	checkLines(r, d.Lines)
	checkTotals(r, d.Lines, d.AllowanceCharges, d.TaxTotal, d.LegalMonetaryTotal, "legalMonetaryTotal")
	return r.result()
}

func ValidateCreditNoteData(d *CreditNoteData) Result {
	r := &report{}
	if d == nil {
		r.errorf("document data is required")
		return r.result()
	}
	checkHeader(r, d.Header)
	checkTypeCode(r, "creditNoteTypeCode", d.CreditNoteTypeCode)
	if d.BillingReference == "" {
		r.warnf("billingReference is missing; the credited invoice cannot be identified")
	}
	checkParty(r, "accountingSupplierParty", d.Supplier, true)
	checkParty(r, "accountingCustomerParty", d.Customer, false)
	checkPaymentMeans(r, d.PaymentMeans)
	checkLines(r, d.Lines)
	checkTotals(r, d.Lines, d.AllowanceCharges, d.TaxTotal, d.LegalMonetaryTotal, "legalMonetaryTotal")
	return r.result()
}

func ValidateOrderData(d *OrderData) Result {
	r := &report{}
	if d == nil {
		r.errorf("document data is required")
		return r.result()
	}
	issue := checkHeader(r, d.Header)
	checkTypeCode(r, "orderTypeCode", d.OrderTypeCode)
	if d.RequestedDeliveryDate != "" {
		if at, ok := parseDate(r, "requestedDeliveryDate", d.RequestedDeliveryDate); ok && !issue.IsZero() && at.Before(issue) {
			r.errorf("requestedDeliveryDate %s is before issueDate %s", d.RequestedDeliveryDate, d.IssueDate)
		}
	}
	checkParty(r, "buyerCustomerParty", d.Buyer, false)
	checkParty(r, "sellerSupplierParty", d.Seller, true)
	if d.DeliveryAddress != nil {
		checkAddress(r, "deliveryAddress", *d.DeliveryAddress)
	}
	checkLines(r, d.Lines)
	checkTotals(r, d.Lines, d.AllowanceCharges, d.TaxTotal, d.AnticipatedMonetaryTotal, "anticipatedMonetaryTotal")
	return r.result()
}

// checkHeader returns the parsed issue date, or the zero time when invalid.
func checkHeader(r *report, h Header) time.Time {
	if h.ID == "" {
		r.errorf("document id is required")
	}
	var issue time.Time
	if h.IssueDate == "" {
		r.errorf("issueDate is required")
	} else if t, ok := parseDate(r, "issueDate", h.IssueDate); ok {
		issue = t
	}
	switch {
	case h.CurrencyCode == "":
		r.errorf("currencyCode is required")
	case !currencyPattern.MatchString(h.CurrencyCode):
		r.errorf("currencyCode %q is not an ISO 4217 code", h.CurrencyCode)
	}
	if h.BuyerReference == "" {
		r.warnf("buyerReference is missing")
	}
	return issue
}

func parseDate(r *report, field, value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		r.errorf("%s %q is not a valid date (YYYY-MM-DD)", field, value)
		return time.Time{}, false
	}
	return t, true
}

func checkTypeCode(r *report, field, code string) {
	if code != "" && !typeCodePattern.MatchString(code) {
		r.errorf("%s %q must be a three digit UNCL1001 code", field, code)
	}
}

func checkAddress(r *report, field string, a Address) {
	if a.StreetName == "" {
		r.errorf("%s.streetName is required", field)
	}
	if a.CityName == "" {
		r.errorf("%s.cityName is required", field)
	}
	if a.PostalZone == "" {
		r.errorf("%s.postalZone is required", field)
	}
	switch {
	case a.CountryCode == "":
		r.errorf("%s.countryCode is required", field)
	case !countryPattern.MatchString(a.CountryCode):
		r.errorf("%s.countryCode %q must be a two-letter ISO 3166 code", field, a.CountryCode)
	}
}

func checkParty(r *report, role string, p Party, seller bool) {
	if p.Name == "" && p.RegistrationName == "" {
		r.errorf("%s.name is required", role)
	}
	checkAddress(r, role+".postalAddress", p.PostalAddress)
	if p.EndpointID == nil || p.EndpointID.SchemeID == "" || p.EndpointID.Value == "" {
		r.warnf("%s.endpointId is missing; PEPPOL routing needs an electronic address", role)
	}
	if seller && p.VATNumber == "" {
		r.warnf("%s.vatNumber is missing", role)
	}
}

func checkPaymentMeans(r *report, pm *PaymentMeans) {
	if pm != nil && pm.Code == "" {
		r.errorf("paymentMeans.code is required when paymentMeans is present")
	}
}

func checkLines(r *report, lines []LineItem) {
	if len(lines) == 0 {
		r.errorf("at least one line item is required")
		return
	}
	seen := make(map[string]bool, len(lines))
	for i, line := range lines {
		label := fmt.Sprintf("line %d", i+1)
		if line.ID == "" {
			r.errorf("%s: id is required", label)
		} else {
			if seen[line.ID] {
				r.errorf("%s: id %q is duplicated", label, line.ID)
			}
			seen[line.ID] = true
			label = fmt.Sprintf("line %q", line.ID)
		}
		if line.Name == "" {
			r.errorf("%s: name is required", label)
		}
		if line.Quantity.IsZero() {
			r.errorf("%s: quantity must be non-zero", label)
		}
		if line.UnitCode == "" {
			r.warnf("%s: unitCode is missing, %s will be used", label, DefaultUnitCode)
		}
		if line.BaseQuantity != nil && !line.BaseQuantity.IsPositive() {
			r.errorf("%s: baseQuantity must be positive", label)
		}
		checkCategory(r, label+": taxCategory", line.TaxCategory)
		checkPrecision(r, label+": lineExtensionAmount", line.LineExtensionAmount)
		expected := LineAmount(line.Quantity, line.UnitPrice, line.BaseQuantity)
		if !line.LineExtensionAmount.Equal(expected) {
			r.errorf("%s: line extension amount mismatch: quantity × unitPrice gives %s, got %s",
				label, expected.StringFixed(2), line.LineExtensionAmount.String())
		}
	}
}

func checkCategory(r *report, field string, c TaxCategory) {
	if c.ID == "" {
		r.errorf("%s.id is required", field)
	}
	if c.Percent.IsNegative() {
		r.errorf("%s.percent must not be negative", field)
	}
}

func checkPrecision(r *report, field string, v decimal.Decimal) {
	if !v.Equal(Round(v)) {
		r.errorf("%s %s has more than two decimals", field, v.String())
	}
}

func checkAllowanceCharges(r *report, adjustments []AllowanceCharge) {
	for i, ac := range adjustments {
		field := fmt.Sprintf("allowanceCharges[%d]", i)
		if ac.Reason == "" && ac.ReasonCode == "" {
			r.errorf("%s: reason or reasonCode is required", field)
		}
		if ac.Amount.IsNegative() {
			r.errorf("%s.amount must not be negative", field)
		}
		checkPrecision(r, field+".amount", ac.Amount)
		checkCategory(r, field+".taxCategory", ac.TaxCategory)
	}
}

func checkTotals(r *report, lines []LineItem, adjustments []AllowanceCharge, tax TaxTotal, m MonetaryTotal, name string) {
	allowance := decimalOrZero(m.AllowanceTotalAmount)
	charge := decimalOrZero(m.ChargeTotalAmount)

	checkAllowanceCharges(r, adjustments)
	allowances, charges := SumAllowanceCharges(adjustments)
	if !allowances.Equal(allowance) {
		r.errorf("%s.allowanceTotalAmount mismatch: allowanceCharges sum to %s, got %s",
			name, allowances.String(), allowance.String())
	}
	if !charges.Equal(charge) {
		r.errorf("%s.chargeTotalAmount mismatch: allowanceCharges sum to %s, got %s",
			name, charges.String(), charge.String())
	}
	prepaid := decimalOrZero(m.PrepaidAmount)
	rounding := decimalOrZero(m.PayableRoundingAmount)

	checkPrecision(r, name+".lineExtensionAmount", m.LineExtensionAmount)
	checkPrecision(r, name+".taxExclusiveAmount", m.TaxExclusiveAmount)
	checkPrecision(r, name+".taxInclusiveAmount", m.TaxInclusiveAmount)
	checkPrecision(r, name+".allowanceTotalAmount", allowance)
	checkPrecision(r, name+".chargeTotalAmount", charge)
	checkPrecision(r, name+".prepaidAmount", prepaid)
	checkPrecision(r, name+".payableRoundingAmount", rounding)
	checkPrecision(r, name+".payableAmount", m.PayableAmount)
	checkPrecision(r, "taxTotal.taxAmount", tax.TaxAmount)

	if len(lines) > 0 {
		if sum := SumLines(lines); !sum.Equal(m.LineExtensionAmount) {
			r.errorf("%s line extension amount mismatch: sum of lines is %s, total is %s",
				name, sum.String(), m.LineExtensionAmount.String())
		}
	}

	if expected := m.LineExtensionAmount.Sub(allowance).Add(charge); !expected.Equal(m.TaxExclusiveAmount) {
		r.errorf("%s.taxExclusiveAmount mismatch: expected %s (lineExtensionAmount - allowances + charges), got %s",
			name, expected.String(), m.TaxExclusiveAmount.String())
	}

	if len(tax.Subtotals) == 0 {
		r.warnf("taxTotal.taxSubtotals not supplied; they will be derived from the lines")
		if len(lines) > 0 {
			taxable, taxed := decimal.Zero, decimal.Zero
			for _, s := range DeriveDocumentTaxSubtotals(lines, adjustments) {
				taxable = taxable.Add(s.TaxableAmount)
				taxed = taxed.Add(s.TaxAmount)
			}
			if !taxable.Equal(m.TaxExclusiveAmount) {
				r.errorf("taxable amount mismatch: derived subtotals sum to %s, %s.taxExclusiveAmount is %s",
					taxable.String(), name, m.TaxExclusiveAmount.String())
			}
			if !taxed.Equal(tax.TaxAmount) {
				r.errorf("taxTotal.taxAmount mismatch: tax derived from the lines is %s, got %s",
					taxed.String(), tax.TaxAmount.String())
			}
		}
	} else {
		taxable, taxed := decimal.Zero, decimal.Zero
		for i, s := range tax.Subtotals {
			field := fmt.Sprintf("taxTotal.taxSubtotals[%d]", i)
			checkCategory(r, field+".taxCategory", s.TaxCategory)
			checkPrecision(r, field+".taxableAmount", s.TaxableAmount)
			checkPrecision(r, field+".taxAmount", s.TaxAmount)
			if expected := TaxAmount(s.TaxableAmount, s.TaxCategory.Percent); !expected.Equal(s.TaxAmount) {
				r.warnf("%s.taxAmount %s differs from %s%% of %s (%s)", field,
					s.TaxAmount.String(), s.TaxCategory.Percent.String(), s.TaxableAmount.String(), expected.StringFixed(2))
			}
			taxable = taxable.Add(s.TaxableAmount)
			taxed = taxed.Add(s.TaxAmount)
		}
		if !taxable.Equal(m.TaxExclusiveAmount) {
			r.errorf("taxable amount mismatch: subtotals sum to %s, %s.taxExclusiveAmount is %s",
				taxable.String(), name, m.TaxExclusiveAmount.String())
		}
		if !taxed.Equal(tax.TaxAmount) {
			r.errorf("taxTotal.taxAmount mismatch: subtotals sum to %s, got %s",
				taxed.String(), tax.TaxAmount.String())
		}
	}

	if expected := m.TaxExclusiveAmount.Add(tax.TaxAmount); !expected.Equal(m.TaxInclusiveAmount) {
		r.errorf("%s.taxInclusiveAmount mismatch: taxExclusiveAmount + taxAmount is %s, got %s",
			name, expected.String(), m.TaxInclusiveAmount.String())
	}
	if expected := m.TaxInclusiveAmount.Sub(prepaid).Add(rounding); !expected.Equal(m.PayableAmount) {
		r.errorf("%s.payableAmount mismatch: expected %s, got %s",
			name, expected.String(), m.PayableAmount.String())
	}
}
