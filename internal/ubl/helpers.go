package ubl

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	DefaultTaxScheme = "VAT"
	// DefaultUnitCode is UN/ECE Recommendation 20 "one".
	DefaultUnitCode = "C62"

	CategoryStandard       = "S"
	CategoryZeroRated      = "Z"
	CategoryExempt         = "E"
	CategoryReverseCharge  = "AE"
	CategoryIntraCommunity = "K"
	CategoryExport         = "G"
	CategoryNotSubject     = "O"

	// peppolActorScheme prefixes participant identifiers in SMP lookups.
	peppolActorScheme = "iso6523-actorid-upis::"
)

var hundred = decimal.NewFromInt(100)

// Amount is a currency-tagged monetary value as it appears in UBL.
type Amount struct {
	CurrencyID string `xml:"currencyID,attr"`
	Value      string `xml:",chardata"`
}

// NewAmount renders v with two decimals tagged with currency.
func NewAmount(v decimal.Decimal, currency string) Amount {
	return Amount{CurrencyID: currency, Value: v.StringFixed(2)}
}

// newPriceAmount keeps extra precision on unit prices, which PEPPOL allows.
func newPriceAmount(v decimal.Decimal, currency string) Amount {
	if v.Equal(Round(v)) {
		return NewAmount(v, currency)
	}
	return Amount{CurrencyID: currency, Value: v.String()}
}

// Quantity is a UBL quantity with its unit code attribute.
type Quantity struct {
	UnitCode string `xml:"unitCode,attr"`
	Value    string `xml:",chardata"`
}

// NewQuantity falls back to DefaultUnitCode when unitCode is empty.
func NewQuantity(q decimal.Decimal, unitCode string) Quantity {
	if unitCode == "" {
		unitCode = DefaultUnitCode
	}
	return Quantity{UnitCode: unitCode, Value: q.String()}
}

// Round rounds to the two decimals UBL monetary amounts carry.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmount is round2(quantity × unitPrice / baseQuantity).
func LineAmount(quantity, unitPrice decimal.Decimal, baseQuantity *decimal.Decimal) decimal.Decimal {
	amount := quantity.Mul(unitPrice)
	if baseQuantity != nil && !baseQuantity.IsZero() {
		amount = amount.Div(*baseQuantity)
	}
	return Round(amount)
}

// TaxAmount is round2(taxable × percent / 100).
func TaxAmount(taxable, percent decimal.Decimal) decimal.Decimal {
	return Round(taxable.Mul(percent).Div(hundred))
}

func NewAddress(street, city, postalZone, countryCode string) Address {
	return Address{
		StreetName:  street,
		CityName:    city,
		PostalZone:  postalZone,
		CountryCode: strings.ToUpper(countryCode),
	}
}

// NewParty builds a party whose legal registration name equals its trading name.
func NewParty(name, vatNumber string, addr Address) Party {
	return Party{
		Name:             name,
		RegistrationName: name,
		VATNumber:        vatNumber,
		PostalAddress:    addr,
	}
}

func NewTaxCategory(id string, percent decimal.Decimal) TaxCategory {
	return TaxCategory{ID: id, Percent: percent, TaxScheme: DefaultTaxScheme}
}

func StandardRated(percent decimal.Decimal) TaxCategory {
	return NewTaxCategory(CategoryStandard, percent)
}

// NewLine builds a line whose extension amount is derived from quantity and price.
func NewLine(id, name string, quantity, unitPrice decimal.Decimal, category TaxCategory) LineItem {
	return LineItem{
		ID:                  id,
		Quantity:            quantity,
		UnitCode:            DefaultUnitCode,
		UnitPrice:           unitPrice,
		LineExtensionAmount: LineAmount(quantity, unitPrice, nil),
		Name:                name,
		TaxCategory:         category,
	}
}

func taxSchemeOf(c TaxCategory) string {
	if c.TaxScheme == "" {
		return DefaultTaxScheme
	}
	return c.TaxScheme
}

// categoryKey identifies a VAT breakdown group; String() drops trailing zeros
// so 21 and 21.00 land in the same group.
func categoryKey(c TaxCategory) string {
	return taxSchemeOf(c) + ":" + c.ID + ":" + c.Percent.String()
}

// DeriveTaxSubtotals groups lines by tax category and rate, in order of first
// appearance, and computes the tax per group.
func DeriveTaxSubtotals(lines []LineItem) []TaxSubtotal {
	return DeriveDocumentTaxSubtotals(lines, nil)
}

// DeriveDocumentTaxSubtotals is DeriveTaxSubtotals with document level
// allowances subtracted from and charges added to the base of their category.
func DeriveDocumentTaxSubtotals(lines []LineItem, adjustments []AllowanceCharge) []TaxSubtotal {
	var subtotals []TaxSubtotal
	index := make(map[string]int)
	add := func(c TaxCategory, amount decimal.Decimal) {
		key := categoryKey(c)
		i, ok := index[key]
		if !ok {
			i = len(subtotals)
			index[key] = i
			subtotals = append(subtotals, TaxSubtotal{TaxCategory: c})
		}
		subtotals[i].TaxableAmount = subtotals[i].TaxableAmount.Add(amount)
	}
	for _, line := range lines {
		add(line.TaxCategory, line.LineExtensionAmount)
	}
	for _, ac := range adjustments {
		if ac.ChargeIndicator {
			add(ac.TaxCategory, ac.Amount)
		} else {
			add(ac.TaxCategory, ac.Amount.Neg())
		}
	}
	for i := range subtotals {
		subtotals[i].TaxAmount = TaxAmount(subtotals[i].TaxableAmount, subtotals[i].TaxCategory.Percent)
	}
	return subtotals
}

// SumLines adds up the line extension amounts.
func SumLines(lines []LineItem) decimal.Decimal {
	return lo.Reduce(lines, func(acc decimal.Decimal, l LineItem, _ int) decimal.Decimal {
		return acc.Add(l.LineExtensionAmount)
	}, decimal.Zero)
}

// SumAllowanceCharges returns the allowance and charge totals of adjustments.
func SumAllowanceCharges(adjustments []AllowanceCharge) (allowances, charges decimal.Decimal) {
	for _, ac := range adjustments {
		if ac.ChargeIndicator {
			charges = charges.Add(ac.Amount)
		} else {
			allowances = allowances.Add(ac.Amount)
		}
	}
	return allowances, charges
}

// ComputeTotals builds a reconciled tax total and monetary total for lines
// without document level allowances, charges or prepayments.
func ComputeTotals(lines []LineItem) (TaxTotal, MonetaryTotal) {
	return ComputeDocumentTotals(lines, nil)
}

// ComputeDocumentTotals builds reconciled totals for lines and document level
// allowances and charges. The allowance and charge totals are only set when
// adjustments of that kind exist.
func ComputeDocumentTotals(lines []LineItem, adjustments []AllowanceCharge) (TaxTotal, MonetaryTotal) {
	subtotals := DeriveDocumentTaxSubtotals(lines, adjustments)
	tax := lo.Reduce(subtotals, func(acc decimal.Decimal, s TaxSubtotal, _ int) decimal.Decimal {
		return acc.Add(s.TaxAmount)
	}, decimal.Zero)
	allowances, charges := SumAllowanceCharges(adjustments)
	net := SumLines(lines)
	exclusive := net.Sub(allowances).Add(charges)
	totals := MonetaryTotal{
		LineExtensionAmount: net,
		TaxExclusiveAmount:  exclusive,
		TaxInclusiveAmount:  exclusive.Add(tax),
		PayableAmount:       exclusive.Add(tax),
	}
	if lo.ContainsBy(adjustments, func(ac AllowanceCharge) bool { return !ac.ChargeIndicator }) {
		totals.AllowanceTotalAmount = &allowances
	}
	if lo.ContainsBy(adjustments, func(ac AllowanceCharge) bool { return ac.ChargeIndicator }) {
		totals.ChargeTotalAmount = &charges
	}
	return TaxTotal{TaxAmount: tax, Subtotals: subtotals}, totals
}

// SplitPeppolIdentifier parses "0208:0123456789" (optionally prefixed with
// the iso6523-actorid-upis scheme) into an EndpointID.
func SplitPeppolIdentifier(s string) (EndpointID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), peppolActorScheme)
	scheme, value, ok := strings.Cut(s, ":")
	if !ok || scheme == "" || value == "" {
		return EndpointID{}, fmt.Errorf("ubl: invalid PEPPOL identifier %q", s)
	}
	for _, r := range scheme {
		if r < '0' || r > '9' {
			return EndpointID{}, fmt.Errorf("ubl: invalid PEPPOL scheme %q", scheme)
		}
	}
	return EndpointID{SchemeID: scheme, Value: value}, nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
