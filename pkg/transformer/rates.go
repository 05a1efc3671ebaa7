package transformer

import "github.com/shopspring/decimal"

// Converter normalizes amounts into the pipeline's reference currency using
// a static, injectable rate table. It is stateless and idempotent.
type Converter struct {
	reference string
	rates     map[string]decimal.Decimal
}

// NewConverter builds a converter for the given reference currency. The
// reference currency itself always converts 1:1, whatever the table says.
func NewConverter(reference string, rates map[string]decimal.Decimal) *Converter {
	table := make(map[string]decimal.Decimal, len(rates)+1)
	for currency, rate := range rates {
		table[currency] = rate
	}
	table[reference] = decimal.NewFromInt(1)
	return &Converter{reference: reference, rates: table}
}

// Reference returns the reference currency code.
func (c *Converter) Reference() string {
	return c.reference
}

// Rate returns the table rate for a currency. Unknown currencies fall back
// to 1:1; known reports whether the currency was actually in the table so
// the caller can surface a data-quality warning.
func (c *Converter) Rate(currency string) (rate decimal.Decimal, known bool) {
	if rate, ok := c.rates[currency]; ok {
		return rate, true
	}
	return decimal.NewFromInt(1), false
}

// ToReference converts amount into the reference currency, rounded to cents
// with round-half-away-from-zero semantics.
func (c *Converter) ToReference(amount decimal.Decimal, currency string) (converted, rate decimal.Decimal, known bool) {
	rate, known = c.Rate(currency)
	return amount.Mul(rate).Round(2), rate, known
}
