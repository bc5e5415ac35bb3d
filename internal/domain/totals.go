package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the derived money fields of a quote.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Recompute derives subtotal, tax and total from the line items.
// Item totals are taken from quantity and unit price, never from a cached field.
func Recompute(items []LineItem, taxEnabled bool, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.lineTotal())
	}

	tax := decimal.Zero
	if taxEnabled {
		tax = subtotal.Mul(taxRate)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// FormatMoney renders an amount with two decimals, rounding half away from zero.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// TaxRateFromPercent converts a stored percentage (10) into a fractional rate (0.10).
func TaxRateFromPercent(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// TaxRatePercent converts a fractional rate (0.08) into the stored percentage (8).
func TaxRatePercent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}
