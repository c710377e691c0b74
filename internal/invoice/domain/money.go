package domain

import "github.com/shopspring/decimal"

// RoundMoney rounds to two fractional digits, half away from zero. Every
// computed amount passes through here before it is stored or summed so
// accumulated rounding never drifts below cent precision.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TwoPlaces reports whether d carries at most two fractional digits.
func TwoPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// ComputeItemAmounts fills Subtotal, Tax and Total from the item's quantity,
// unit price and tax rate (a percentage). Each boundary rounds to two
// places before the next computation uses the result.
func ComputeItemAmounts(item *InvoiceItem) {
	item.Subtotal = RoundMoney(item.Quantity.Mul(item.UnitPrice))
	item.Tax = RoundMoney(item.Subtotal.Mul(item.TaxRate).Div(decimal.NewFromInt(100)))
	item.Total = item.Subtotal.Add(item.Tax)
}
