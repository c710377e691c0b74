package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestRoundMoneyHalfAwayFromZero(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2.675", "2.68"},
		{"2.674", "2.67"},
		{"0.005", "0.01"},
		{"20.9979", "21.00"},
		{"-2.675", "-2.68"},
	}
	for _, tc := range cases {
		got := RoundMoney(dec(t, tc.in))
		assert.Equal(t, tc.want, got.StringFixed(2), "round(%s)", tc.in)
	}
}

func TestDecimalAdditionIsExact(t *testing.T) {
	// the float64 classic: 0.1 + 0.2 != 0.3
	sum := dec(t, "0.10").Add(dec(t, "0.20"))
	assert.True(t, sum.Equal(dec(t, "0.30")))
}

func TestTwoPlaces(t *testing.T) {
	assert.True(t, TwoPlaces(dec(t, "10")))
	assert.True(t, TwoPlaces(dec(t, "10.50")))
	assert.True(t, TwoPlaces(dec(t, "10.5")))
	assert.False(t, TwoPlaces(dec(t, "10.505")))
	assert.False(t, TwoPlaces(dec(t, "0.001")))
}

func TestComputeItemAmounts(t *testing.T) {
	item := InvoiceItem{
		Quantity:  dec(t, "1"),
		UnitPrice: dec(t, "100.00"),
		TaxRate:   dec(t, "21"),
	}
	ComputeItemAmounts(&item)
	assert.Equal(t, "100.00", item.Subtotal.StringFixed(2))
	assert.Equal(t, "21.00", item.Tax.StringFixed(2))
	assert.Equal(t, "121.00", item.Total.StringFixed(2))
}

func TestComputeItemAmountsRoundsEachBoundary(t *testing.T) {
	// 3 x 33.33 = 99.99; 99.99 * 21% = 20.9979, rounded at the tax boundary
	item := InvoiceItem{
		Quantity:  dec(t, "3"),
		UnitPrice: dec(t, "33.33"),
		TaxRate:   dec(t, "21"),
	}
	ComputeItemAmounts(&item)
	assert.Equal(t, "99.99", item.Subtotal.StringFixed(2))
	assert.Equal(t, "21.00", item.Tax.StringFixed(2))
	assert.Equal(t, "120.99", item.Total.StringFixed(2))
}

func TestComputeItemAmountsFractionalQuantity(t *testing.T) {
	// 2.5 x 19.99 = 49.975, rounded at the subtotal boundary before tax
	item := InvoiceItem{
		Quantity:  dec(t, "2.5"),
		UnitPrice: dec(t, "19.99"),
		TaxRate:   dec(t, "10"),
	}
	ComputeItemAmounts(&item)
	assert.Equal(t, "49.98", item.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", item.Tax.StringFixed(2))
	assert.Equal(t, "54.98", item.Total.StringFixed(2))
}

func TestValidMethod(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCash, PaymentMethodCheck, PaymentMethodOther} {
		assert.True(t, ValidMethod(m))
	}
	assert.False(t, ValidMethod(PaymentMethod("WIRE")))
	assert.False(t, ValidMethod(PaymentMethod("")))
	assert.False(t, ValidMethod(PaymentMethod("transfer")))
}
