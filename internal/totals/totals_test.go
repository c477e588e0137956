package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tallybooks/tally/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(qty, price string) model.LineItem {
	return model.LineItem{Quantity: dec(qty), UnitPrice: dec(price)}
}

func TestCompute(t *testing.T) {
	got := Compute([]model.LineItem{
		line("2", "100.00"),
		line("1", "250.00"),
	}, dec("5"))

	assert.True(t, got.Subtotal.Equal(dec("450.00")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("22.50")), "tax = %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("472.50")), "total = %s", got.Total)
}

func TestCompute_EmptyLines(t *testing.T) {
	got := Compute(nil, dec("5"))

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestCompute_RoundsSubtotalOnceNotPerLine(t *testing.T) {
	// Each line is 1.005; per-line rounding would give 1.01 + 1.01 = 2.02.
	// Summed first: 2.01, and tax comes from the rounded subtotal.
	got := Compute([]model.LineItem{
		line("1", "1.005"),
		line("1", "1.005"),
	}, dec("10"))

	assert.True(t, got.Subtotal.Equal(dec("2.01")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("0.20")), "tax = %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("2.21")), "total = %s", got.Total)
}

func TestCompute_RoundHalfUp(t *testing.T) {
	// 3 x 33.335 = 100.005 -> 100.01; 5% of that = 5.0005 -> 5.00.
	got := Compute([]model.LineItem{line("3", "33.335")}, dec("5"))

	assert.True(t, got.Subtotal.Equal(dec("100.01")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("5.00")), "tax = %s", got.Tax)
}

func TestCompute_NegativeCreditLines(t *testing.T) {
	got := Compute([]model.LineItem{
		line("2", "100.00"),
		line("1", "-50.00"), // credit line
	}, dec("20"))

	assert.True(t, got.Subtotal.Equal(dec("150.00")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("30.00")), "tax = %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("180.00")), "total = %s", got.Total)
}

func TestCompute_ZeroRate(t *testing.T) {
	got := Compute([]model.LineItem{line("4", "25.00")}, decimal.Zero)

	assert.True(t, got.Subtotal.Equal(dec("100.00")))
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.Equal(dec("100.00")))
}

func TestComputePurchase(t *testing.T) {
	got := ComputePurchase([]model.PurchaseLineItem{
		{Amount: dec("120.00"), VAT: dec("24.00")},
		{Amount: dec("80.00"), VAT: dec("16.00")},
	})

	assert.True(t, got.Subtotal.Equal(dec("200.00")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("40.00")), "vat = %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("240.00")), "total = %s", got.Total)
}

func TestComputePurchase_RoundsSummedAmounts(t *testing.T) {
	// Fuel receipts with sub-penny amounts: 1.005 + 1.002 = 2.007 -> 2.01,
	// VAT 0.201 + 0.2004 = 0.4014 -> 0.40. Rounding happens on the sums,
	// like Compute, not per line.
	got := ComputePurchase([]model.PurchaseLineItem{
		{Amount: dec("1.005"), VAT: dec("0.201")},
		{Amount: dec("1.002"), VAT: dec("0.2004")},
	})

	assert.True(t, got.Subtotal.Equal(dec("2.01")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(dec("0.40")), "vat = %s", got.Tax)
	assert.True(t, got.Total.Equal(dec("2.41")), "total = %s", got.Total)
}

func TestComputePurchase_Empty(t *testing.T) {
	got := ComputePurchase(nil)

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(line("2.5", "10.00")).Equal(dec("25.00")))
}
