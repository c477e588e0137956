package totals

import (
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/model"
)

// Totals is the derived money summary of a document.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives invoice/quote totals from line items and a percentage tax
// rate. Rounding is applied once to the summed subtotal and once to the tax,
// never to individual lines; tax is computed from the rounded subtotal.
// Recomputing from the same lines always reproduces the stored totals.
func Compute(lines []model.LineItem, taxRatePercent decimal.Decimal) Totals {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Quantity.Mul(l.UnitPrice))
	}

	subtotal := round2(sum)
	tax := round2(subtotal.Mul(taxRatePercent).Div(decimal.NewFromInt(100)))

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// LineTotal returns the stored per-line total, quantity times unit price.
// Unrounded: lines keep full precision, only document totals round.
func LineTotal(l model.LineItem) decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// ComputePurchase derives purchase totals. Supplier bills arrive with VAT
// already itemized, so VAT is summed per line rather than derived from a rate.
// Both sums round to 2 decimal places the same way Compute rounds.
func ComputePurchase(lines []model.PurchaseLineItem) Totals {
	amountSum := decimal.Zero
	vatSum := decimal.Zero
	for _, l := range lines {
		amountSum = amountSum.Add(l.Amount)
		vatSum = vatSum.Add(l.VAT)
	}

	subtotal := round2(amountSum)
	vat := round2(vatSum)

	return Totals{
		Subtotal: subtotal,
		Tax:      vat,
		Total:    subtotal.Add(vat),
	}
}

// round2 rounds half-up to 2 decimal places.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
