// Package rental holds the pure rules of the rental lifecycle: totals
// computation and the status transition table. Nothing here performs I/O.
package rental

import (
	"rentalhub/internal/models"

	"github.com/shopspring/decimal"
)

// ComputeTotals sums the stored line subtotals and taxes. Values are taken as
// they are, negative amounts included; input validation happens upstream.
func ComputeTotals(lines []models.OrderLine) models.RentalTotals {
	untaxed := decimal.Zero
	tax := decimal.Zero
	for _, line := range lines {
		untaxed = untaxed.Add(line.SubTotal)
		tax = tax.Add(line.Tax)
	}
	return models.RentalTotals{
		UntaxedTotal: untaxed,
		TotalTax:     tax,
		Total:        untaxed.Add(tax),
	}
}

// LineSubTotal returns quantity * unitPrice
func LineSubTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Recompute refreshes the derived totals of order from its current lines
func Recompute(order *models.RentalOrder) models.RentalTotals {
	totals := ComputeTotals(order.OrderLines)
	order.ApplyTotals(totals)
	return totals
}
