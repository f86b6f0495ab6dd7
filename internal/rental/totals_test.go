package rental

import (
	"testing"

	"rentalhub/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(subTotal, tax string) models.OrderLine {
	return models.OrderLine{
		SubTotal: decimal.RequireFromString(subTotal),
		Tax:      decimal.RequireFromString(tax),
	}
}

func assertTotals(t *testing.T, got models.RentalTotals, untaxed, tax, total string) {
	t.Helper()
	assert.True(t, got.UntaxedTotal.Equal(decimal.RequireFromString(untaxed)), "untaxed: got %s want %s", got.UntaxedTotal, untaxed)
	assert.True(t, got.TotalTax.Equal(decimal.RequireFromString(tax)), "tax: got %s want %s", got.TotalTax, tax)
	assert.True(t, got.Total.Equal(decimal.RequireFromString(total)), "total: got %s want %s", got.Total, total)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name    string
		lines   []models.OrderLine
		untaxed string
		tax     string
		total   string
	}{
		{
			name:    "empty",
			lines:   nil,
			untaxed: "0", tax: "0", total: "0",
		},
		{
			name:    "three lines",
			lines:   []models.OrderLine{line("1000", "0"), line("1485", "135"), line("1056", "96")},
			untaxed: "3541", tax: "231", total: "3772",
		},
		{
			name:    "fractional amounts stay exact",
			lines:   []models.OrderLine{line("0.1", "0.01"), line("0.2", "0.02"), line("0.3", "0.03")},
			untaxed: "0.6", tax: "0.06", total: "0.66",
		},
		{
			name:    "negative values are summed as-is",
			lines:   []models.OrderLine{line("100", "10"), line("-40", "-5")},
			untaxed: "60", tax: "5", total: "65",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTotals(t, ComputeTotals(tt.lines), tt.untaxed, tt.tax, tt.total)
		})
	}
}

func TestComputeTotals_IdempotentAndOrderIndependent(t *testing.T) {
	lines := []models.OrderLine{line("19.99", "1.80"), line("5.01", "0.45"), line("250", "22.5")}

	first := ComputeTotals(lines)
	second := ComputeTotals(lines)
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.UntaxedTotal.Equal(second.UntaxedTotal))
	assert.True(t, first.TotalTax.Equal(second.TotalTax))

	reversed := []models.OrderLine{lines[2], lines[1], lines[0]}
	assertTotals(t, ComputeTotals(reversed), first.UntaxedTotal.String(), first.TotalTax.String(), first.Total.String())
}

func TestComputeTotals_NoDriftOverRepeatedRecompute(t *testing.T) {
	order := &models.RentalOrder{}
	for i := 0; i < 1000; i++ {
		order.OrderLines = append(order.OrderLines, line("0.1", "0.01"))
	}

	for i := 0; i < 5; i++ {
		Recompute(order)
	}
	assertTotals(t, order.Totals(), "100", "10", "110")
}

func TestLineSubTotal(t *testing.T) {
	assert.True(t, LineSubTotal(3, decimal.RequireFromString("495")).Equal(decimal.NewFromInt(1485)))
	assert.True(t, LineSubTotal(3, decimal.RequireFromString("0.1")).Equal(decimal.RequireFromString("0.3")))
	assert.True(t, LineSubTotal(0, decimal.NewFromInt(10)).IsZero())
}
