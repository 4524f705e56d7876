package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one basket row. At most one line exists per product, and a line's
// quantity never sits at zero; decrementing from 1 removes the row instead.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Totals is the checkout arithmetic for one basket snapshot.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	Total         decimal.Decimal `json:"total"`
}

// ComputeTotals is a pure function of the given lines and percent; it never
// touches engine state. Total always equals Subtotal plus ServiceCharge.
func ComputeTotals(lines []Line, serviceChargePercent float64) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}

	charge := subtotal.
		Mul(decimal.NewFromFloat(serviceChargePercent)).
		Div(decimal.NewFromInt(100))

	return Totals{
		Subtotal:      subtotal,
		ServiceCharge: charge,
		Total:         subtotal.Add(charge),
	}
}
