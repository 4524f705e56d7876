package transaction

import (
	"time"

	"warimas-pos/internal/cart"

	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
}

type Transaction struct {
	ID              int64           `json:"id"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ServiceCharge   decimal.Decimal `json:"serviceCharge"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethodID int64           `json:"paymentMethodId"`
	CashierID       int64           `json:"cashierId"`
	CashierName     string          `json:"cashierName,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type SubmitInput struct {
	InvoiceNumber   string          `json:"invoiceNumber"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ServiceCharge   decimal.Decimal `json:"serviceCharge"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethodID int64           `json:"paymentMethodId"`
}

// DailySummary is one dashboard row: sales aggregated per calendar day.
type DailySummary struct {
	Date  string          `json:"date"`
	Count int64           `json:"count"`
	Gross decimal.Decimal `json:"gross"`
}

// FromCart freezes the basket and its totals into a submit payload.
func FromCart(lines []cart.Line, totals cart.Totals, paymentMethodID int64) SubmitInput {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	return SubmitInput{
		Items:           items,
		Subtotal:        totals.Subtotal,
		ServiceCharge:   totals.ServiceCharge,
		Total:           totals.Total,
		PaymentMethodID: paymentMethodID,
	}
}
