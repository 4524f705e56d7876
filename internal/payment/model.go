package payment

import "time"

// Method is a way the till can settle a sale: cash, QRIS, a card terminal.
type Method struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

// Common method codes seeded on a fresh installation.
const (
	CodeCash  = "CASH"
	CodeQRIS  = "QRIS"
	CodeDebit = "DEBIT"
)
