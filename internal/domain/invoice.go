package domain

import (
	"errors"
	"time"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// Invoice is the tax document issued with an order. Amounts repeat the order
// totals so the invoice stays correct even if the order is later amended.
type Invoice struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	Number        string    `json:"number"`
	SubtotalCents int64     `json:"subtotal_cents"`
	VATRateBP     int       `json:"vat_rate_bp"`
	VATCents      int64     `json:"vat_cents"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	IssuedAt      time.Time `json:"issued_at"`
}
