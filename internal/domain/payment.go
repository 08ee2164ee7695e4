package domain

import (
	"errors"
	"time"
)

// Payment status constants
const (
	PaymentStatusPending  = "pending"
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

// Payment tracks the money side of an order. One payment row is opened in
// pending state when the order is created; capture happens out of band.
type Payment struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	Method      string    `json:"method,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
