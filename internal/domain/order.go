package domain

import (
	"errors"
	"time"
)

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// VATRateBasisPoints is the Saudi VAT rate applied at order time.
const VATRateBasisPoints = 1500

const maxOrderItemQuantity = 10_000

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrEmptyOrder             = errors.New("order has no items")
	ErrInvalidQuantity        = errors.New("invalid item quantity")
	ErrInvalidOrderStatus     = errors.New("invalid order status")
	ErrInvalidOrderTransition = errors.New("invalid order status transition")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")
)

// ValidOrderStatuses returns list of valid order statuses
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

type OrderItem struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Order struct {
	ID            string      `json:"id"`
	TenantID      *string     `json:"tenant_id,omitempty"`
	UserID        *string     `json:"user_id,omitempty"`
	Status        string      `json:"status"`
	Items         []OrderItem `json:"items,omitempty"`
	SubtotalCents int64       `json:"subtotal_cents"`
	VATCents      int64       `json:"vat_cents"`
	TotalCents    int64       `json:"total_cents"`
	Currency      string      `json:"currency"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderList is the list response shape: items plus the running total count
// and the platform currency.
type OrderList struct {
	Orders   []Order `json:"orders"`
	Total    int     `json:"total"`
	Currency string  `json:"currency"`
}

// OrderDetail is a single order with its payment and invoice attached.
type OrderDetail struct {
	Order
	Payment *Payment `json:"payment,omitempty"`
	Invoice *Invoice `json:"invoice,omitempty"`
}

type CreateOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	TenantID *string                  `json:"tenant_id,omitempty"`
	UserID   *string                  `json:"user_id,omitempty"`
	Items    []CreateOrderItemRequest `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func ValidateOrderItems(items []CreateOrderItemRequest) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > maxOrderItemQuantity {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func ValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransitionOrder reports whether an order may move between the two
// statuses. Delivered and cancelled are terminal.
func CanTransitionOrder(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	default:
		return false
	}
}

// OrderCancellable reports whether an order may still be cancelled.
func OrderCancellable(status string) bool {
	return status == OrderStatusPending || status == OrderStatusPaid
}

// VATForSubtotal computes the VAT due on a subtotal, rounded half up to the
// nearest cent.
func VATForSubtotal(subtotalCents int64) int64 {
	return (subtotalCents*VATRateBasisPoints + 5000) / 10000
}
