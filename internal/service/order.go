package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order, payment *domain.Payment, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, status, userID *string, limit, offset int) ([]domain.Order, error)
	Count(ctx context.Context, status, userID *string) (int, error)
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus string) error
	Cancel(ctx context.Context, id string) error
	GetPaymentByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	GetInvoiceByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error)
}

type orderService struct {
	orderRepo   OrderRepository
	productRepo ProductRepository
	analytics   *AnalyticsService
	currency    string
}

func NewOrderService(orderRepo OrderRepository, productRepo ProductRepository, analytics *AnalyticsService, currency string) *orderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		analytics:   analytics,
		currency:    currency,
	}
}

// newInvoiceNumber derives a short human-readable invoice number from a UUID.
func newInvoiceNumber() string {
	return "INV-" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// CreateOrder prices the requested items against the current catalog,
// applies VAT and persists order, items, pending payment and invoice
// atomically.
func (s *orderService) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.OrderDetail, error) {
	if err := domain.ValidateOrderItems(req.Items); err != nil {
		return nil, err
	}
	if req.TenantID != nil {
		if _, err := uuid.Parse(*req.TenantID); err != nil {
			return nil, domain.ErrInvalidUUID
		}
	}
	if req.UserID != nil {
		if _, err := uuid.Parse(*req.UserID); err != nil {
			return nil, domain.ErrInvalidUUID
		}
	}

	order := &domain.Order{
		TenantID: req.TenantID,
		UserID:   req.UserID,
		Status:   domain.OrderStatusPending,
		Currency: s.currency,
	}

	var subtotal int64
	for _, item := range req.Items {
		if _, err := uuid.Parse(item.ProductID); err != nil {
			return nil, domain.ErrInvalidUUID
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, domain.ErrProductInactive
		}

		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
		})
		subtotal += product.PriceCents * int64(item.Quantity)
	}

	order.SubtotalCents = subtotal
	order.VATCents = domain.VATForSubtotal(subtotal)
	order.TotalCents = subtotal + order.VATCents

	payment := &domain.Payment{
		Status:      domain.PaymentStatusPending,
		AmountCents: order.TotalCents,
		Currency:    order.Currency,
	}
	invoice := &domain.Invoice{
		Number:        newInvoiceNumber(),
		SubtotalCents: order.SubtotalCents,
		VATRateBP:     domain.VATRateBasisPoints,
		VATCents:      order.VATCents,
		TotalCents:    order.TotalCents,
		Currency:      order.Currency,
	}

	if err := s.orderRepo.Create(ctx, order, payment, invoice); err != nil {
		log.WithError(err).Error("Failed to create order")
		return nil, err
	}

	if err := s.analytics.RecordOrderCreated(ctx, order); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("Failed to publish order analytics event")
	}

	return &domain.OrderDetail{Order: *order, Payment: payment, Invoice: invoice}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*domain.OrderDetail, error) {
	if id == "" {
		return nil, domain.ErrInvalidUUID
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.OrderDetail{Order: *order}

	payment, err := s.orderRepo.GetPaymentByOrderID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}
	detail.Payment = payment

	invoice, err := s.orderRepo.GetInvoiceByOrderID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrInvoiceNotFound) {
		return nil, err
	}
	detail.Invoice = invoice

	return detail, nil
}

func (s *orderService) ListOrders(ctx context.Context, status, userID *string, limit, offset int) (*domain.OrderList, error) {
	if status != nil && !domain.ValidOrderStatus(*status) {
		return nil, domain.ErrInvalidOrderStatus
	}

	if limit <= 0 {
		limit = 10
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderRepo.List(ctx, status, userID, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list orders")
		return nil, err
	}

	total, err := s.orderRepo.Count(ctx, status, userID)
	if err != nil {
		log.WithError(err).Error("Failed to count orders")
		return nil, err
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return &domain.OrderList{
		Orders:   orders,
		Total:    total,
		Currency: s.currency,
	}, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id, newStatus string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrInvalidUUID
	}
	if !domain.ValidOrderStatus(newStatus) {
		return nil, domain.ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransitionOrder(order.Status, newStatus) {
		return nil, domain.ErrInvalidOrderTransition
	}

	fromStatus := order.Status
	if err := s.orderRepo.UpdateStatus(ctx, id, fromStatus, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus

	if err := s.analytics.RecordOrderStatusChanged(ctx, order, domain.AnalyticsOrderUpdated, fromStatus); err != nil {
		log.WithError(err).WithField("order_id", id).Warn("Failed to publish order analytics event")
	}

	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrInvalidUUID
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Cancel(ctx, id); err != nil {
		return nil, err
	}

	fromStatus := order.Status
	order.Status = domain.OrderStatusCancelled

	if err := s.analytics.RecordOrderStatusChanged(ctx, order, domain.AnalyticsOrderCancelled, fromStatus); err != nil {
		log.WithError(err).WithField("order_id", id).Warn("Failed to publish order analytics event")
	}

	return order, nil
}
