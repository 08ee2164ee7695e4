package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepository struct {
	orders   map[string]*domain.Order
	payments map[string]*domain.Payment
	invoices map[string]*domain.Invoice

	createErr error
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{
		orders:   map[string]*domain.Order{},
		payments: map[string]*domain.Payment{},
		invoices: map[string]*domain.Invoice{},
	}
}

func (f *fakeOrderRepository) Create(ctx context.Context, order *domain.Order, payment *domain.Payment, invoice *domain.Invoice) error {
	if f.createErr != nil {
		return f.createErr
	}

	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = uuid.NewString()
	}

	payment.ID = uuid.NewString()
	payment.OrderID = order.ID
	payment.CreatedAt = now
	payment.UpdatedAt = now

	invoice.ID = uuid.NewString()
	invoice.OrderID = order.ID
	invoice.IssuedAt = now

	ocp := *order
	pcp := *payment
	icp := *invoice
	f.orders[order.ID] = &ocp
	f.payments[order.ID] = &pcp
	f.invoices[order.ID] = &icp
	return nil
}

func (f *fakeOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepository) List(ctx context.Context, status, userID *string, limit, offset int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if status != nil && o.Status != *status {
			continue
		}
		if userID != nil && (o.UserID == nil || *o.UserID != *userID) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderRepository) Count(ctx context.Context, status, userID *string) (int, error) {
	orders, err := f.List(ctx, status, userID, 0, 0)
	return len(orders), err
}

func (f *fakeOrderRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string) error {
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != fromStatus {
		return domain.ErrInvalidOrderTransition
	}
	o.Status = toStatus
	return nil
}

func (f *fakeOrderRepository) Cancel(ctx context.Context, id string) error {
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if !domain.OrderCancellable(o.Status) {
		return domain.ErrOrderNotCancellable
	}
	o.Status = domain.OrderStatusCancelled
	return nil
}

func (f *fakeOrderRepository) GetPaymentByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeOrderRepository) GetInvoiceByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	inv, ok := f.invoices[orderID]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

type capturingPublisher struct {
	events []domain.AnalyticsEvent
	err    error
}

func (p *capturingPublisher) Publish(ctx context.Context, event domain.AnalyticsEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newOrderFixture() (*orderService, *fakeOrderRepository, *fakeProductRepository, *capturingPublisher) {
	orderRepo := newFakeOrderRepository()
	productRepo := newFakeProductRepository()
	pub := &capturingPublisher{}
	svc := NewOrderService(orderRepo, productRepo, NewAnalyticsService(pub), "SAR")
	return svc, orderRepo, productRepo, pub
}

func catalogProduct(priceCents int64) *domain.Product {
	id := uuid.NewString()
	return &domain.Product{
		ID:         id,
		SKU:        "sku-" + id[:8],
		Category:   "medical-devices",
		Name:       "Test Product",
		PriceCents: priceCents,
		Currency:   "SAR",
		Region:     "saudi-arabia",
		IsActive:   true,
	}
}

func seedOrder(f *fakeOrderRepository, status string) *domain.Order {
	o := &domain.Order{
		ID:            uuid.NewString(),
		Status:        status,
		SubtotalCents: 10000,
		VATCents:      1500,
		TotalCents:    11500,
		Currency:      "SAR",
	}
	f.orders[o.ID] = o
	return o
}

func strPtr(s string) *string { return &s }

func TestCreateOrderComputesTotals(t *testing.T) {
	svc, orderRepo, productRepo, pub := newOrderFixture()

	p1 := catalogProduct(10000)
	p2 := catalogProduct(5000)
	productRepo.add(p1)
	productRepo.add(p2)

	detail, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, detail.Status)
	assert.Equal(t, int64(25000), detail.SubtotalCents)
	assert.Equal(t, int64(3750), detail.VATCents)
	assert.Equal(t, int64(28750), detail.TotalCents)
	assert.Equal(t, "SAR", detail.Currency)
	assert.NotEmpty(t, detail.ID)

	require.Len(t, detail.Items, 2)
	assert.Equal(t, p1.Name, detail.Items[0].ProductName)
	assert.Equal(t, int64(10000), detail.Items[0].UnitPriceCents)
	assert.Equal(t, 2, detail.Items[0].Quantity)

	require.NotNil(t, detail.Payment)
	assert.Equal(t, domain.PaymentStatusPending, detail.Payment.Status)
	assert.Equal(t, detail.TotalCents, detail.Payment.AmountCents)

	require.NotNil(t, detail.Invoice)
	assert.True(t, strings.HasPrefix(detail.Invoice.Number, "INV-"), "invoice number %q", detail.Invoice.Number)
	assert.Equal(t, domain.VATRateBasisPoints, detail.Invoice.VATRateBP)
	assert.Equal(t, detail.TotalCents, detail.Invoice.TotalCents)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, domain.AnalyticsOrderCreated, event.EventType)
	assert.Equal(t, detail.ID, event.EntityID)
	assert.Equal(t, 2, event.Payload["items"])
	assert.Equal(t, int64(28750), event.Payload["total_cents"])
}

func TestCreateOrderRoundsVATHalfUp(t *testing.T) {
	svc, _, productRepo, _ := newOrderFixture()

	p := catalogProduct(101)
	productRepo.add(p)

	detail, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), detail.VATCents)
	assert.Equal(t, int64(116), detail.TotalCents)
}

func TestCreateOrderEmptyItems(t *testing.T) {
	svc, orderRepo, _, pub := newOrderFixture()

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	assert.Empty(t, orderRepo.orders)
	assert.Empty(t, pub.events)
}

func TestCreateOrderRejectsBadQuantity(t *testing.T) {
	svc, _, productRepo, _ := newOrderFixture()

	p := catalogProduct(1000)
	productRepo.add(p)

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc, orderRepo, _, pub := newOrderFixture()

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Empty(t, orderRepo.orders)
	assert.Empty(t, pub.events)
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	svc, _, productRepo, _ := newOrderFixture()

	p := catalogProduct(1000)
	p.IsActive = false
	productRepo.add(p)

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductInactive)
}

func TestCreateOrderInvalidIDs(t *testing.T) {
	svc, _, productRepo, _ := newOrderFixture()
	ctx := context.Background()

	p := catalogProduct(1000)
	productRepo.add(p)
	items := []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 1}}

	_, err := svc.CreateOrder(ctx, domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: "not-a-uuid", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUUID)

	_, err = svc.CreateOrder(ctx, domain.CreateOrderRequest{TenantID: strPtr("tenant-1"), Items: items})
	assert.ErrorIs(t, err, domain.ErrInvalidUUID)

	_, err = svc.CreateOrder(ctx, domain.CreateOrderRequest{UserID: strPtr("user-1"), Items: items})
	assert.ErrorIs(t, err, domain.ErrInvalidUUID)
}

func TestCreateOrderPropagatesIdentityToAnalytics(t *testing.T) {
	svc, _, productRepo, pub := newOrderFixture()

	p := catalogProduct(1000)
	productRepo.add(p)

	tenantID := uuid.NewString()
	userID := uuid.NewString()
	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		TenantID: &tenantID,
		UserID:   &userID,
		Items:    []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, tenantID, pub.events[0].TenantID)
	assert.Equal(t, userID, pub.events[0].Payload["user_id"])
}

func TestCreateOrderPublishFailureTolerated(t *testing.T) {
	svc, orderRepo, productRepo, pub := newOrderFixture()
	pub.err = assert.AnError

	p := catalogProduct(1000)
	productRepo.add(p)

	detail, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err, "analytics failures must not fail the order")
	assert.Contains(t, orderRepo.orders, detail.ID)
}

func TestCreateOrderWithoutAnalytics(t *testing.T) {
	orderRepo := newFakeOrderRepository()
	productRepo := newFakeProductRepository()
	svc := NewOrderService(orderRepo, productRepo, nil, "SAR")

	p := catalogProduct(1000)
	productRepo.add(p)

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.NoError(t, err)
}

func TestGetOrderComposesDetail(t *testing.T) {
	svc, _, productRepo, _ := newOrderFixture()

	p := catalogProduct(1000)
	productRepo.add(p)

	created, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Items: []domain.CreateOrderItemRequest{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	detail, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)
	require.NotNil(t, detail.Payment)
	assert.Equal(t, created.ID, detail.Payment.OrderID)
	require.NotNil(t, detail.Invoice)
	assert.Equal(t, created.Invoice.Number, detail.Invoice.Number)
}

func TestGetOrderToleratesMissingPaymentAndInvoice(t *testing.T) {
	svc, orderRepo, _, _ := newOrderFixture()
	order := seedOrder(orderRepo, domain.OrderStatusPending)

	detail, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Payment)
	assert.Nil(t, detail.Invoice)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	_, err := svc.GetOrder(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.GetOrder(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidUUID)
}

func TestListOrdersEmptyShape(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	list, err := svc.ListOrders(context.Background(), nil, nil, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, list.Orders)
	assert.Empty(t, list.Orders)
	assert.Zero(t, list.Total)
	assert.Equal(t, "SAR", list.Currency)
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	svc, orderRepo, _, _ := newOrderFixture()
	seedOrder(orderRepo, domain.OrderStatusPending)
	seedOrder(orderRepo, domain.OrderStatusShipped)

	pending := domain.OrderStatusPending
	list, err := svc.ListOrders(context.Background(), &pending, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, domain.OrderStatusPending, list.Orders[0].Status)
	assert.Equal(t, 1, list.Total)
}

func TestListOrdersInvalidStatus(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	bogus := "refunded"
	_, err := svc.ListOrders(context.Background(), &bogus, nil, 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderStatus)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, orderRepo, _, pub := newOrderFixture()
	order := seedOrder(orderRepo, domain.OrderStatusPending)

	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, updated.Status)
	assert.Equal(t, domain.OrderStatusPaid, orderRepo.orders[order.ID].Status)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, domain.AnalyticsOrderUpdated, event.EventType)
	assert.Equal(t, domain.OrderStatusPending, event.Payload["from"])
	assert.Equal(t, domain.OrderStatusPaid, event.Payload["to"])
}

func TestUpdateOrderStatusRejectsIllegalTransition(t *testing.T) {
	svc, orderRepo, _, pub := newOrderFixture()
	order := seedOrder(orderRepo, domain.OrderStatusPending)

	_, err := svc.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidOrderTransition)
	assert.Equal(t, domain.OrderStatusPending, orderRepo.orders[order.ID].Status)
	assert.Empty(t, pub.events)
}

func TestUpdateOrderStatusUnknownStatus(t *testing.T) {
	svc, orderRepo, _, _ := newOrderFixture()
	order := seedOrder(orderRepo, domain.OrderStatusPending)

	_, err := svc.UpdateOrderStatus(context.Background(), order.ID, "refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidOrderStatus)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	_, err := svc.UpdateOrderStatus(context.Background(), uuid.NewString(), domain.OrderStatusPaid)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelOrder(t *testing.T) {
	for _, status := range []string{domain.OrderStatusPending, domain.OrderStatusPaid} {
		t.Run(status, func(t *testing.T) {
			svc, orderRepo, _, pub := newOrderFixture()
			order := seedOrder(orderRepo, status)

			cancelled, err := svc.CancelOrder(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
			assert.Equal(t, domain.OrderStatusCancelled, orderRepo.orders[order.ID].Status)

			require.Len(t, pub.events, 1)
			event := pub.events[0]
			assert.Equal(t, domain.AnalyticsOrderCancelled, event.EventType)
			assert.Equal(t, status, event.Payload["from"])
		})
	}
}

func TestCancelOrderNotCancellable(t *testing.T) {
	for _, status := range []string{
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	} {
		t.Run(status, func(t *testing.T) {
			svc, orderRepo, _, pub := newOrderFixture()
			order := seedOrder(orderRepo, status)

			_, err := svc.CancelOrder(context.Background(), order.ID)
			assert.ErrorIs(t, err, domain.ErrOrderNotCancellable)
			assert.Equal(t, status, orderRepo.orders[order.ID].Status)
			assert.Empty(t, pub.events)
		})
	}
}

func TestCancelOrderNotFound(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	_, err := svc.CancelOrder(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
