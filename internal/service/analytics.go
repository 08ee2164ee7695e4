package service

import (
	"context"
	"time"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"
)

type AnalyticsPublisher interface {
	Publish(ctx context.Context, event domain.AnalyticsEvent) error
}

// AnalyticsService wraps the publisher and tolerates being entirely absent:
// a nil service or nil publisher turns every Record call into a no-op.
type AnalyticsService struct {
	publisher AnalyticsPublisher
}

func NewAnalyticsService(publisher AnalyticsPublisher) *AnalyticsService {
	return &AnalyticsService{publisher: publisher}
}

func (s *AnalyticsService) RecordOrderCreated(ctx context.Context, order *domain.Order) error {
	if s == nil || s.publisher == nil || order == nil {
		return nil
	}

	event := domain.AnalyticsEvent{
		Service:    "store-service",
		EventType:  domain.AnalyticsOrderCreated,
		EntityID:   order.ID,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]interface{}{
			"status":         order.Status,
			"items":          len(order.Items),
			"subtotal_cents": order.SubtotalCents,
			"vat_cents":      order.VATCents,
			"total_cents":    order.TotalCents,
			"currency":       order.Currency,
		},
	}

	if order.TenantID != nil {
		event.TenantID = *order.TenantID
	}
	if order.UserID != nil {
		event.Payload["user_id"] = *order.UserID
	}

	return s.publisher.Publish(ctx, event)
}

func (s *AnalyticsService) RecordOrderStatusChanged(ctx context.Context, order *domain.Order, eventType, fromStatus string) error {
	if s == nil || s.publisher == nil || order == nil {
		return nil
	}

	event := domain.AnalyticsEvent{
		Service:    "store-service",
		EventType:  eventType,
		EntityID:   order.ID,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]interface{}{
			"from":        fromStatus,
			"to":          order.Status,
			"total_cents": order.TotalCents,
			"currency":    order.Currency,
		},
	}

	if order.TenantID != nil {
		event.TenantID = *order.TenantID
	}

	return s.publisher.Publish(ctx, event)
}
