package domain

import "time"

// Analytics event types published on the analytics stream.
const (
	AnalyticsOrderCreated   = "order.created"
	AnalyticsOrderUpdated   = "order.updated"
	AnalyticsOrderCancelled = "order.cancelled"
)

type AnalyticsEvent struct {
	Service    string                 `json:"service"`
	EventType  string                 `json:"event_type"`
	EntityID   string                 `json:"entity_id"`
	TenantID   string                 `json:"tenant_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}
