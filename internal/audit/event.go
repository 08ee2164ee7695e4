// Package audit emits structured audit records for compliance logging.
// Events are written as single-line JSON through a dedicated logger so the
// audit trail can be shipped separately from application logs.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event is a single audit record. Action, resource and outcome are plain
// strings so callers can introduce new values without touching this package.
type Event struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	UserID      *string                `json:"user_id"`
	UserRole    *string                `json:"user_role"`
	Action      string                 `json:"action"`
	Resource    string                 `json:"resource"`
	ResourceID  *string                `json:"resource_id"`
	Outcome     string                 `json:"outcome"`
	SourceIP    string                 `json:"source_ip"`
	UserAgent   string                 `json:"user_agent"`
	SessionID   *string                `json:"session_id"`
	Details     map[string]interface{} `json:"details"`
	PHIAccessed bool                   `json:"phi_accessed"`
}

type Option func(*Event)

func WithUser(userID string) Option {
	return func(e *Event) {
		e.UserID = &userID
	}
}

func WithUserRole(role string) Option {
	return func(e *Event) {
		e.UserRole = &role
	}
}

func WithResourceID(resourceID string) Option {
	return func(e *Event) {
		e.ResourceID = &resourceID
	}
}

func WithSession(sessionID string) Option {
	return func(e *Event) {
		e.SessionID = &sessionID
	}
}

func WithOutcome(outcome string) Option {
	return func(e *Event) {
		e.Outcome = outcome
	}
}

func WithSourceIP(ip string) Option {
	return func(e *Event) {
		e.SourceIP = ip
	}
}

func WithUserAgent(ua string) Option {
	return func(e *Event) {
		e.UserAgent = ua
	}
}

// WithDetails replaces the event details map. The map is kept by reference.
func WithDetails(details map[string]interface{}) Option {
	return func(e *Event) {
		e.Details = details
	}
}

func WithDetail(key string, value interface{}) Option {
	return func(e *Event) {
		e.Details[key] = value
	}
}

func WithPHIAccessed(accessed bool) Option {
	return func(e *Event) {
		e.PHIAccessed = accessed
	}
}

// NewEvent builds an event with a fresh UUID and a UTC timestamp captured at
// construction time. Construction never fails: unset optional fields stay
// null and unknown metadata falls back to "unknown".
func NewEvent(action, resource string, opts ...Option) *Event {
	e := &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Resource:  resource,
		Outcome:   OutcomeSuccess,
		SourceIP:  "unknown",
		UserAgent: "unknown",
		Details:   map[string]interface{}{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Fields flattens the event into the thirteen audit record keys. Calling it
// repeatedly yields the same values; nothing is recomputed.
func (e *Event) Fields() logrus.Fields {
	return logrus.Fields{
		"id":           e.ID,
		"timestamp":    e.Timestamp,
		"user_id":      e.UserID,
		"user_role":    e.UserRole,
		"action":       e.Action,
		"resource":     e.Resource,
		"resource_id":  e.ResourceID,
		"outcome":      e.Outcome,
		"source_ip":    e.SourceIP,
		"user_agent":   e.UserAgent,
		"session_id":   e.SessionID,
		"details":      e.Details,
		"phi_accessed": e.PHIAccessed,
	}
}

// Emit writes the event as compact JSON through the audit logger.
// Fire-and-forget: a nil logger or a marshal failure drops the record
// without affecting the caller.
func (e *Event) Emit(logger *logrus.Logger) {
	if logger == nil {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return
	}

	logger.Info(string(payload))
}
