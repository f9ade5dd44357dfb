// Package events publishes lifecycle notifications for registrations and mentorships.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the service layer.
const (
	TypeRegistrationAutoApproved = "registration.auto_approved"
	TypeRegistrationFiled        = "registration.filed"
	TypeRegistrationApproved     = "registration.approved"
	TypeRegistrationRejected     = "registration.rejected"
	TypeMentorshipRequested      = "mentorship.requested"
	TypeMentorshipStatusChanged  = "mentorship.status_changed"
	TypeMentorshipSessionAdded   = "mentorship.session_added"
	TypeMentorApproved           = "mentor.approved"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	RequestID  string          `json:"request_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// New builds an event keyed by the aggregate id, marshalling payload eagerly.
func New(eventType, key string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, ...Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
