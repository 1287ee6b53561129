// Package notifications defines the lifecycle event contract and the
// hand-off to the external delivery pipeline. The engine only decides what
// event is raised and when; queue draining, dedupe and e-mail/realtime
// delivery belong to the delivery worker.
package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a lifecycle event.
type EventType string

// Lifecycle event types.
const (
	EventMovedToInterview    EventType = "moved_to_interview"
	EventApplicationAccepted EventType = "application_accepted"
	EventApplicationRejected EventType = "application_rejected"
	EventBookingCreated      EventType = "booking_created"
	EventBookingCompleted    EventType = "booking_completed"
	EventExpertSelected      EventType = "expert_selected"
	EventExpertInterestShown EventType = "expert_interest_shown"
)

// Event is the payload handed to the delivery pipeline.
type Event struct {
	Type          EventType `json:"type"`
	ExpertID      uuid.UUID `json:"expert_id"`
	InstitutionID uuid.UUID `json:"institution_id,omitempty"`
	ProjectID     uuid.UUID `json:"project_id,omitempty"`
	ApplicationID uuid.UUID `json:"application_id,omitempty"`
	BookingID     uuid.UUID `json:"booking_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Dispatcher forwards lifecycle events to the delivery pipeline.
// Dispatch is fire-and-forget with at-most-once semantics: callers commit
// their state change first and must never fail a request because Raise
// returned an error.
type Dispatcher interface {
	Raise(ctx context.Context, event Event) error
}

// NopDispatcher drops all events. Used in tests and when no queue is
// configured.
type NopDispatcher struct{}

// Raise discards the event.
func (NopDispatcher) Raise(_ context.Context, _ Event) error {
	return nil
}

var _ Dispatcher = NopDispatcher{}
