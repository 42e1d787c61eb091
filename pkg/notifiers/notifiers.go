// Package notifiers fans out lead-submitted events to downstream sinks
// (webhooks, queues, topics) declared in a YAML registry. Delivery is
// best-effort: a sink failure never undoes or retries the CRM submission.
package notifiers

import (
	"context"
	"time"

	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
)

// Notifier delivers events to one downstream sink.
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt Event) error
}

// Event is the payload delivered downstream after a lead reached the CRM.
type Event struct {
	IntakeSource string             `json:"intake_source"`
	PersonID     int64              `json:"person_id,omitempty"`
	Lead         followupboss.Lead  `json:"lead"`
	SubmittedAt  time.Time          `json:"submitted_at"`
}

// NewEvent constructs an Event stamped with the current time.
func NewEvent(intakeSource string, personID int64, lead followupboss.Lead) Event {
	return Event{
		IntakeSource: intakeSource,
		PersonID:     personID,
		Lead:         lead,
		SubmittedAt:  time.Now().UTC(),
	}
}
