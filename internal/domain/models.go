package domain

// Domain contains the intake-side models of the relay.

import (
	"time"

	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
)

// LeadMessage is the envelope the relay consumes from the intake queue.
// It carries either a structured lead or the raw HTML of a portal inquiry
// notification; when both are present the structured lead wins and the HTML
// only fills in fields the lead left empty.
type LeadMessage struct {
	// Source labels where the lead entered the pipeline, e.g. "Zillow".
	// It overrides the lead's own source when set.
	Source string `json:"source,omitempty"`

	Lead *followupboss.Lead `json:"lead,omitempty"`

	// InquiryHTML is a raw portal inquiry email/page to be parsed.
	InquiryHTML string `json:"inquiry_html,omitempty"`

	ReceivedAt time.Time `json:"received_at,omitempty"`
}
