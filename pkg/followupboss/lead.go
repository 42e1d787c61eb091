package followupboss

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultSource labels leads that arrive without an explicit source.
	DefaultSource = "API"

	// DefaultLeadType is the contact type applied when none is given.
	DefaultLeadType = "Buyer"

	// DefaultTaskType is the task type applied when none is given.
	DefaultTaskType = "Call"

	// systemTag is merged into every submitted lead so downstream automation
	// can distinguish relay-created contacts.
	systemTag = "AI Created"
)

// Lead is a prospective contact submitted through the events endpoint.
// Optional fields left at their zero value are omitted from the payload.
type Lead struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	// Source is the lead source label, e.g. "Referral", "Zillow", "Website".
	Source string `json:"source,omitempty"`
	// Type is the contact type, e.g. "Buyer", "Seller", "Tenant".
	Type string `json:"type,omitempty"`
	// Message is the free-text inquiry attached to the event.
	Message string `json:"message,omitempty"`

	PriceMin int `json:"price_min,omitempty"`
	PriceMax int `json:"price_max,omitempty"`

	Tags []string `json:"tags,omitempty"`
	// AssignedTo is the agent email address to route the lead to.
	AssignedTo string `json:"assigned_to,omitempty"`
}

// Validate checks the fields the events endpoint needs to build a contact:
// first name, last name, and at least one contact method.
func (l Lead) Validate() error {
	if strings.TrimSpace(l.FirstName) == "" {
		return errors.New("lead: first name is required")
	}
	if strings.TrimSpace(l.LastName) == "" {
		return errors.New("lead: last name is required")
	}
	if strings.TrimSpace(l.Email) == "" && strings.TrimSpace(l.Phone) == "" {
		return errors.New("lead: email or phone is required")
	}
	return nil
}

type eventPayload struct {
	Source   string        `json:"source"`
	System   string        `json:"system"`
	Type     string        `json:"type"`
	Person   personPayload `json:"person"`
	Message  string        `json:"message"`
	PriceMin int           `json:"priceMin,omitempty"`
	PriceMax int           `json:"priceMax,omitempty"`
	Tags     []string      `json:"tags"`
	Assigned string        `json:"assigned,omitempty"`
}

type personPayload struct {
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Emails    []valueField `json:"emails,omitempty"`
	Phones    []valueField `json:"phones,omitempty"`
}

type valueField struct {
	Value string `json:"value"`
}

// eventPayload maps the lead onto the wire schema of the events endpoint.
func (l Lead) eventPayload(system string) eventPayload {
	person := personPayload{
		FirstName: l.FirstName,
		LastName:  l.LastName,
	}
	if l.Email != "" {
		person.Emails = []valueField{{Value: l.Email}}
	}
	if l.Phone != "" {
		person.Phones = []valueField{{Value: l.Phone}}
	}

	source := l.Source
	if source == "" {
		source = DefaultSource
	}
	leadType := l.Type
	if leadType == "" {
		leadType = DefaultLeadType
	}

	return eventPayload{
		Source:   source,
		System:   system,
		Type:     leadType,
		Person:   person,
		Message:  l.Message,
		PriceMin: l.PriceMin,
		PriceMax: l.PriceMax,
		Tags:     mergeTags(l.Tags),
		Assigned: l.AssignedTo,
	}
}

// mergeTags prepends the system tag and drops duplicates, keeping caller order.
func mergeTags(tags []string) []string {
	out := []string{systemTag}
	seen := map[string]struct{}{systemTag: {}}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Note attaches free text to an existing contact.
type Note struct {
	PersonID int    `json:"person_id"`
	Subject  string `json:"subject,omitempty"`
	Body     string `json:"body"`
}

// Validate checks the note references a contact and carries a body.
func (n Note) Validate() error {
	if n.PersonID <= 0 {
		return fmt.Errorf("note: invalid person id %d", n.PersonID)
	}
	if strings.TrimSpace(n.Body) == "" {
		return errors.New("note: body is required")
	}
	return nil
}

type notePayload struct {
	PersonID int    `json:"personId"`
	Body     string `json:"body"`
	Subject  string `json:"subject"`
}

func (n Note) payload() notePayload {
	return notePayload{PersonID: n.PersonID, Body: n.Body, Subject: n.Subject}
}

// Task is a follow-up item linked to a contact.
type Task struct {
	PersonID int    `json:"person_id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	// DueDate is the remote API's date string, e.g. "2026-09-01".
	DueDate string `json:"due_date,omitempty"`
}

// Validate checks the task references a contact and has a name.
func (t Task) Validate() error {
	if t.PersonID <= 0 {
		return fmt.Errorf("task: invalid person id %d", t.PersonID)
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task: name is required")
	}
	return nil
}

type taskPayload struct {
	PersonID int    `json:"personId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	DueDate  string `json:"dueDate,omitempty"`
}

func (t Task) payload() taskPayload {
	typ := t.Type
	if typ == "" {
		typ = DefaultTaskType
	}
	return taskPayload{PersonID: t.PersonID, Name: t.Name, Type: typ, DueDate: t.DueDate}
}
