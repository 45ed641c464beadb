package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets. Values match the
// persisted small-integer encoding.
type TicketStatus int

const (
	TicketStatusOpen   TicketStatus = 1
	TicketStatusClosed TicketStatus = 2
	TicketStatusOnHold TicketStatus = 3
)

// Recognized keys inside Ticket.Extra. The map stays open; these are the
// keys the workflow reads and writes.
const (
	ExtraKeyCategory       = "category"
	ExtraKeyTicketMessage  = "ticket_message"
	ExtraKeySupportChannel = "support_channel"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             int64
	UserID         string
	SubmissionDate time.Time
	Subject        string
	Description    string
	Status         TicketStatus
	Extra          map[string]any
}

// TicketExtra is the typed view over the recognized Extra keys.
type TicketExtra struct {
	Category       string
	TicketMessage  string
	SupportChannel string
}

// ExtraView validates the recognized extra keys and returns the typed view.
// Unknown keys are ignored; a recognized key with an unexpected value shape
// is an error.
func (t *Ticket) ExtraView() (TicketExtra, error) {
	var view TicketExtra
	var err error
	if view.Category, err = extraString(t.Extra, ExtraKeyCategory); err != nil {
		return TicketExtra{}, err
	}
	if view.TicketMessage, err = extraString(t.Extra, ExtraKeyTicketMessage); err != nil {
		return TicketExtra{}, err
	}
	if view.SupportChannel, err = extraString(t.Extra, ExtraKeySupportChannel); err != nil {
		return TicketExtra{}, err
	}
	return view, nil
}

// SetExtra stores a value under a recognized or arbitrary key.
func (t *Ticket) SetExtra(key string, value any) {
	if t.Extra == nil {
		t.Extra = map[string]any{}
	}
	t.Extra[key] = value
}

func extraString(extra map[string]any, key string) (string, error) {
	raw, ok := extra[key]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("extra key %q has unexpected type %T", key, raw)
	}
	return value, nil
}
