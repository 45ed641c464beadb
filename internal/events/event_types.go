package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened         EventType = "ticket_opened"
	EventTicketChannelCreated EventType = "ticket_channel_created"
	EventTicketClosed         EventType = "ticket_closed"
)

// Event represents a workflow event emitted by the lifecycle manager.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	Category string `json:"category"`
	Subject  string `json:"subject"`
	OwnerID  string `json:"owner_id"`
}

// TicketChannelCreatedPayload payload.
type TicketChannelCreatedPayload struct {
	ChannelID string `json:"channel_id"`
	OwnerID   string `json:"owner_id"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
	OwnerID  string `json:"owner_id"`
}
