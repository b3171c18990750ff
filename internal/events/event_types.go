package events

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserLoggedIn   EventType = "user_logged_in"
	EventSessionRevoked EventType = "session_revoked"
	EventOrderPlaced    EventType = "order_placed"
)

// Event represents a domain event emitted by the auth gate and services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a sortable id and the current time.
func NewEvent(eventType EventType, userID string, payload interface{}) Event {
	now := time.Now().UTC()
	return Event{
		ID:        ulid.Make().String(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: now,
		Payload:   payload,
	}
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRevokedPayload payload. All is set when every session was dropped.
type SessionRevokedPayload struct {
	TokenID string `json:"token_id,omitempty"`
	All     bool   `json:"all"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID   string `json:"order_id"`
	Number    string `json:"number"`
	ItemCount int    `json:"item_count"`
	Quantity  int    `json:"quantity"`
}
