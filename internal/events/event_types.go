package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserLoggedIn        EventType = "user_logged_in"
	EventLoginFailed         EventType = "login_failed"
	EventTokenRefreshed      EventType = "token_refreshed"
	EventUserLoggedOut       EventType = "user_logged_out"
	EventWishlistItemAdded   EventType = "wishlist_item_added"
	EventWishlistItemRemoved EventType = "wishlist_item_removed"
	EventWishlistCleared     EventType = "wishlist_cleared"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, userID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Login  string `json:"login"`
	Reason string `json:"reason"`
}

// WishlistPayload payload.
type WishlistPayload struct {
	ProductID int64 `json:"product_id,omitempty"`
	Count     int   `json:"count"`
}
