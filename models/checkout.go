package models

import "time"

// CheckoutEvent is published to Kafka when a logged-in session checks out.
// Downstream order processing consumes it; this service only emits.
type CheckoutEvent struct {
	Event     string     `json:"event"` // "checkout.requested"
	SessionID string     `json:"session_id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}
