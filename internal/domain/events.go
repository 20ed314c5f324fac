package domain

import (
	"context"
	"time"
)

// Seat lifecycle event types published after successful commits so external
// collaborators (order aggregate, realtime transport) can react.
const (
	EventSeatsHeld    = "seats.held"
	EventSeatsBooked  = "seats.booked"
	EventHoldReleased = "hold.released"
	EventHoldExpired  = "hold.expired"
)

type SeatEvent struct {
	Type       string    `json:"type"`
	ShowtimeID int       `json:"showtime_id,omitempty"`
	SeatIDs    []int     `json:"seat_ids"`
	UserID     int       `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers seat lifecycle events best-effort. Publishing
// happens after the owning transaction committed; failures must never undo or
// block the booking path.
type EventPublisher interface {
	Publish(ctx context.Context, event SeatEvent) error
}
