package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SeatScheduleStatus string

const (
	SeatStatusAvailable SeatScheduleStatus = "AVAILABLE"
	SeatStatusHold      SeatScheduleStatus = "HOLD"
	SeatStatusBooked    SeatScheduleStatus = "BOOKED"
)

func (s SeatScheduleStatus) Valid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusHold, SeatStatusBooked:
		return true
	}
	return false
}

// SeatSchedule is one seat's booking state for one showing. Rows are created
// when the showing's seat map is materialized and are never deleted; only the
// hold/booking fields mutate, always through a SeatScheduleTx.
type SeatSchedule struct {
	ID                 int64
	ShowtimeID         int
	SeatID             int
	Status             SeatScheduleStatus
	HoldUntil          *time.Time
	HoldByUserID       *int
	HoldByConnectionID *string
	OrderID            *int64
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HoldExpired reports whether the row carries a hold whose TTL has passed.
// An expired hold must be treated as Available by any new hold attempt, even
// if the row has not been swept yet.
func (s *SeatSchedule) HoldExpired(now time.Time) bool {
	return s.Status == SeatStatusHold && s.HoldUntil != nil && s.HoldUntil.Before(now)
}

// HeldBy reports whether the row is currently held by the given user,
// regardless of expiry.
func (s *SeatSchedule) HeldBy(userID int) bool {
	return s.Status == SeatStatusHold && s.HoldByUserID != nil && *s.HoldByUserID == userID
}

// HeldByConnection reports whether the row's hold belongs to the given
// connection and user pair. Both must match.
func (s *SeatSchedule) HeldByConnection(connectionID string, userID int) bool {
	return s.HeldBy(userID) &&
		s.HoldByConnectionID != nil &&
		*s.HoldByConnectionID == connectionID
}

// Holdable reports whether a new hold may be placed: the seat is Available, or
// its current hold has expired.
func (s *SeatSchedule) Holdable(now time.Time) bool {
	return s.Status == SeatStatusAvailable || s.HoldExpired(now)
}

// PlaceHold transitions the row to Hold owned by the given user/connection.
// Callers must check Holdable first; PlaceHold overwrites any previous hold
// metadata unconditionally.
func (s *SeatSchedule) PlaceHold(userID int, connectionID string, until time.Time) {
	s.Status = SeatStatusHold
	s.HoldUntil = &until
	s.HoldByUserID = &userID
	s.HoldByConnectionID = &connectionID
	s.OrderID = nil
}

// Book transitions a held row to Booked, clearing all hold metadata and
// recording the external order reference when one is supplied.
func (s *SeatSchedule) Book(orderID *int64) {
	s.Status = SeatStatusBooked
	s.HoldUntil = nil
	s.HoldByUserID = nil
	s.HoldByConnectionID = nil
	s.OrderID = orderID
}

// ReleaseHold transitions a held row back to Available, clearing all hold
// metadata. Booked rows are never released through this path.
func (s *SeatSchedule) ReleaseHold() {
	s.Status = SeatStatusAvailable
	s.HoldUntil = nil
	s.HoldByUserID = nil
	s.HoldByConnectionID = nil
}

// SeatResult describes one seat transitioned by a hold request.
type SeatResult struct {
	SeatID        int
	Status        SeatScheduleStatus
	HoldUntil     time.Time
	OwnedByCaller bool
}

// HeldSeat is the display read model for "seats currently held by user X for
// showtime Y". It joins seat metadata for rendering and is never used to make
// a holding decision.
type HeldSeat struct {
	SeatID     int
	Row        int
	Col        int
	SeatType   string
	ExtraPrice decimal.Decimal
	HoldUntil  time.Time
}

// SeatScheduleTx is a transactional unit-of-work over seat_schedules rows.
// All reads reflect the latest committed state; Update stages mutations with
// an optimistic version check that is enforced row by row, and Commit makes
// them visible atomically. A version mismatch surfaces as ErrEditConflict and
// leaves no mutation applied.
type SeatScheduleTx interface {
	GetByShowtimeAndSeatIds(ctx context.Context, showtimeID int, seatIDs []int) ([]SeatSchedule, error)
	GetBySeatIds(ctx context.Context, seatIDs []int) ([]SeatSchedule, error)
	GetHeldByUser(ctx context.Context, seatIDs []int, userID int) ([]SeatSchedule, error)
	GetHeldByConnection(ctx context.Context, connectionID string, userID int) ([]SeatSchedule, error)
	GetExpired(ctx context.Context, now time.Time, limit int) ([]SeatSchedule, error)
	Update(ctx context.Context, seats []SeatSchedule) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type SeatScheduleRepository interface {
	Begin(ctx context.Context) (SeatScheduleTx, error)
	GetHeldByUserAndShowtime(ctx context.Context, userID, showtimeID int) ([]HeldSeat, error)
}
