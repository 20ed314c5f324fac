package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrInvalidSeatSelection = errors.New("a request must reference between 1 and 8 seats")
	ErrNothingToCancel      = errors.New("no held seat matches the cancellation request")
	ErrInvalidSeatStatus    = errors.New("invalid seat status")
)

// SeatConflictError reports that a seat is actively held by a different user.
// The whole batch it belonged to was rolled back.
type SeatConflictError struct {
	SeatID int
}

func (e SeatConflictError) Error() string {
	return fmt.Sprintf("seat %d is already held by another user", e.SeatID)
}

// SeatNotHeldError reports that a confirm referenced a seat not currently held
// by the caller. The whole batch it belonged to was rolled back.
type SeatNotHeldError struct {
	SeatID int
}

func (e SeatNotHeldError) Error() string {
	return fmt.Sprintf("seat %d is not held by the requesting user", e.SeatID)
}
