package app

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request and response payloads for the HTTP surface. The engine itself is
// transport-agnostic; these types are the thin JSON binding around it.

type HoldSeatsRequest struct {
	SeatIdList   []int  `json:"seatIdList" validate:"required,min=1,max=8,dive,gt=0"`
	ConnectionId string `json:"connectionId,omitempty"`
}

type ConfirmSeatsRequest struct {
	SeatIdList []int  `json:"seatIdList" validate:"required,min=1,max=8,dive,gt=0"`
	OrderId    *int64 `json:"orderId,omitempty"`
}

type CancelHoldRequest struct {
	SeatIdList []int `json:"seatIdList" validate:"required,min=1,max=8,dive,gt=0"`
}

type UpdateSeatStatusRequest struct {
	SeatIdList []int  `json:"seatIdList" validate:"required,min=1,max=8,dive,gt=0"`
	Status     string `json:"status" validate:"required,seat_status"`
}

type SeatResult struct {
	SeatId        int       `json:"seatId"`
	Status        string    `json:"status"`
	HoldUntil     time.Time `json:"holdUntil"`
	OwnedByCaller bool      `json:"ownedByCaller"`
}

type HoldSeatsResponse struct {
	ShowtimeId int          `json:"showtimeId"`
	Seats      []SeatResult `json:"seats"`
}

type HeldSeat struct {
	SeatId     int             `json:"seatId"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Type       string          `json:"type"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
	HoldUntil  time.Time       `json:"holdUntil"`
}

type HeldSeatsResponse struct {
	ShowtimeId int        `json:"showtimeId"`
	Seats      []HeldSeat `json:"seats"`
}

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
