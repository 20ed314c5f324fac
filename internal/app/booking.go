package app

import (
	"errors"
	"net/http"

	"github.com/cinex/seat-booking/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (app *Application) HoldSeatsHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIntParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input HoldSeatsRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	connectionId := input.ConnectionId
	if connectionId == "" {
		connectionId = app.contextGetConnectionId(r)
	}

	results, err := app.bookingService.HoldSeats(r.Context(), showtimeID, input.SeatIdList, userId, connectionId)
	if err != nil {
		var seatConflict domain.SeatConflictError

		switch {
		case errors.Is(err, domain.ErrInvalidSeatSelection):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.As(err, &seatConflict):
			app.seatConflictResponse(w, r, seatConflict)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.invalidateHeldSeats(r.Context(), userId, showtimeID)

	resp := HoldSeatsResponse{
		ShowtimeId: showtimeID,
		Seats:      toSeatResults(results),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatResults(results []domain.SeatResult) []SeatResult {
	seatResults := make([]SeatResult, len(results))

	for i, v := range results {
		seatResults[i] = SeatResult{
			SeatId:        v.SeatID,
			Status:        string(v.Status),
			HoldUntil:     v.HoldUntil,
			OwnedByCaller: v.OwnedByCaller,
		}
	}

	return seatResults
}

func (app *Application) GetHeldSeatsHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIntParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	heldSeats, ok := app.cachedHeldSeats(r.Context(), userId, showtimeID)
	if !ok {
		heldSeats, err = app.bookingService.HeldSeats(r.Context(), userId, showtimeID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		app.cacheHeldSeats(r.Context(), userId, showtimeID, heldSeats)
	}

	resp := HeldSeatsResponse{
		ShowtimeId: showtimeID,
		Seats:      toHeldSeats(heldSeats),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toHeldSeats(heldSeats []domain.HeldSeat) []HeldSeat {
	seats := make([]HeldSeat, len(heldSeats))

	for i, v := range heldSeats {
		seats[i] = HeldSeat{
			SeatId:     v.SeatID,
			Row:        v.Row,
			Column:     v.Col,
			Type:       v.SeatType,
			ExtraPrice: v.ExtraPrice,
			HoldUntil:  v.HoldUntil,
		}
	}

	return seats
}

func (app *Application) ConfirmSeatsHandler(w http.ResponseWriter, r *http.Request) {
	var input ConfirmSeatsRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	err = app.bookingService.ConfirmSeats(r.Context(), input.SeatIdList, userId, input.OrderId)
	if err != nil {
		var seatNotHeld domain.SeatNotHeldError

		switch {
		case errors.Is(err, domain.ErrInvalidSeatSelection):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.As(err, &seatNotHeld):
			app.seatConflictResponse(w, r, seatNotHeld)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) CancelHoldHandler(w http.ResponseWriter, r *http.Request) {
	var input CancelHoldRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	err = app.bookingService.CancelHold(r.Context(), input.SeatIdList, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSeatSelection):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, domain.ErrNothingToCancel):
			app.errorResponse(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CancelHoldByConnectionHandler releases every hold owned by the given
// connection and the session user. Disconnect cleanup is fire-and-forget, so
// failures are logged and the response is 204 regardless.
func (app *Application) CancelHoldByConnectionHandler(w http.ResponseWriter, r *http.Request) {
	connectionId := chi.URLParam(r, "connectionID")
	if connectionId == "" {
		app.badRequestResponse(w, r, errors.New("missing connectionID parameter"))
		return
	}

	userId := app.contextGetUserId(r)

	err := app.bookingService.CancelHoldByConnection(r.Context(), connectionId, userId)
	if err != nil {
		app.logger.Error(
			"failed to release holds for closed connection",
			"connection_id", connectionId,
			"error", err,
		)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) UpdateSeatStatusHandler(w http.ResponseWriter, r *http.Request) {
	var input UpdateSeatStatusRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	err = app.bookingService.UpdateSeatStatus(r.Context(), input.SeatIdList, domain.SeatScheduleStatus(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSeatSelection), errors.Is(err, domain.ErrInvalidSeatStatus):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
