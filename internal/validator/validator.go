package validator

import (
	"fmt"

	"github.com/cinex/seat-booking/internal/domain"
	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_status", validateSeatStatus)

	return validator
}

func validateSeatStatus(fl validator.FieldLevel) bool {
	status := domain.SeatScheduleStatus(fl.Field().String())

	// Hold is excluded: an administrative transition cannot fabricate a
	// holder, and a hold without one violates the row invariants.
	return status == domain.SeatStatusAvailable || status == domain.SeatStatusBooked
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s items", err.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s items", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "seat_status":
		return "must be either AVAILABLE or BOOKED"
	default:
		return "is invalid"
	}
}
