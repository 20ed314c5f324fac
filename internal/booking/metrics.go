package booking

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	holdsGranted  metric.Int64Counter
	seatConflicts metric.Int64Counter
	editConflicts metric.Int64Counter
	reapedHolds   metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter("github.com/cinex/seat-booking/internal/booking")

	holdsGranted, _ := meter.Int64Counter("booking.holds_granted",
		metric.WithDescription("Seats transitioned to Hold"))
	seatConflicts, _ := meter.Int64Counter("booking.seat_conflicts",
		metric.WithDescription("Hold requests rejected because a seat was held by another user"))
	editConflicts, _ := meter.Int64Counter("booking.edit_conflicts",
		metric.WithDescription("Batches rolled back by the optimistic version check"))
	reapedHolds, _ := meter.Int64Counter("booking.reaped_holds",
		metric.WithDescription("Expired holds released by the sweep"))

	return &metrics{
		holdsGranted:  holdsGranted,
		seatConflicts: seatConflicts,
		editConflicts: editConflicts,
		reapedHolds:   reapedHolds,
	}
}
