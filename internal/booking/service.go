// Package booking implements the seat-hold engine: time-boxed holds on
// seat/showtime pairs, transactional promotion to bookings, and release paths.
// All mutations run through a SeatScheduleTx so concurrent requests are
// arbitrated by the row version check at commit time.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cinex/seat-booking/internal/domain"
)

const (
	// DefaultHoldTTL is how long a hold survives before the expiry sweep or a
	// competing hold attempt may reclaim it.
	DefaultHoldTTL = 5 * time.Minute

	// MaxSeatsPerRequest caps the batch size of any seat mutation request.
	MaxSeatsPerRequest = 8

	reapBatchSize = 100
)

type Service struct {
	repo    domain.SeatScheduleRepository
	events  domain.EventPublisher
	logger  *slog.Logger
	metrics *metrics
	holdTTL time.Duration
	now     func() time.Time
}

type Option func(*Service)

// WithHoldTTL overrides the hold time-to-live.
func WithHoldTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.holdTTL = ttl
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo domain.SeatScheduleRepository, events domain.EventPublisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		events:  events,
		logger:  logger,
		metrics: newMetrics(),
		holdTTL: DefaultHoldTTL,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func validateSeatSelection(seatIDs []int) error {
	if len(seatIDs) < 1 || len(seatIDs) > MaxSeatsPerRequest {
		return domain.ErrInvalidSeatSelection
	}
	return nil
}

// HoldSeats places a time-boxed hold on the requested seats for one showing.
// The batch is all-or-nothing: a live hold by a different user aborts the
// whole request with SeatConflictError, and a version conflict at commit
// surfaces ErrEditConflict with nothing applied. Seats already held by the
// caller or already booked are skipped without error; only seats actually
// transitioned appear in the result.
func (s *Service) HoldSeats(ctx context.Context, showtimeID int, seatIDs []int, userID int, connectionID string) ([]domain.SeatResult, error) {
	if err := validateSeatSelection(seatIDs); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	seats, err := tx.GetByShowtimeAndSeatIds(ctx, showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	if len(seats) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	now := s.now()
	until := now.Add(s.holdTTL)
	staged := make([]domain.SeatSchedule, 0, len(seats))

	for i := range seats {
		seat := &seats[i]

		if seat.Status == domain.SeatStatusHold && !seat.HeldBy(userID) && !seat.HoldExpired(now) {
			s.metrics.seatConflicts.Add(ctx, 1)
			return nil, domain.SeatConflictError{SeatID: seat.SeatID}
		}

		if seat.Holdable(now) {
			seat.PlaceHold(userID, connectionID, until)
			staged = append(staged, *seat)
		}
	}

	if len(staged) == 0 {
		// Every seat was either already held by this caller or booked.
		// Re-entrant requests do not error, but they also do not extend TTLs.
		return []domain.SeatResult{}, nil
	}

	if err := s.commit(ctx, tx, staged); err != nil {
		return nil, err
	}

	s.metrics.holdsGranted.Add(ctx, int64(len(staged)))
	s.publish(ctx, domain.SeatEvent{
		Type:       domain.EventSeatsHeld,
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDsOf(staged),
		UserID:     userID,
		OccurredAt: now,
	})

	results := make([]domain.SeatResult, len(staged))
	for i, seat := range staged {
		results[i] = domain.SeatResult{
			SeatID:        seat.SeatID,
			Status:        seat.Status,
			HoldUntil:     until,
			OwnedByCaller: true,
		}
	}

	return results, nil
}

// ConfirmSeats promotes the caller's holds to bookings. Every requested seat
// must currently be held by the caller; otherwise the whole batch aborts with
// SeatNotHeldError so an order is never partially confirmed. The optional
// order reference is recorded on each booked row.
func (s *Service) ConfirmSeats(ctx context.Context, seatIDs []int, userID int, orderID *int64) error {
	if err := validateSeatSelection(seatIDs); err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	seats, err := tx.GetHeldByUser(ctx, seatIDs, userID)
	if err != nil {
		return err
	}

	if len(seats) == 0 {
		return domain.ErrRecordNotFound
	}

	held := make(map[int]bool, len(seats))
	for _, seat := range seats {
		held[seat.SeatID] = true
	}

	for _, seatID := range seatIDs {
		if !held[seatID] {
			return domain.SeatNotHeldError{SeatID: seatID}
		}
	}

	for i := range seats {
		seats[i].Book(orderID)
	}

	if err := s.commit(ctx, tx, seats); err != nil {
		return err
	}

	s.publish(ctx, domain.SeatEvent{
		Type:       domain.EventSeatsBooked,
		ShowtimeID: showtimeIDOf(seats),
		SeatIDs:    seatIDsOf(seats),
		UserID:     userID,
		OccurredAt: s.now(),
	})

	return nil
}

// CancelHold releases the caller's holds on the requested seats. Seats not
// held by the caller are ignored, making cancellation idempotent per seat, but
// the call fails with ErrNothingToCancel when no seat matched at all.
func (s *Service) CancelHold(ctx context.Context, seatIDs []int, userID int) error {
	if err := validateSeatSelection(seatIDs); err != nil {
		return err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	seats, err := tx.GetHeldByUser(ctx, seatIDs, userID)
	if err != nil {
		return err
	}

	if len(seats) == 0 {
		return domain.ErrNothingToCancel
	}

	for i := range seats {
		seats[i].ReleaseHold()
	}

	if err := s.commit(ctx, tx, seats); err != nil {
		return err
	}

	s.publish(ctx, domain.SeatEvent{
		Type:       domain.EventHoldReleased,
		ShowtimeID: showtimeIDOf(seats),
		SeatIDs:    seatIDsOf(seats),
		UserID:     userID,
		OccurredAt: s.now(),
	})

	return nil
}

// CancelHoldByConnection releases every hold owned by the exact
// (connectionID, userID) pair. Disconnects are routine, so no match is a
// silent no-op.
func (s *Service) CancelHoldByConnection(ctx context.Context, connectionID string, userID int) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	seats, err := tx.GetHeldByConnection(ctx, connectionID, userID)
	if err != nil {
		return err
	}

	if len(seats) == 0 {
		return nil
	}

	for i := range seats {
		seats[i].ReleaseHold()
	}

	if err := s.commit(ctx, tx, seats); err != nil {
		return err
	}

	s.publish(ctx, domain.SeatEvent{
		Type:       domain.EventHoldReleased,
		ShowtimeID: showtimeIDOf(seats),
		SeatIDs:    seatIDsOf(seats),
		UserID:     userID,
		OccurredAt: s.now(),
	})

	return nil
}

// UpdateSeatStatus is an administrative bulk transition without ownership
// checks, used by operational tooling outside the booking flow. Transitioning
// to Hold is rejected because a hold without a holder would violate the row
// invariants.
func (s *Service) UpdateSeatStatus(ctx context.Context, seatIDs []int, status domain.SeatScheduleStatus) error {
	if err := validateSeatSelection(seatIDs); err != nil {
		return err
	}

	if !status.Valid() || status == domain.SeatStatusHold {
		return domain.ErrInvalidSeatStatus
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	seats, err := tx.GetBySeatIds(ctx, seatIDs)
	if err != nil {
		return err
	}

	if len(seats) == 0 {
		return domain.ErrRecordNotFound
	}

	for i := range seats {
		switch status {
		case domain.SeatStatusAvailable:
			seats[i].ReleaseHold()
		case domain.SeatStatusBooked:
			seats[i].Book(nil)
		}
	}

	return s.commit(ctx, tx, seats)
}

// ReleaseExpiredHolds sweeps holds whose TTL has elapsed back to Available, in
// bounded batches, and reports how many seats were reclaimed. A concurrency
// conflict means a user confirmed or cancelled a swept seat first; the sweep
// gives up for this cycle and the next tick retries.
func (s *Service) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	total := 0

	for {
		n, err := s.releaseExpiredBatch(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n < reapBatchSize {
			return total, nil
		}
	}
}

func (s *Service) releaseExpiredBatch(ctx context.Context) (int, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	now := s.now()

	seats, err := tx.GetExpired(ctx, now, reapBatchSize)
	if err != nil {
		return 0, err
	}

	if len(seats) == 0 {
		return 0, nil
	}

	byShowtime := make(map[int][]int)
	for i := range seats {
		byShowtime[seats[i].ShowtimeID] = append(byShowtime[seats[i].ShowtimeID], seats[i].SeatID)
		seats[i].ReleaseHold()
	}

	if err := s.commit(ctx, tx, seats); err != nil {
		return 0, err
	}

	s.metrics.reapedHolds.Add(ctx, int64(len(seats)))

	for showtimeID, seatIDs := range byShowtime {
		s.publish(ctx, domain.SeatEvent{
			Type:       domain.EventHoldExpired,
			ShowtimeID: showtimeID,
			SeatIDs:    seatIDs,
			OccurredAt: now,
		})
	}

	return len(seats), nil
}

// HeldSeats returns the display read model for the caller's in-progress
// selection. The read bypasses the unit-of-work and must never feed a holding
// decision.
func (s *Service) HeldSeats(ctx context.Context, userID, showtimeID int) ([]domain.HeldSeat, error) {
	return s.repo.GetHeldByUserAndShowtime(ctx, userID, showtimeID)
}

func (s *Service) commit(ctx context.Context, tx domain.SeatScheduleTx, staged []domain.SeatSchedule) error {
	if err := tx.Update(ctx, staged); err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			s.metrics.editConflicts.Add(ctx, 1)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			s.metrics.editConflicts.Add(ctx, 1)
		}
		return err
	}

	return nil
}

func (s *Service) publish(ctx context.Context, event domain.SeatEvent) {
	if s.events == nil {
		return
	}

	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish seat event", "type", event.Type, "error", err)
	}
}

func seatIDsOf(seats []domain.SeatSchedule) []int {
	ids := make([]int, len(seats))
	for i, seat := range seats {
		ids[i] = seat.SeatID
	}
	return ids
}

func showtimeIDOf(seats []domain.SeatSchedule) int {
	if len(seats) == 0 {
		return 0
	}
	return seats[0].ShowtimeID
}
