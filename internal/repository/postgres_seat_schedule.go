package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinex/seat-booking/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresSeatScheduleRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatScheduleRepository(db *pgxpool.Pool) *PostgresSeatScheduleRepository {
	return &PostgresSeatScheduleRepository{
		db: db,
	}
}

// Begin opens a transactional unit-of-work over seat_schedules. Reads inside
// it see the latest committed state; the version check in Update arbitrates
// the gap between read and commit.
func (p *PostgresSeatScheduleRepository) Begin(ctx context.Context) (domain.SeatScheduleTx, error) {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}

	return &seatScheduleTx{tx: tx}, nil
}

func (p *PostgresSeatScheduleRepository) GetHeldByUserAndShowtime(
	ctx context.Context,
	userID,
	showtimeID int) ([]domain.HeldSeat, error) {

	query := `
		SELECT ss.seat_id, se.seat_row, se.seat_col, se.seat_type, se.extra_price, ss.hold_until
		FROM seat_schedules ss
		JOIN seats se ON ss.seat_id = se.id
		WHERE ss.hold_by_user_id = $1 AND ss.showtime_id = $2 AND ss.status = 'HOLD'
		ORDER BY se.seat_row, se.seat_col
	`

	rows, err := p.db.Query(ctx, query, userID, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	heldSeats := make([]domain.HeldSeat, 0)

	for rows.Next() {
		var heldSeat domain.HeldSeat
		var extraPrice pgtype.Numeric

		err = rows.Scan(
			&heldSeat.SeatID,
			&heldSeat.Row,
			&heldSeat.Col,
			&heldSeat.SeatType,
			&extraPrice,
			&heldSeat.HoldUntil,
		)
		if err != nil {
			return nil, err
		}

		heldSeat.ExtraPrice = toDecimal(extraPrice)

		heldSeats = append(heldSeats, heldSeat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return heldSeats, nil
}

func toDecimal(numeric pgtype.Numeric) decimal.Decimal {
	if !numeric.Valid {
		return decimal.Zero
	}

	value, err := numeric.Float64Value()
	if err != nil {
		return decimal.Zero
	}

	return decimal.NewFromFloat(value.Float64)
}

type seatScheduleTx struct {
	tx pgx.Tx
}

const seatScheduleColumns = `
	id, showtime_id, seat_id, status, hold_until,
	hold_by_user_id, hold_by_connection_id, order_id, version, created_at, updated_at
`

func (t *seatScheduleTx) GetByShowtimeAndSeatIds(
	ctx context.Context,
	showtimeID int,
	seatIDs []int) ([]domain.SeatSchedule, error) {

	query := `
		SELECT ` + seatScheduleColumns + `
		FROM seat_schedules
		WHERE showtime_id = $1 AND seat_id = ANY($2)
		ORDER BY seat_id
	`

	rows, err := t.tx.Query(ctx, query, showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}

	return collectSeatSchedules(rows)
}

func (t *seatScheduleTx) GetBySeatIds(ctx context.Context, seatIDs []int) ([]domain.SeatSchedule, error) {
	query := `
		SELECT ` + seatScheduleColumns + `
		FROM seat_schedules
		WHERE seat_id = ANY($1)
		ORDER BY seat_id
	`

	rows, err := t.tx.Query(ctx, query, seatIDs)
	if err != nil {
		return nil, err
	}

	return collectSeatSchedules(rows)
}

func (t *seatScheduleTx) GetHeldByUser(ctx context.Context, seatIDs []int, userID int) ([]domain.SeatSchedule, error) {
	query := `
		SELECT ` + seatScheduleColumns + `
		FROM seat_schedules
		WHERE seat_id = ANY($1) AND status = 'HOLD' AND hold_by_user_id = $2
		ORDER BY seat_id
	`

	rows, err := t.tx.Query(ctx, query, seatIDs, userID)
	if err != nil {
		return nil, err
	}

	return collectSeatSchedules(rows)
}

func (t *seatScheduleTx) GetHeldByConnection(
	ctx context.Context,
	connectionID string,
	userID int) ([]domain.SeatSchedule, error) {

	query := `
		SELECT ` + seatScheduleColumns + `
		FROM seat_schedules
		WHERE hold_by_connection_id = $1 AND hold_by_user_id = $2 AND status = 'HOLD'
		ORDER BY seat_id
	`

	rows, err := t.tx.Query(ctx, query, connectionID, userID)
	if err != nil {
		return nil, err
	}

	return collectSeatSchedules(rows)
}

func (t *seatScheduleTx) GetExpired(ctx context.Context, now time.Time, limit int) ([]domain.SeatSchedule, error) {
	query := `
		SELECT ` + seatScheduleColumns + `
		FROM seat_schedules
		WHERE status = 'HOLD' AND hold_until <= $1
		ORDER BY hold_until
		LIMIT $2
	`

	rows, err := t.tx.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}

	return collectSeatSchedules(rows)
}

// Update stages the given rows with an optimistic check: each UPDATE only
// matches when the stored version still equals the version the row was read
// at. Zero rows affected means another transaction won the race and the whole
// unit-of-work must be rolled back.
func (t *seatScheduleTx) Update(ctx context.Context, seats []domain.SeatSchedule) error {
	query := `
		UPDATE seat_schedules
		SET status = $1,
			hold_until = $2,
			hold_by_user_id = $3,
			hold_by_connection_id = $4,
			order_id = $5,
			version = version + 1,
			updated_at = now()
		WHERE id = $6 AND version = $7
	`

	batch := &pgx.Batch{}
	for _, seat := range seats {
		batch.Queue(
			query,
			seat.Status,
			seat.HoldUntil,
			seat.HoldByUserID,
			seat.HoldByConnectionID,
			seat.OrderID,
			seat.ID,
			seat.Version,
		)
	}

	results := t.tx.SendBatch(ctx, batch)

	for range seats {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return mapConflict(err)
		}

		if tag.RowsAffected() == 0 {
			results.Close()
			return domain.ErrEditConflict
		}
	}

	return results.Close()
}

func (t *seatScheduleTx) Commit(ctx context.Context) error {
	return mapConflict(t.tx.Commit(ctx))
}

// Rollback discards all staged mutations. Calling it after a successful
// Commit is a no-op, which lets callers defer it unconditionally.
func (t *seatScheduleTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

// mapConflict converts Postgres serialization failures into the domain's
// concurrency conflict sentinel so callers handle one error either way the
// race is detected.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure {
		return domain.ErrEditConflict
	}

	return err
}

func collectSeatSchedules(rows pgx.Rows) ([]domain.SeatSchedule, error) {
	defer rows.Close()

	seats := make([]domain.SeatSchedule, 0)

	for rows.Next() {
		var seat domain.SeatSchedule

		err := rows.Scan(
			&seat.ID,
			&seat.ShowtimeID,
			&seat.SeatID,
			&seat.Status,
			&seat.HoldUntil,
			&seat.HoldByUserID,
			&seat.HoldByConnectionID,
			&seat.OrderID,
			&seat.Version,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
