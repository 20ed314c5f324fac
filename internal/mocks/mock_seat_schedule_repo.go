package mocks

import (
	"context"
	"time"

	"github.com/cinex/seat-booking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatScheduleRepo struct {
	mock.Mock
	domain.SeatScheduleRepository
}

func (m *MockSeatScheduleRepo) Begin(ctx context.Context) (domain.SeatScheduleTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.SeatScheduleTx), args.Error(1)
}

func (m *MockSeatScheduleRepo) GetHeldByUserAndShowtime(ctx context.Context, userID, showtimeID int) ([]domain.HeldSeat, error) {
	args := m.Called(ctx, userID, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HeldSeat), args.Error(1)
}

type MockSeatScheduleTx struct {
	mock.Mock
	domain.SeatScheduleTx
}

func (m *MockSeatScheduleTx) GetByShowtimeAndSeatIds(ctx context.Context, showtimeID int, seatIDs []int) ([]domain.SeatSchedule, error) {
	args := m.Called(ctx, showtimeID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatSchedule), args.Error(1)
}

func (m *MockSeatScheduleTx) GetBySeatIds(ctx context.Context, seatIDs []int) ([]domain.SeatSchedule, error) {
	args := m.Called(ctx, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatSchedule), args.Error(1)
}

func (m *MockSeatScheduleTx) GetHeldByUser(ctx context.Context, seatIDs []int, userID int) ([]domain.SeatSchedule, error) {
	args := m.Called(ctx, seatIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatSchedule), args.Error(1)
}

func (m *MockSeatScheduleTx) GetHeldByConnection(ctx context.Context, connectionID string, userID int) ([]domain.SeatSchedule, error) {
	args := m.Called(ctx, connectionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatSchedule), args.Error(1)
}

func (m *MockSeatScheduleTx) GetExpired(ctx context.Context, now time.Time, limit int) ([]domain.SeatSchedule, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatSchedule), args.Error(1)
}

func (m *MockSeatScheduleTx) Update(ctx context.Context, seats []domain.SeatSchedule) error {
	args := m.Called(ctx, seats)
	return args.Error(0)
}

func (m *MockSeatScheduleTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSeatScheduleTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
