package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cinex/seat-booking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// heldSeatsCacheTTL is deliberately far below the hold TTL so the display
// path can never show a selection long after it stopped being true.
const heldSeatsCacheTTL = 15 * time.Second

func heldSeatsCacheKey(userId, showtimeId int) string {
	return fmt.Sprintf("held_seats:%d:%d", userId, showtimeId)
}

func (app *Application) cachedHeldSeats(ctx context.Context, userId, showtimeId int) ([]domain.HeldSeat, bool) {
	data, err := app.redis.Get(ctx, heldSeatsCacheKey(userId, showtimeId)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			app.logger.Warn("failed to read held seats cache", "error", err)
		}
		return nil, false
	}

	var heldSeats []domain.HeldSeat

	err = json.Unmarshal(data, &heldSeats)
	if err != nil {
		app.logger.Warn("failed to unmarshal held seats cache", "error", err)
		return nil, false
	}

	return heldSeats, true
}

func (app *Application) cacheHeldSeats(ctx context.Context, userId, showtimeId int, heldSeats []domain.HeldSeat) {
	data, err := json.Marshal(heldSeats)
	if err != nil {
		app.logger.Warn("failed to marshal held seats for cache", "error", err)
		return
	}

	err = app.redis.Set(ctx, heldSeatsCacheKey(userId, showtimeId), data, heldSeatsCacheTTL).Err()
	if err != nil {
		app.logger.Warn("failed to write held seats cache", "error", err)
	}
}

func (app *Application) invalidateHeldSeats(ctx context.Context, userId, showtimeId int) {
	err := app.redis.Del(ctx, heldSeatsCacheKey(userId, showtimeId)).Err()
	if err != nil {
		app.logger.Warn("failed to invalidate held seats cache", "error", err)
	}
}
