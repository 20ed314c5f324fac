package integration_test

import (
	"log/slog"
	"os"

	"github.com/alexedwards/scs/v2"
	"github.com/cinex/seat-booking/internal/app"
	"github.com/cinex/seat-booking/internal/repository"
	appvalidator "github.com/cinex/seat-booking/internal/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TestApp struct {
	App            *app.Application
	DB             *pgxpool.Pool
	SessionManager *scs.SessionManager
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)
	seatScheduleRepo := repository.NewPostgresSeatScheduleRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		sessionManager,
		seatScheduleRepo,
		nil,
	)

	return &TestApp{
		App:            application,
		DB:             db,
		SessionManager: sessionManager,
	}, nil
}
