package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/cinex/seat-booking/internal/booking"
	"github.com/cinex/seat-booking/internal/domain"
	"github.com/cinex/seat-booking/internal/queue"
	"github.com/cinex/seat-booking/internal/repository"
	appvalidator "github.com/cinex/seat-booking/internal/validator"
	"github.com/cinex/seat-booking/internal/vcs"
	"github.com/cinex/seat-booking/internal/worker"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager

	seatScheduleRepo domain.SeatScheduleRepository
	bookingService   *booking.Service
	reaper           *worker.Reaper

	rabbitConn *amqp.Connection
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	AdminToken       string
	DB               DBConfig
	Redis            RedisConfig
	Rabbit           RabbitConfig
	Booking          BookingConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	AutoMigrate  bool
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type RabbitConfig struct {
	URL string
}

type BookingConfig struct {
	HoldTTL        time.Duration
	ReaperInterval time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")
	flag.StringVar(&cfg.AdminToken, "admin-token", "", "Token required by administrative endpoints")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")
	flag.BoolVar(&cfg.DB.AutoMigrate, "db-automigrate", false, "Apply schema migrations on startup")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.Rabbit.URL, "rabbit-url", "", "RabbitMQ URL (empty disables event publishing)")

	flag.DurationVar(&cfg.Booking.HoldTTL, "hold-ttl", booking.DefaultHoldTTL, "Seat hold time-to-live")
	flag.DurationVar(&cfg.Booking.ReaperInterval, "reaper-interval", time.Minute, "Expired hold sweep interval")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	app, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Serve()
}

// New wires the application from configuration. The caller owns the returned
// Application and must Close it.
func New(cfg Config, logger *slog.Logger) (*Application, error) {
	if cfg.DB.AutoMigrate {
		err := repository.MigrateUp(cfg.DB.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	var events domain.EventPublisher
	var rabbitConn *amqp.Connection

	if cfg.Rabbit.URL != "" {
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			redisClient.Close()
			db.Close()
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}

		publisher, err := queue.NewRabbitPublisher(conn)
		if err != nil {
			conn.Close()
			redisClient.Close()
			db.Close()
			return nil, err
		}

		rabbitConn = conn
		events = publisher
	}

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		NewSessionManager(redisClient),
		repository.NewPostgresSeatScheduleRepository(db),
		events,
	)
	app.rabbitConn = rabbitConn

	return app, nil
}

// NewApp assembles an Application from already-constructed collaborators.
// Integration tests use it to wire an app backed by containers.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validate *validator.Validate,
	sessionManager *scs.SessionManager,
	seatScheduleRepo domain.SeatScheduleRepository,
	events domain.EventPublisher,
) *Application {
	opts := []booking.Option{}
	if cfg.Booking.HoldTTL > 0 {
		opts = append(opts, booking.WithHoldTTL(cfg.Booking.HoldTTL))
	}

	bookingService := booking.NewService(seatScheduleRepo, events, logger, opts...)

	reaperInterval := cfg.Booking.ReaperInterval
	if reaperInterval <= 0 {
		reaperInterval = time.Minute
	}

	return &Application{
		config:           cfg,
		logger:           logger,
		db:               db,
		redis:            redisClient,
		validator:        validate,
		sessionManager:   sessionManager,
		seatScheduleRepo: seatScheduleRepo,
		bookingService:   bookingService,
		reaper:           worker.NewReaper(bookingService, logger, reaperInterval),
	}
}

func (app *Application) Close() {
	if app.rabbitConn != nil {
		app.rabbitConn.Close()
	}
	if app.redis != nil {
		app.redis.Close()
	}
	if app.db != nil {
		app.db.Close()
	}
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Serve starts the HTTP server and the expiry reaper, and shuts both down
// gracefully on SIGINT/SIGTERM.
func (app *Application) Serve() error {
	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	reaperCtx, cancelReaper := context.WithCancel(context.Background())
	defer cancelReaper()

	go app.reaper.Start(reaperCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cancelReaper()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
