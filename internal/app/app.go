// Package app wires every component of the service.
// app.go is the assembly point: it opens the store, builds repositories,
// services and handlers, and puts them behind one HTTP engine.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/config"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/db/memory"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/db/postgres"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/attendance"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/points"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reputation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reviews"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/jobs"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/notify"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/server"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/server/middleware"
)

// Store is everything the features need from storage.
type Store interface {
	meetups.Repository
	participation.Repository
	attendance.Repository
	reviews.Repository
	points.Repository
	reputation.StatsSource
}

// App holds the running components.
type App struct {
	Router      *gin.Engine
	Scheduler   *jobs.Scheduler
	Dispatcher  *notify.Dispatcher
	RateLimiter *middleware.RateLimiter
	DB          *pgxpool.Pool // nil with the memory driver

	Meetups    *meetups.Service
	Attendance *attendance.Service
}

// New creates and initialises the application.
// Initialisation order matters: components depend on each other.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := common.LoadLocation(cfg.AppTimezone)

	// === 1. Storage ===
	var (
		store Store
		pool  *pgxpool.Pool
	)
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("Using in-memory storage, data is lost on restart")
		store = memory.New()
	default:
		var err error
		pool, err = postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := runMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		store = postgres.NewStore(pool)
	}

	// === 2. Notifications ===
	sinks := []notify.Sink{notify.LogSink{}}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramChatID, loc)
		if err != nil {
			log.WithError(err).Warn("Telegram notifications disabled")
		} else {
			sinks = append(sinks, tg)
		}
	}
	dispatcher := notify.NewDispatcher(cfg.NotifyQueueSize, sinks...)
	dispatcher.Start(ctx)

	// === 3. Services ===
	policy, err := reputation.LoadPolicy(cfg.ReputationPolicyFile)
	if err != nil {
		dispatcher.Close()
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("reputation policy: %w", err)
	}

	meetupService := meetups.NewService(store, dispatcher, cfg)
	participationService := participation.NewService(store, dispatcher, cfg)
	pointsService := points.NewService(store, loc)
	attendanceService := attendance.NewService(store, pointsService, dispatcher, cfg)
	reputationService := reputation.NewService(store, policy)
	reviewService := reviews.NewService(store, reputationService)

	// === 4. HTTP ===
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	var health server.HealthFunc
	if pool != nil {
		health = pool.Ping
	}
	router := server.NewRouter(cfg, limiter, health,
		meetups.NewHandler(meetupService),
		participation.NewHandler(participationService),
		attendance.NewHandler(attendanceService),
		reviews.NewHandler(reviewService),
		points.NewHandler(pointsService),
		reputation.NewHandler(reputationService),
	)

	// === 5. Scheduler ===
	scheduler := jobs.NewScheduler(meetupService, cfg.JobsCompletionSpec, loc)

	return &App{
		Router:      router,
		Scheduler:   scheduler,
		Dispatcher:  dispatcher,
		RateLimiter: limiter,
		DB:          pool,
		Meetups:     meetupService,
		Attendance:  attendanceService,
	}, nil
}

// Close releases everything New acquired. The scheduler is stopped by the
// caller that started it.
func (a *App) Close() {
	a.RateLimiter.Close()
	a.Dispatcher.Close()
	if a.DB != nil {
		a.DB.Close()
	}
}

// runMigrations applies every SQL migration in order.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.PrepareMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Meetups},
		{2, migration002Participations},
		{3, migration003Attendance},
		{4, migration004Reviews},
		{5, migration005Points},
	}

	for _, m := range migrations {
		applied, err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql)
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if applied {
			log.Infof("Migration %d applied", m.version)
		}
	}

	return nil
}
