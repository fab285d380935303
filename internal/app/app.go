package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"HazardScanner/internal/config"
	"HazardScanner/internal/feed"
	"HazardScanner/internal/infrastructure/classifier"
	"HazardScanner/internal/infrastructure/geocode"
	"HazardScanner/internal/infrastructure/geoner"
	"HazardScanner/internal/infrastructure/scheduler"
	"HazardScanner/internal/infrastructure/storage"
	"HazardScanner/internal/infrastructure/trigger"
	"HazardScanner/internal/logging"
	"HazardScanner/internal/usecase"
)

// Application wires configuration to the pipeline and its lifecycle.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sql.DB
	runner  *usecase.Runner
	trigger *trigger.RedisTrigger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repository := storage.NewPostgresRepository(db)

	limiter := geocode.NewRateLimiter(time.Second)
	geocoder := geocode.NewNominatimClient(
		cfg.Geocoder.Endpoint,
		cfg.Geocoder.UserAgent,
		limiter,
		baseLogger.With("component", "geocoder"),
	)

	thresholds := usecase.NewThresholds(repository, baseLogger.With("component", "thresholds"))
	detector := usecase.NewDuplicateDetector(
		repository,
		cfg.Pipeline.DuplicateWindow(),
		baseLogger.With("component", "dedup"),
	)

	processor := usecase.NewProcessor(usecase.ProcessorDeps{
		Fetcher:                 feed.NewFetcher(nil),
		Classifier:              classifier.NewClient(cfg.Classifier.Endpoint, cfg.Classifier.APIKey),
		Locations:               geoner.NewClient(cfg.GeoNER.Endpoint, cfg.GeoNER.APIKey),
		Geocoder:                geocoder,
		Repository:              repository,
		Sources:                 repository,
		Thresholds:              thresholds,
		Detector:                detector,
		Logger:                  baseLogger.With("component", "processor"),
		ClassificationThreshold: cfg.Pipeline.ClassificationThreshold,
		DefaultFeeds:            cfg.Pipeline.DefaultFeeds,
	})

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Processor:   processor,
		Logs:        repository,
		Thresholds:  thresholds,
		Driver:      scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
		Logger:      baseLogger.With("component", "runner"),
		MaxAttempts: cfg.Scheduler.MaxAttempts,
		RunBudget:   cfg.Scheduler.RunBudget(),
	})

	var manualTrigger *trigger.RedisTrigger
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		manualTrigger = trigger.NewRedisTrigger(client, cfg.Redis.Channel, baseLogger.With("component", "trigger"))
	}

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		db:      db,
		runner:  runner,
		trigger: manualTrigger,
	}, nil
}

// Run starts the scheduler and the manual trigger, then blocks until the
// context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() { _ = a.runner.Stop(context.Background()) }()

	if a.trigger != nil {
		handler := func(ctx context.Context, feedURL string) {
			a.runner.ProcessFeedOnce(ctx, feedURL)
		}
		if err := a.trigger.Listen(ctx, handler); err != nil {
			a.logger.Error("manual trigger unavailable", "error", err)
		} else {
			defer func() { _ = a.trigger.Close() }()
		}
	}

	a.logger.Info("hazard scanner started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()

	a.logger.Info("hazard scanner stopping")
	return a.db.Close()
}
