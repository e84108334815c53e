// Package scoutapp wires the scraper-side worker: listing sources, raw
// payload archive, AI matcher and the daily-run scheduler.
package scoutapp

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/config"
	"github.com/hamiltoon/housing-scout/internal/infra/httpclient"
	"github.com/hamiltoon/housing-scout/internal/infra/rawstore"
	s3infra "github.com/hamiltoon/housing-scout/internal/infra/s3"
	"github.com/hamiltoon/housing-scout/internal/jobs/dailyrun"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	redrepo "github.com/hamiltoon/housing-scout/internal/repo/redis"
	"github.com/hamiltoon/housing-scout/internal/scoring"
	ingestsvc "github.com/hamiltoon/housing-scout/internal/services/ingest"
	matchersvc "github.com/hamiltoon/housing-scout/internal/services/matcher"
	prefsvc "github.com/hamiltoon/housing-scout/internal/services/preferences"
	ratesvc "github.com/hamiltoon/housing-scout/internal/services/rate"
	"github.com/hamiltoon/housing-scout/internal/sources"
)

const scraperUserAgent = "housing-scout/1.0"

type App struct {
	cfg      config.Config
	logger   *zap.Logger
	postgres *pgxpool.Pool
	redis    *goredis.Client
	job      *dailyrun.Job
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres init: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	s3Client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init: %w", err)
	}
	if err := s3infra.EnsureBucket(ctx, s3Client, cfg.S3.Bucket); err != nil {
		return nil, fmt.Errorf("ensure raw bucket: %w", err)
	}

	location, err := time.LoadLocation(cfg.Household.Timezone)
	if err != nil {
		log.Warn("invalid household timezone, falling back to UTC",
			zap.String("timezone", cfg.Household.Timezone), zap.Error(err))
		location = time.UTC
	}

	booli := sources.NewBooli(
		httpclient.WithUserAgent(httpclient.New(cfg.Ingest.Booli.RequestTimeout), scraperUserAgent),
		cfg.Ingest.Booli.BaseURL,
		cfg.Ingest.Booli.Area,
		cfg.Ingest.Booli.PageSize,
		log,
	)
	archive := rawstore.New(s3Client, cfg.S3.Bucket)
	ingestService := ingestsvc.NewService([]sources.Source{booli}, archive, log)

	propertyRepo := pgrepo.NewPropertyRepo(pool)
	snapshotRepo := pgrepo.NewSnapshotRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)
	runRepo := pgrepo.NewRunRepo(pool)
	rateRepo := redrepo.NewRateRepo(redisClient)

	preferenceService := prefsvc.NewService(preferenceRepo, nil, log)
	if err := preferenceService.Bootstrap(ctx, cfg.Household.DefaultQuery); err != nil {
		return nil, fmt.Errorf("bootstrap shared preference: %w", err)
	}

	scoringClient := scoring.NewClient(
		httpclient.New(cfg.Scoring.RequestTimeout),
		cfg.Scoring.BaseURL,
		cfg.Scoring.APIKey,
	)
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Scoring.CallsPerMinute)
	matcherService := matchersvc.NewService(scoringClient, matchRepo, rateLimiter, matchersvc.Config{
		BatchSize:     cfg.Scoring.BatchSize,
		MaxAttempts:   cfg.Scoring.MaxAttempts,
		BackoffBase:   cfg.Scoring.BackoffBase,
		MaxConcurrent: cfg.Scoring.MaxConcurrent,
	}, log)

	job := dailyrun.New(dailyrun.Dependencies{
		Pool:          pool,
		Ingestor:      ingestService,
		PropertyStore: propertyRepo,
		SnapshotStore: snapshotRepo,
		RunStore:      runRepo,
		Preferences:   preferenceRepo,
		Evaluator:     matcherService,
	}, location, log)

	return &App{
		cfg:      cfg,
		logger:   log,
		postgres: pool,
		redis:    redisClient,
		job:      job,
	}, nil
}

// Run blocks, executing the daily cycle on the configured interval until
// the context is cancelled. The run ledger makes extra ticks for an
// already-processed date harmless.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Scheduler.RunAtStart {
		if _, err := a.job.Run(ctx); err != nil {
			a.logger.Error("startup daily run failed", zap.Error(err))
		}
	}

	interval := a.cfg.Scheduler.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.job.Run(ctx); err != nil {
				a.logger.Error("scheduled daily run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce executes a single cycle, used by the one-shot CLI mode.
func (a *App) RunOnce(ctx context.Context) error {
	_, err := a.job.Run(ctx)
	return err
}

func (a *App) Shutdown() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
