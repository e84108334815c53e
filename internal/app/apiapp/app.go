// Package apiapp wires the dashboard-facing HTTP server: candidates feed,
// swipes, favorites, preference and run history.
package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/config"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	redrepo "github.com/hamiltoon/housing-scout/internal/repo/redis"
	candidatesvc "github.com/hamiltoon/housing-scout/internal/services/candidates"
	favoritesvc "github.com/hamiltoon/housing-scout/internal/services/favorites"
	prefsvc "github.com/hamiltoon/housing-scout/internal/services/preferences"
	runsvc "github.com/hamiltoon/housing-scout/internal/services/runs"
	swipesvc "github.com/hamiltoon/housing-scout/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cacheRepo := redrepo.NewCacheRepo(redisClient)

	propertyRepo := pgrepo.NewPropertyRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	favoriteRepo := pgrepo.NewFavoriteRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)
	runRepo := pgrepo.NewRunRepo(pool)
	snapshotRepo := pgrepo.NewSnapshotRepo(pool)

	candidatesService := candidatesvc.NewService(matchRepo, preferenceRepo, cacheRepo, candidatesvc.Config{
		UserA:    cfg.Household.UserA,
		UserB:    cfg.Household.UserB,
		CacheTTL: cfg.Household.CandidatesTTL,
	}, log)
	preferenceService := prefsvc.NewService(preferenceRepo, candidatesService, log)
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:          pool,
		SwipeStore:    swipeRepo,
		FavoriteStore: favoriteRepo,
		PropertyStore: propertyRepo,
	}, swipesvc.Config{
		UserA: cfg.Household.UserA,
		UserB: cfg.Household.UserB,
	})
	favoritesService := favoritesvc.NewService(favoriteRepo)
	runsService := runsvc.NewService(runRepo, snapshotRepo)

	if err := preferenceService.Bootstrap(ctx, cfg.Household.DefaultQuery); err != nil {
		log.Warn("bootstrap shared preference failed, continuing", zap.Error(err))
	}

	RegisterRoutes(r, Dependencies{
		CandidatesService: candidatesService,
		SwipeService:      swipeService,
		FavoritesService:  favoritesService,
		PreferenceService: preferenceService,
		RunsService:       runsService,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
