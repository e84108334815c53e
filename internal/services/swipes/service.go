// Package swipes records per-user decisions on scored listings and drives
// the two-person consensus state machine: a property both users said yes
// to becomes a favorite, exactly once.
package swipes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/rules"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrUnknownUser         = errors.New("user is not part of the household")
	ErrUnsupportedDecision = errors.New("unsupported decision")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrAlreadyFavorited    = errors.New("property already favorited")
	ErrDependenciesNil     = errors.New("swipe dependencies are not configured")
)

type SwipeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, userID, propertyID string, decision enums.SwipeDecision, at time.Time) error
	PairDecisions(ctx context.Context, tx pgx.Tx, propertyID, userA, userB string) (*enums.SwipeDecision, *enums.SwipeDecision, error)
}

type FavoriteStore interface {
	Exists(ctx context.Context, tx pgx.Tx, propertyID string) (bool, error)
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, propertyID string, at time.Time) (bool, error)
}

type PropertyStore interface {
	Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error)
}

type Config struct {
	UserA string
	UserB string
}

type Result struct {
	PairState       enums.PairState
	FavoriteCreated bool
	DecisionA       *enums.SwipeDecision
	DecisionB       *enums.SwipeDecision
}

type Service struct {
	pool          *pgxpool.Pool
	swipeStore    SwipeStore
	favoriteStore FavoriteStore
	propertyStore PropertyStore
	cfg           Config
	now           func() time.Time
	runTx         func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
	lock          func(ctx context.Context, tx pgx.Tx, key string) error
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	SwipeStore    SwipeStore
	FavoriteStore FavoriteStore
	PropertyStore PropertyStore
}

func NewService(deps Dependencies, cfg Config) *Service {
	return &Service{
		pool:          deps.Pool,
		swipeStore:    deps.SwipeStore,
		favoriteStore: deps.FavoriteStore,
		propertyStore: deps.PropertyStore,
		cfg:           cfg,
		now:           time.Now,
		runTx:         pgrepo.WithTx,
		lock:          pgrepo.LockKey,
	}
}

// Submit records one user's decision and resolves the pair state inside a
// single transaction. An advisory lock on the property id serializes the
// two users' concurrent submissions, so the both-yes transition creates the
// favorite exactly once. Re-deciding is last-write-wins until the favorite
// exists; after that the property is terminal and further swipes are
// rejected.
func (s *Service) Submit(ctx context.Context, userID, propertyID string, decision enums.SwipeDecision) (Result, error) {
	userID = strings.TrimSpace(userID)
	propertyID = strings.TrimSpace(propertyID)
	if userID == "" || propertyID == "" {
		return Result{}, ErrValidation
	}
	if userID != s.cfg.UserA && userID != s.cfg.UserB {
		return Result{}, ErrUnknownUser
	}
	if !decision.Valid() {
		return Result{}, ErrUnsupportedDecision
	}
	if s.swipeStore == nil || s.favoriteStore == nil || s.propertyStore == nil {
		return Result{}, ErrDependenciesNil
	}

	now := s.now().UTC()

	var result Result
	err := s.runTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.lock(txCtx, tx, "swipe:"+propertyID); err != nil {
			return err
		}

		exists, err := s.propertyStore.Exists(txCtx, tx, propertyID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrPropertyNotFound
		}

		favorited, err := s.favoriteStore.Exists(txCtx, tx, propertyID)
		if err != nil {
			return err
		}
		if favorited {
			return ErrAlreadyFavorited
		}

		if err := s.swipeStore.Upsert(txCtx, tx, userID, propertyID, decision, now); err != nil {
			return err
		}

		decisionA, decisionB, err := s.swipeStore.PairDecisions(txCtx, tx, propertyID, s.cfg.UserA, s.cfg.UserB)
		if err != nil {
			return err
		}

		result.DecisionA = decisionA
		result.DecisionB = decisionB
		result.PairState = rules.PairStateFor(decisionA, decisionB)

		if result.PairState == enums.PairStateFavorited {
			created, err := s.favoriteStore.CreateIfAbsent(txCtx, tx, propertyID, now)
			if err != nil {
				return err
			}
			result.FavoriteCreated = created
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

// PairState reads the current consensus state without recording anything.
func (s *Service) PairState(ctx context.Context, propertyID string) (Result, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return Result{}, ErrValidation
	}
	if s.swipeStore == nil || s.favoriteStore == nil {
		return Result{}, ErrDependenciesNil
	}

	var result Result
	err := s.runTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		favorited, err := s.favoriteStore.Exists(txCtx, tx, propertyID)
		if err != nil {
			return err
		}

		decisionA, decisionB, err := s.swipeStore.PairDecisions(txCtx, tx, propertyID, s.cfg.UserA, s.cfg.UserB)
		if err != nil {
			return err
		}

		result.DecisionA = decisionA
		result.DecisionB = decisionB
		if favorited {
			result.PairState = enums.PairStateFavorited
			return nil
		}
		result.PairState = rules.PairStateFor(decisionA, decisionB)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}
