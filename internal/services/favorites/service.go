// Package favorites manages the household's agreed-on shortlist: listing,
// shared notes and manual removal. Entry into the list happens only through
// swipe consensus, never here.
package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("favorite not found")
	ErrDependenciesNil = errors.New("favorites dependencies are not configured")
)

type Store interface {
	List(ctx context.Context) ([]pgrepo.FavoriteRecord, error)
	UpdateNotes(ctx context.Context, propertyID, notes string, status enums.FavoriteStatus, at time.Time) (bool, error)
	Delete(ctx context.Context, propertyID string) (bool, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]pgrepo.FavoriteRecord, error) {
	if s.store == nil {
		return nil, ErrDependenciesNil
	}
	return s.store.List(ctx)
}

// Update edits the shared notes and active/archived status. Notes are a
// single shared field for the household, not per-user.
func (s *Service) Update(ctx context.Context, propertyID, notes string, status enums.FavoriteStatus) error {
	if propertyID == "" {
		return ErrValidation
	}
	if !status.Valid() {
		return ErrValidation
	}
	if s.store == nil {
		return ErrDependenciesNil
	}

	updated, err := s.store.UpdateNotes(ctx, propertyID, notes, status, s.now().UTC())
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the favorite. The underlying swipes stay, so the property
// does not re-enter the list unless a user swipes it again after it was
// unlocked from the terminal state.
func (s *Service) Remove(ctx context.Context, propertyID string) error {
	if propertyID == "" {
		return ErrValidation
	}
	if s.store == nil {
		return ErrDependenciesNil
	}

	deleted, err := s.store.Delete(ctx, propertyID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
