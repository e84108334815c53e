package favorites

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
)

type storeStub struct {
	records  []pgrepo.FavoriteRecord
	updated  map[string]string
	deleted  map[string]bool
	updateOK bool
	deleteOK bool
}

func (s *storeStub) List(context.Context) ([]pgrepo.FavoriteRecord, error) {
	return s.records, nil
}

func (s *storeStub) UpdateNotes(_ context.Context, propertyID, notes string, _ enums.FavoriteStatus, _ time.Time) (bool, error) {
	if s.updated == nil {
		s.updated = map[string]string{}
	}
	if !s.updateOK {
		return false, nil
	}
	s.updated[propertyID] = notes
	return true, nil
}

func (s *storeStub) Delete(_ context.Context, propertyID string) (bool, error) {
	if s.deleted == nil {
		s.deleted = map[string]bool{}
	}
	if !s.deleteOK {
		return false, nil
	}
	s.deleted[propertyID] = true
	return true, nil
}

func TestListReturnsRecords(t *testing.T) {
	store := &storeStub{records: []pgrepo.FavoriteRecord{
		{Favorite: model.FavoriteProperty{PropertyID: "booli:1", Status: enums.FavoriteStatusActive}},
	}}
	svc := NewService(store)

	records, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Favorite.PropertyID != "booli:1" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestUpdateValidatesAndPersists(t *testing.T) {
	store := &storeStub{updateOK: true}
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.Update(ctx, "", "note", enums.FavoriteStatusActive); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty id: %v", err)
	}
	if err := svc.Update(ctx, "booli:1", "note", enums.FavoriteStatus("weird")); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad status: %v", err)
	}
	if err := svc.Update(ctx, "booli:1", "viewing on saturday", enums.FavoriteStatusArchived); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.updated["booli:1"] != "viewing on saturday" {
		t.Fatalf("notes not persisted: %v", store.updated)
	}
}

func TestUpdateMissingFavorite(t *testing.T) {
	svc := NewService(&storeStub{updateOK: false})

	if err := svc.Update(context.Background(), "booli:404", "note", enums.FavoriteStatusActive); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	store := &storeStub{deleteOK: true}
	svc := NewService(store)

	if err := svc.Remove(context.Background(), "booli:1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !store.deleted["booli:1"] {
		t.Fatalf("delete not applied")
	}

	svc = NewService(&storeStub{deleteOK: false})
	if err := svc.Remove(context.Background(), "booli:404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}
