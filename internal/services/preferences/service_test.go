package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

type storeStub struct {
	pref        model.SharedPreference
	updateCalls int
}

func (s *storeStub) Ensure(_ context.Context, defaultQuery string) error {
	if s.pref.ID == "" {
		s.pref = model.SharedPreference{ID: "pref-1", Query: defaultQuery, Version: 1}
	}
	return nil
}

func (s *storeStub) Get(context.Context) (model.SharedPreference, error) {
	return s.pref, nil
}

func (s *storeStub) UpdateQuery(_ context.Context, query string) (model.SharedPreference, error) {
	s.updateCalls++
	s.pref.Query = query
	s.pref.Version++
	return s.pref, nil
}

type cacheStub struct {
	invalidations int
}

func (c *cacheStub) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

func TestUpdateBumpsVersion(t *testing.T) {
	store := &storeStub{pref: model.SharedPreference{ID: "pref-1", Query: "2 rooms", Version: 3}}
	cache := &cacheStub{}
	svc := NewService(store, cache, nil)

	updated, err := svc.Update(context.Background(), "3 rooms with balcony")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 4 || updated.Query != "3 rooms with balcony" {
		t.Fatalf("unexpected preference: %+v", updated)
	}
	if cache.invalidations != 1 {
		t.Fatalf("want cache invalidation, got %d", cache.invalidations)
	}
}

func TestUpdateUnchangedTextIsNoOp(t *testing.T) {
	store := &storeStub{pref: model.SharedPreference{ID: "pref-1", Query: "2 rooms", Version: 3}}
	cache := &cacheStub{}
	svc := NewService(store, cache, nil)

	updated, err := svc.Update(context.Background(), "2 rooms")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 3 {
		t.Fatalf("no-op update must keep version, got %d", updated.Version)
	}
	if store.updateCalls != 0 {
		t.Fatalf("store must not be written on no-op")
	}
	if cache.invalidations != 0 {
		t.Fatalf("no-op must not invalidate cache")
	}
}

func TestUpdateRejectsEmptyQuery(t *testing.T) {
	svc := NewService(&storeStub{}, nil, nil)

	if _, err := svc.Update(context.Background(), "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestBootstrapCreatesSingleton(t *testing.T) {
	store := &storeStub{}
	svc := NewService(store, nil, nil)

	if err := svc.Bootstrap(context.Background(), "2 rooms in sodermalm"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	pref, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if pref.Version != 1 || pref.Query != "2 rooms in sodermalm" {
		t.Fatalf("unexpected bootstrap preference: %+v", pref)
	}
}
