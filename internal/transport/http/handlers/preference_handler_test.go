package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
	prefsvc "github.com/hamiltoon/housing-scout/internal/services/preferences"
)

type preferenceStoreStub struct {
	pref model.SharedPreference
}

func (s *preferenceStoreStub) Ensure(context.Context, string) error {
	return nil
}

func (s *preferenceStoreStub) Get(context.Context) (model.SharedPreference, error) {
	return s.pref, nil
}

func (s *preferenceStoreStub) UpdateQuery(_ context.Context, query string) (model.SharedPreference, error) {
	s.pref.Query = query
	s.pref.Version++
	return s.pref, nil
}

func newPreferenceHandlerForTest() (*PreferenceHandler, *preferenceStoreStub) {
	store := &preferenceStoreStub{pref: model.SharedPreference{ID: "pref-1", Query: "2 rooms", Version: 1}}
	return NewPreferenceHandler(prefsvc.NewService(store, nil, nil)), store
}

func TestPreferenceHandlerGet(t *testing.T) {
	h, _ := newPreferenceHandlerForTest()

	req := httptest.NewRequest(http.MethodGet, "/v1/preference", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var payload struct {
		Query   string `json:"query"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Query != "2 rooms" || payload.Version != 1 {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestPreferenceHandlerUpdateBumpsVersion(t *testing.T) {
	h, store := newPreferenceHandlerForTest()

	body, _ := json.Marshal(map[string]string{"query": "3 rooms with balcony"})
	req := httptest.NewRequest(http.MethodPut, "/v1/preference", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Version != 2 || store.pref.Query != "3 rooms with balcony" {
		t.Fatalf("unexpected state: payload=%+v store=%+v", payload, store.pref)
	}
}

func TestPreferenceHandlerUpdateRejectsEmptyQuery(t *testing.T) {
	h, _ := newPreferenceHandlerForTest()

	body, _ := json.Marshal(map[string]string{"query": "   "})
	req := httptest.NewRequest(http.MethodPut, "/v1/preference", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}
