package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	swipesvc "github.com/hamiltoon/housing-scout/internal/services/swipes"
)

func performSwipeRequest(t *testing.T, h *SwipeHandler, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/swipes", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return payload.Code
}

func newSwipeHandlerForTest() *SwipeHandler {
	svc := swipesvc.NewService(swipesvc.Dependencies{}, swipesvc.Config{UserA: "alice", UserB: "bob"})
	return NewSwipeHandler(svc, nil, nil)
}

func TestSwipeHandlerRejectsMissingFields(t *testing.T) {
	h := newSwipeHandlerForTest()

	rec := performSwipeRequest(t, h, map[string]any{"user_id": "alice"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if code := decodeAPIError(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestSwipeHandlerRejectsMalformedBody(t *testing.T) {
	h := newSwipeHandlerForTest()

	req := httptest.NewRequest(http.MethodPost, "/v1/swipes", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestSwipeHandlerRejectsOutsideUser(t *testing.T) {
	h := newSwipeHandlerForTest()

	rec := performSwipeRequest(t, h, map[string]any{
		"user_id":     "mallory",
		"property_id": "booli:1",
		"decision":    "yes",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if code := decodeAPIError(t, rec); code != "UNKNOWN_USER" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestSwipeHandlerRejectsUnsupportedDecision(t *testing.T) {
	h := newSwipeHandlerForTest()

	rec := performSwipeRequest(t, h, map[string]any{
		"user_id":     "alice",
		"property_id": "booli:1",
		"decision":    "maybe",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if code := decodeAPIError(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestSwipeHandlerWithoutService(t *testing.T) {
	h := NewSwipeHandler(nil, nil, nil)

	rec := performSwipeRequest(t, h, map[string]any{
		"user_id":     "alice",
		"property_id": "booli:1",
		"decision":    "yes",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
}
