package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	candidatesvc "github.com/hamiltoon/housing-scout/internal/services/candidates"
)

type candidateMatchStoreStub struct {
	records []pgrepo.CandidateRecord
}

func (s *candidateMatchStoreStub) ListCandidates(context.Context, int, string, string) ([]pgrepo.CandidateRecord, error) {
	return s.records, nil
}

type candidatePrefStub struct{}

func (candidatePrefStub) Get(context.Context) (model.SharedPreference, error) {
	return model.SharedPreference{ID: "pref-1", Query: "2 rooms", Version: 2}, nil
}

func TestCandidatesHandlerList(t *testing.T) {
	yes := enums.SwipeDecisionYes
	store := &candidateMatchStoreStub{records: []pgrepo.CandidateRecord{
		{
			Property:  model.Property{ID: "booli:1", Address: "Hornsgatan 1"},
			Match:     model.PropertyMatch{PropertyID: "booli:1", PreferenceVersion: 2, MatchScore: 0.92},
			DecisionA: &yes,
		},
		{
			Property:  model.Property{ID: "booli:2", Address: "Folkungagatan 8"},
			Match:     model.PropertyMatch{PropertyID: "booli:2", PreferenceVersion: 2, MatchScore: 0.71},
			Favorited: true,
		},
	}}
	svc := candidatesvc.NewService(store, candidatePrefStub{}, nil, candidatesvc.Config{UserA: "alice", UserB: "bob"}, nil)
	h := NewCandidatesHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/candidates", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var payload struct {
		PreferenceVersion int `json:"preference_version"`
		Candidates        []struct {
			PairState string   `json:"pair_state"`
			DecisionA *string  `json:"decision_a"`
			Match     struct {
				MatchScore float64 `json:"match_score"`
			} `json:"match"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if payload.PreferenceVersion != 2 || len(payload.Candidates) != 2 {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
	if payload.Candidates[0].PairState != "pending" || payload.Candidates[0].DecisionA == nil {
		t.Fatalf("unexpected first candidate: %s", rec.Body.String())
	}
	if payload.Candidates[1].PairState != "favorited" {
		t.Fatalf("favorited record must report terminal state: %s", rec.Body.String())
	}
}
