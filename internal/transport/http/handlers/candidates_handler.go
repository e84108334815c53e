package handlers

import (
	"net/http"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/rules"
	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	candidatesvc "github.com/hamiltoon/housing-scout/internal/services/candidates"
	"github.com/hamiltoon/housing-scout/internal/transport/http/dto"
	httperrors "github.com/hamiltoon/housing-scout/internal/transport/http/errors"
)

type CandidatesHandler struct {
	service *candidatesvc.Service
}

func NewCandidatesHandler(service *candidatesvc.Service) *CandidatesHandler {
	return &CandidatesHandler{service: service}
}

func (h *CandidatesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CANDIDATES_SERVICE_UNAVAILABLE", "candidates service is unavailable")
		return
	}

	feed, err := h.service.List(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load candidates")
		return
	}

	items := make([]dto.CandidateItem, 0, len(feed.Candidates))
	for _, record := range feed.Candidates {
		items = append(items, mapCandidate(record))
	}

	httperrors.Write(w, http.StatusOK, dto.CandidatesResponse{
		PreferenceVersion: feed.PreferenceVersion,
		Candidates:        items,
	})
}

func mapCandidate(record pgrepo.CandidateRecord) dto.CandidateItem {
	pairState := rules.PairStateFor(record.DecisionA, record.DecisionB)
	if record.Favorited {
		pairState = enums.PairStateFavorited
	}

	var favoriteStatus *string
	if record.FavoriteStatus != nil {
		v := string(*record.FavoriteStatus)
		favoriteStatus = &v
	}

	return dto.CandidateItem{
		Property:       record.Property,
		Match:          record.Match,
		PairState:      string(pairState),
		DecisionA:      decisionString(record.DecisionA),
		DecisionB:      decisionString(record.DecisionB),
		Favorited:      record.Favorited,
		FavoriteStatus: favoriteStatus,
	}
}
