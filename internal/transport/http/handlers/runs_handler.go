package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/hamiltoon/housing-scout/internal/repo/postgres"
	runsvc "github.com/hamiltoon/housing-scout/internal/services/runs"
	"github.com/hamiltoon/housing-scout/internal/transport/http/dto"
	httperrors "github.com/hamiltoon/housing-scout/internal/transport/http/errors"
)

type RunsHandler struct {
	service *runsvc.Service
}

func NewRunsHandler(service *runsvc.Service) *RunsHandler {
	return &RunsHandler{service: service}
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "RUNS_SERVICE_UNAVAILABLE", "runs service is unavailable")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	runs, err := h.service.History(r.Context(), limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load run history")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RunsResponse{Runs: runs})
}

func (h *RunsHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "RUNS_SERVICE_UNAVAILABLE", "runs service is unavailable")
		return
	}

	run, entries, err := h.service.ByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		switch {
		case errors.Is(err, runsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "run date is required")
		case errors.Is(err, pgrepo.ErrRunNotFound):
			writeNotFound(w, "RUN_NOT_FOUND", "no run recorded for that date")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load run")
		}
		return
	}

	classifications := make([]dto.ClassificationItem, 0, len(entries))
	for _, entry := range entries {
		classifications = append(classifications, dto.ClassificationItem{
			PropertyID:     entry.PropertyID,
			Classification: entry.Classification,
			Changes:        entry.Changes,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.RunDetailResponse{
		Run:             run,
		Classifications: classifications,
	})
}
