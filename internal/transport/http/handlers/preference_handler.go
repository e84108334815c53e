package handlers

import (
	"errors"
	"net/http"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
	prefsvc "github.com/hamiltoon/housing-scout/internal/services/preferences"
	"github.com/hamiltoon/housing-scout/internal/transport/http/dto"
	httperrors "github.com/hamiltoon/housing-scout/internal/transport/http/errors"
)

type PreferenceHandler struct {
	service *prefsvc.Service
}

func NewPreferenceHandler(service *prefsvc.Service) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PREFERENCE_SERVICE_UNAVAILABLE", "preference service is unavailable")
		return
	}

	pref, err := h.service.Get(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load preference")
		return
	}

	httperrors.Write(w, http.StatusOK, mapPreference(pref))
}

func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PREFERENCE_SERVICE_UNAVAILABLE", "preference service is unavailable")
		return
	}

	var req dto.PreferenceUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	pref, err := h.service.Update(r.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, prefsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "query must not be empty")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update preference")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, mapPreference(pref))
}

func mapPreference(pref model.SharedPreference) dto.PreferenceResponse {
	return dto.PreferenceResponse{
		ID:        pref.ID,
		Query:     pref.Query,
		Version:   pref.Version,
		UpdatedAt: pref.UpdatedAt,
	}
}
