package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	candidatesvc "github.com/hamiltoon/housing-scout/internal/services/candidates"
	favoritesvc "github.com/hamiltoon/housing-scout/internal/services/favorites"
	"github.com/hamiltoon/housing-scout/internal/transport/http/dto"
	httperrors "github.com/hamiltoon/housing-scout/internal/transport/http/errors"
)

type FavoritesHandler struct {
	service    *favoritesvc.Service
	candidates *candidatesvc.Service
	logger     *zap.Logger
}

func NewFavoritesHandler(service *favoritesvc.Service, candidates *candidatesvc.Service, logger *zap.Logger) *FavoritesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoritesHandler{service: service, candidates: candidates, logger: logger}
}

// invalidateCandidates drops the cached feed after a favorite mutation.
// The feed carries favorite status, so a stale blob keeps showing the old
// state until the TTL expires. Failures are logged, not surfaced.
func (h *FavoritesHandler) invalidateCandidates(r *http.Request) {
	if h.candidates == nil {
		return
	}
	if err := h.candidates.Invalidate(r.Context()); err != nil {
		h.logger.Warn("invalidate candidates cache", zap.Error(err))
	}
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return
	}

	records, err := h.service.List(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load favorites")
		return
	}

	items := make([]dto.FavoriteItem, 0, len(records))
	for _, record := range records {
		items = append(items, dto.FavoriteItem{
			Favorite: record.Favorite,
			Property: record.Property,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.FavoritesResponse{Favorites: items})
}

func (h *FavoritesHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return
	}

	propertyID := chi.URLParam(r, "propertyID")
	var req dto.FavoriteUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	err := h.service.Update(r.Context(), propertyID, req.Notes, enums.FavoriteStatus(strings.ToLower(req.Status)))
	if err != nil {
		switch {
		case errors.Is(err, favoritesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid favorite update")
		case errors.Is(err, favoritesvc.ErrNotFound):
			writeNotFound(w, "FAVORITE_NOT_FOUND", "favorite does not exist")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update favorite")
		}
		return
	}

	h.invalidateCandidates(r)

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return
	}

	propertyID := chi.URLParam(r, "propertyID")
	err := h.service.Remove(r.Context(), propertyID)
	if err != nil {
		switch {
		case errors.Is(err, favoritesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "property id is required")
		case errors.Is(err, favoritesvc.ErrNotFound):
			writeNotFound(w, "FAVORITE_NOT_FOUND", "favorite does not exist")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to remove favorite")
		}
		return
	}

	h.invalidateCandidates(r)

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}
