package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	candidatesvc "github.com/hamiltoon/housing-scout/internal/services/candidates"
	swipesvc "github.com/hamiltoon/housing-scout/internal/services/swipes"
	"github.com/hamiltoon/housing-scout/internal/transport/http/dto"
	httperrors "github.com/hamiltoon/housing-scout/internal/transport/http/errors"
)

type SwipeHandler struct {
	service    *swipesvc.Service
	candidates *candidatesvc.Service
	logger     *zap.Logger
}

func NewSwipeHandler(service *swipesvc.Service, candidates *candidatesvc.Service, logger *zap.Logger) *SwipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeHandler{service: service, candidates: candidates, logger: logger}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.PropertyID) == "" || strings.TrimSpace(req.Decision) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "user_id, property_id and decision are required")
		return
	}

	result, err := h.service.Submit(r.Context(), req.UserID, req.PropertyID, enums.SwipeDecision(strings.ToLower(req.Decision)))
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrUnknownUser):
			writeBadRequest(w, "UNKNOWN_USER", "user is not part of the household")
		case errors.Is(err, swipesvc.ErrUnsupportedDecision):
			writeBadRequest(w, "VALIDATION_ERROR", "decision must be yes or no")
		case errors.Is(err, swipesvc.ErrPropertyNotFound):
			writeNotFound(w, "PROPERTY_NOT_FOUND", "property does not exist")
		case errors.Is(err, swipesvc.ErrAlreadyFavorited):
			writeConflict(w, "ALREADY_FAVORITED", "property is already a favorite")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	if h.candidates != nil {
		if err := h.candidates.Invalidate(r.Context()); err != nil {
			h.logger.Warn("invalidate candidates cache", zap.Error(err))
		}
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:              true,
		PairState:       string(result.PairState),
		FavoriteCreated: result.FavoriteCreated,
		DecisionA:       decisionString(result.DecisionA),
		DecisionB:       decisionString(result.DecisionB),
	})
}

func decisionString(d *enums.SwipeDecision) *string {
	if d == nil {
		return nil
	}
	v := string(*d)
	return &v
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
