package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	candidatesvc "github.com/hamiltoon/housing-scout/internal/services/candidates"
	favoritesvc "github.com/hamiltoon/housing-scout/internal/services/favorites"
	prefsvc "github.com/hamiltoon/housing-scout/internal/services/preferences"
	runsvc "github.com/hamiltoon/housing-scout/internal/services/runs"
	swipesvc "github.com/hamiltoon/housing-scout/internal/services/swipes"
	"github.com/hamiltoon/housing-scout/internal/transport/http/handlers"
)

type Dependencies struct {
	CandidatesService *candidatesvc.Service
	SwipeService      *swipesvc.Service
	FavoritesService  *favoritesvc.Service
	PreferenceService *prefsvc.Service
	RunsService       *runsvc.Service
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	candidatesHandler := handlers.NewCandidatesHandler(deps.CandidatesService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService, deps.CandidatesService, deps.Logger)
	favoritesHandler := handlers.NewFavoritesHandler(deps.FavoritesService, deps.CandidatesService, deps.Logger)
	preferenceHandler := handlers.NewPreferenceHandler(deps.PreferenceService)
	runsHandler := handlers.NewRunsHandler(deps.RunsService)

	r.Get("/healthz", healthHandler.Get)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/candidates", candidatesHandler.List)
		r.Post("/swipes", swipeHandler.Handle)
		r.Get("/favorites", favoritesHandler.List)
		r.Patch("/favorites/{propertyID}", favoritesHandler.Update)
		r.Delete("/favorites/{propertyID}", favoritesHandler.Remove)
		r.Get("/preference", preferenceHandler.Get)
		r.Put("/preference", preferenceHandler.Update)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{date}", runsHandler.ByDate)
	})
}
