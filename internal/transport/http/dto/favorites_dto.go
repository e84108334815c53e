package dto

import "github.com/hamiltoon/housing-scout/internal/domain/model"

type FavoritesResponse struct {
	Favorites []FavoriteItem `json:"favorites"`
}

type FavoriteItem struct {
	Favorite model.FavoriteProperty `json:"favorite"`
	Property model.Property         `json:"property"`
}

type FavoriteUpdateRequest struct {
	Notes  string `json:"notes"`
	Status string `json:"status"`
}
