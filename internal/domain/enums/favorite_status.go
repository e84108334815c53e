package enums

type FavoriteStatus string

const (
	FavoriteStatusActive   FavoriteStatus = "active"
	FavoriteStatusArchived FavoriteStatus = "archived"
)

func (s FavoriteStatus) Valid() bool {
	return s == FavoriteStatusActive || s == FavoriteStatusArchived
}
