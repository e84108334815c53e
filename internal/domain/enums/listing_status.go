package enums

type ListingStatus string

const (
	ListingStatusForSale  ListingStatus = "for_sale"
	ListingStatusUpcoming ListingStatus = "upcoming"
	ListingStatusSold     ListingStatus = "sold"
)
