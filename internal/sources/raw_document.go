package sources

// RawDocument is the canonical source-agnostic payload every source adapter
// emits and the normalizer parses. Archived verbatim, so the shape is part
// of the storage contract and only grows, never changes meaning.
type RawDocument struct {
	ID          string   `json:"id"`
	Address     string   `json:"address"`
	Price       int64    `json:"price"`
	Rooms       float64  `json:"rooms"`
	SquareM     int      `json:"sqm"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Images      []string `json:"images"`
	URL         string   `json:"url"`
	Status      string   `json:"status"`
	Location    struct {
		City      string   `json:"city"`
		Area      string   `json:"area,omitempty"`
		Latitude  *float64 `json:"latitude,omitempty"`
		Longitude *float64 `json:"longitude,omitempty"`
	} `json:"location"`
}
