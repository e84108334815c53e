package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

// Booli fetches the current for-sale listings for one search area from the
// Booli JSON API, page by page. Each listing is re-encoded into the
// canonical raw document the normalizer understands; the re-encoded form is
// what gets archived.
type Booli struct {
	httpClient *http.Client
	baseURL    string
	area       string
	pageSize   int
	logger     *zap.Logger
	now        func() time.Time
}

func NewBooli(httpClient *http.Client, baseURL, area string, pageSize int, logger *zap.Logger) *Booli {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Booli{
		httpClient: httpClient,
		baseURL:    baseURL,
		area:       area,
		pageSize:   pageSize,
		logger:     logger,
		now:        time.Now,
	}
}

func (b *Booli) Name() enums.Source {
	return enums.SourceBooli
}

type booliListing struct {
	BooliID       int64    `json:"booliId"`
	StreetAddress string   `json:"streetAddress"`
	ListPrice     int64    `json:"listPrice"`
	Rooms         float64  `json:"rooms"`
	LivingArea    float64  `json:"livingArea"`
	Description   string   `json:"description"`
	Amenities     []string `json:"amenities"`
	Images        []string `json:"images"`
	URL           string   `json:"url"`
	ObjectStatus  string   `json:"objectStatus"`
	Location      struct {
		City     string `json:"city"`
		Area     string `json:"namedArea"`
		Position struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"position"`
	} `json:"location"`
}

type booliPage struct {
	Listings   []booliListing `json:"listings"`
	TotalPages int            `json:"totalPages"`
}

func (b *Booli) FetchCurrentListings(ctx context.Context) ([]model.RawListing, error) {
	var raws []model.RawListing

	page := 1
	for {
		result, err := b.fetchPage(ctx, page)
		if err != nil {
			return nil, &FetchError{Source: b.Name(), Err: err}
		}

		fetchedAt := b.now().UTC()
		for _, listing := range result.Listings {
			raw, err := b.toRawListing(listing, fetchedAt)
			if err != nil {
				// One broken entry in the feed should not sink the
				// source; the normalizer counts it as invalid downstream.
				b.logger.Warn("skip unencodable booli listing",
					zap.Int64("booli_id", listing.BooliID),
					zap.Error(err),
				)
				continue
			}
			raws = append(raws, raw)
		}

		if page >= result.TotalPages || len(result.Listings) == 0 {
			break
		}
		page++
	}

	b.logger.Info("fetched booli listings",
		zap.String("area", b.area),
		zap.Int("count", len(raws)),
	)

	return raws, nil
}

func (b *Booli) fetchPage(ctx context.Context, page int) (booliPage, error) {
	endpoint, err := url.Parse(b.baseURL + "/listings")
	if err != nil {
		return booliPage{}, fmt.Errorf("parse booli url: %w", err)
	}

	query := endpoint.Query()
	query.Set("area", b.area)
	query.Set("status", "forSale")
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(b.pageSize))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return booliPage{}, fmt.Errorf("build booli request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return booliPage{}, fmt.Errorf("request page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return booliPage{}, fmt.Errorf("request page %d: http %d", page, resp.StatusCode)
	}

	var result booliPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return booliPage{}, fmt.Errorf("decode page %d: %w", page, err)
	}

	return result, nil
}

func (b *Booli) toRawListing(listing booliListing, fetchedAt time.Time) (model.RawListing, error) {
	if listing.BooliID <= 0 {
		return model.RawListing{}, fmt.Errorf("listing without booli id")
	}

	doc := RawDocument{
		ID:          strconv.FormatInt(listing.BooliID, 10),
		Address:     listing.StreetAddress,
		Price:       listing.ListPrice,
		Rooms:       listing.Rooms,
		SquareM:     int(listing.LivingArea),
		Description: listing.Description,
		Features:    listing.Amenities,
		Images:      listing.Images,
		URL:         listing.URL,
		Status:      mapBooliStatus(listing.ObjectStatus),
	}
	doc.Location.City = listing.Location.City
	doc.Location.Area = listing.Location.Area
	doc.Location.Latitude = listing.Location.Position.Latitude
	doc.Location.Longitude = listing.Location.Position.Longitude

	payload, err := json.Marshal(doc)
	if err != nil {
		return model.RawListing{}, fmt.Errorf("encode raw document: %w", err)
	}

	return model.RawListing{
		Source:    b.Name(),
		SourceID:  doc.ID,
		FetchedAt: fetchedAt,
		Payload:   payload,
	}, nil
}

func mapBooliStatus(status string) string {
	switch status {
	case "upcoming":
		return string(enums.ListingStatusUpcoming)
	case "sold":
		return string(enums.ListingStatusSold)
	default:
		return string(enums.ListingStatusForSale)
	}
}
