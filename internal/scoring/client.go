// Package scoring is the HTTP client for the external AI listing-scoring
// service. The service receives the shared preference text and a batch of
// listings and returns one scored, reasoned result per listing.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

type Result struct {
	PropertyID     string   `json:"property_id"`
	MatchScore     float64  `json:"match_score"`
	CriteriaMet    []string `json:"criteria_met"`
	CriteriaMissed []string `json:"criteria_missed"`
	Reasoning      string   `json:"reasoning"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type scoreRequest struct {
	Preference string             `json:"preference"`
	Listings   []listingSnapshot  `json:"listings"`
}

// listingSnapshot is the subset of a property the scoring model sees.
// Images are never sent.
type listingSnapshot struct {
	PropertyID  string   `json:"property_id"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Area        string   `json:"area,omitempty"`
	Price       int64    `json:"price"`
	Rooms       float64  `json:"rooms"`
	SquareM     int      `json:"sqm"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

type scoreResponse struct {
	Results []Result `json:"results"`
}

// ScoreBatch evaluates one batch of listings against the preference text.
// Failures map onto the retry taxonomy: HTTP 429 is rate limiting, request
// deadline overruns are timeouts, everything undecodable or incomplete is a
// malformed response.
func (c *Client) ScoreBatch(ctx context.Context, preference string, listings []model.Property) ([]Result, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	reqBody := scoreRequest{
		Preference: preference,
		Listings:   make([]listingSnapshot, 0, len(listings)),
	}
	for _, p := range listings {
		reqBody.Listings = append(reqBody.Listings, listingSnapshot{
			PropertyID:  p.ID,
			Address:     p.Address,
			City:        p.Location.City,
			Area:        p.Location.Area,
			Price:       p.Price,
			Rooms:       p.Rooms,
			SquareM:     p.SquareM,
			Description: p.Description,
			Features:    p.Features,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/score", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, Timeout(err)
		}
		return nil, fmt.Errorf("call scoring service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, RateLimited(fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, Malformed(fmt.Errorf("http %d", resp.StatusCode))
	}

	var decoded scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, Malformed(err)
	}

	byID := make(map[string]Result, len(decoded.Results))
	for _, result := range decoded.Results {
		if result.PropertyID == "" {
			return nil, Malformed(errors.New("result without property_id"))
		}
		byID[result.PropertyID] = result
	}

	results := make([]Result, 0, len(listings))
	for _, p := range listings {
		result, ok := byID[p.ID]
		if !ok {
			return nil, Malformed(fmt.Errorf("no result for %s", p.ID))
		}
		results = append(results, result)
	}

	return results, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
