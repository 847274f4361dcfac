// Package mapbox implements domain.Geocoder with the Mapbox Geocoding API.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
)

const (
	ProviderName   = "mapbox"
	DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
	}
}

// ReverseGeocode converts coordinates to place details.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", lng, lat)
	u := fmt.Sprintf("%s/%s.json", c.baseURL, coord)
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"address,poi,neighborhood,locality,place"},
		"language":     {"en"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}
	return mapboxResp.Features[0].toResult(), nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string         `json:"id"`
	PlaceType []string       `json:"place_type"`
	Text      string         `json:"text"`
	Address   string         `json:"address"` // house number on address features
	PlaceName string         `json:"place_name"`
	Context   []contextEntry `json:"context"`
}

type contextEntry struct {
	ID   string `json:"id"` // "<layer>.<id>", e.g. "place.123"
	Text string `json:"text"`
}

func (f feature) toResult() domain.GeocodingResult {
	var a domain.Address
	if slices.Contains(f.PlaceType, "address") {
		a.Road = f.Text
		a.HouseNumber = f.Address
	}

	// The feature itself is one layer; its context holds the enclosing ones.
	layers := append([]contextEntry{{ID: f.ID, Text: f.Text}}, f.Context...)
	for _, e := range layers {
		layer, _, _ := strings.Cut(e.ID, ".")
		switch layer {
		case "neighborhood":
			a.Neighbourhood = e.Text
		case "locality":
			a.Locality = e.Text
		case "place":
			a.City = e.Text
		case "region":
			a.Region = e.Text
		case "country":
			a.Country = e.Text
		}
	}

	return domain.GeocodingResult{
		Address:     a,
		DisplayName: f.PlaceName,
		Provider:    ProviderName,
	}
}
