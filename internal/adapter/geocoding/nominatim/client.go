// Package nominatim implements domain.Geocoder with the OpenStreetMap
// Nominatim reverse endpoint.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
)

const (
	ProviderName     = "nominatim"
	DefaultBaseURL   = "https://nominatim.openstreetmap.org/reverse"
	DefaultUserAgent = "EmergencyDashboardApp/1.0"
)

// Client implements domain.Geocoder. Nominatim's usage policy requires an
// identifying User-Agent on every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a Nominatim client. Empty arguments take the defaults.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// ReverseGeocode converts coordinates to place details at street zoom.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	params := url.Values{
		"format":         {"json"},
		"lat":            {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":            {strconv.FormatFloat(lng, 'f', 6, 64)},
		"zoom":           {"18"},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	// Positions with no OSM object (open sea) come back as 200 {"error": ...}.
	if r.Error != "" {
		return domain.GeocodingResult{}, nil
	}
	return r.toResult(), nil
}

type response struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
	Error       string  `json:"error"`
}

type address struct {
	Road          string `json:"road"`
	Pedestrian    string `json:"pedestrian"`
	Street        string `json:"street"`
	HouseNumber   string `json:"house_number"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Quarter       string `json:"quarter"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Municipality  string `json:"municipality"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

func (r response) toResult() domain.GeocodingResult {
	a := r.Address
	road := a.Road
	for _, alt := range []string{a.Street, a.Pedestrian} {
		if road == "" {
			road = alt
		}
	}
	suburb := a.Suburb
	if suburb == "" {
		suburb = a.Quarter
	}
	return domain.GeocodingResult{
		Address: domain.Address{
			Road:          road,
			HouseNumber:   a.HouseNumber,
			Neighbourhood: a.Neighbourhood,
			Suburb:        suburb,
			City:          a.City,
			Town:          a.Town,
			Village:       a.Village,
			Municipality:  a.Municipality,
			Region:        a.State,
			Country:       a.Country,
		},
		DisplayName: r.DisplayName,
		Provider:    ProviderName,
	}
}
