// Package bigdatacloud implements domain.Geocoder against a BigDataCloud-style
// reverse geocoding endpoint: GET with latitude and longitude query
// parameters returning a flat JSON object.
package bigdatacloud

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

// ProviderName labels results and metrics from this client.
const ProviderName = "bigdatacloud"

// DefaultBaseURL is the free client-side reverse geocoding endpoint.
const DefaultBaseURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

// Client implements domain.Geocoder.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// ReverseGeocode converts coordinates to place details.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	params := url.Values{
		"latitude":         {strconv.FormatFloat(lat, 'f', 6, 64)},
		"longitude":        {strconv.FormatFloat(lng, 'f', 6, 64)},
		"localityLanguage": {"en"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("bigdatacloud API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	return r.toResult(), nil
}

// response tolerates any subset of fields being absent.
type response struct {
	Road                 string `json:"road"`
	StreetNumber         string `json:"streetNumber"`
	HouseNumber          string `json:"houseNumber"`
	Locality             string `json:"locality"`
	Neighbourhood        string `json:"neighbourhood"`
	Suburb               string `json:"suburb"`
	City                 string `json:"city"`
	Town                 string `json:"town"`
	Village              string `json:"village"`
	Municipality         string `json:"municipality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
	Country              string `json:"country"`
	DisplayName          string `json:"display_name"`
}

func (r response) toResult() domain.GeocodingResult {
	return domain.GeocodingResult{
		Address: domain.Address{
			Road:          r.Road,
			HouseNumber:   firstNonEmpty(r.HouseNumber, r.StreetNumber),
			Locality:      r.Locality,
			Neighbourhood: r.Neighbourhood,
			Suburb:        r.Suburb,
			City:          r.City,
			Town:          r.Town,
			Village:       r.Village,
			Municipality:  r.Municipality,
			Region:        r.PrincipalSubdivision,
			Country:       firstNonEmpty(r.CountryName, r.Country),
		},
		DisplayName: r.DisplayName,
		Provider:    ProviderName,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
