// Package googlemaps implements domain.Geocoder with the Google Geocoding API.
package googlemaps

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"googlemaps.github.io/maps"
)

const ProviderName = "googlemaps"

// Client implements domain.Geocoder.
type Client struct {
	maps *maps.Client
}

// NewClient creates a Google Maps geocoding client. Extra options are applied
// after the API key and HTTP client, so tests can point it at a fake server
// with maps.WithBaseURL.
func NewClient(apiKey string, timeout time.Duration, opts ...maps.ClientOption) (*Client, error) {
	options := append([]maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)

	mc, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}
	return &Client{maps: mc}, nil
}

// ReverseGeocode converts coordinates to place details from the most specific
// result Google returns.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	results, err := c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: lat, Lng: lng},
		Language: "en",
	})
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	if len(results) == 0 {
		return domain.GeocodingResult{}, nil
	}
	return toResult(results[0]), nil
}

func toResult(r maps.GeocodingResult) domain.GeocodingResult {
	var a domain.Address
	for _, comp := range r.AddressComponents {
		has := func(t string) bool { return slices.Contains(comp.Types, t) }
		switch {
		case has("street_number"):
			a.HouseNumber = comp.LongName
		case has("route"):
			a.Road = comp.LongName
		case has("neighborhood"):
			a.Neighbourhood = comp.LongName
		case has("sublocality"), has("sublocality_level_1"):
			a.Suburb = comp.LongName
		case has("locality"):
			a.City = comp.LongName
		case has("postal_town"):
			a.Town = comp.LongName
		case has("administrative_area_level_2"):
			a.Municipality = comp.LongName
		case has("administrative_area_level_1"):
			a.Region = comp.LongName
		case has("country"):
			a.Country = comp.LongName
		}
	}
	return domain.GeocodingResult{
		Address:     a,
		DisplayName: r.FormattedAddress,
		Provider:    ProviderName,
	}
}
