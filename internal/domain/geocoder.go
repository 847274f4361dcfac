package domain

import "context"

// Address holds the structured fields a reverse-geocoding provider may return.
// Any subset can be empty; adapters collapse provider-specific aliases
// (streetNumber/houseNumber, countryName/country) before filling it.
type Address struct {
	Road          string
	HouseNumber   string
	Locality      string
	Neighbourhood string
	Suburb        string
	City          string
	Town          string
	Village       string
	Municipality  string
	Region        string
	Country       string
}

// GeocodingResult is a provider's answer for one coordinate pair.
type GeocodingResult struct {
	Address     Address
	DisplayName string // provider's generic formatted name, used when no structured field is usable
	Provider    string
}

// IsEmpty reports whether the result carries nothing a caller could display.
func (r GeocodingResult) IsEmpty() bool {
	return r.Address == (Address{}) && r.DisplayName == ""
}

// Geocoder turns coordinates into place details.
type Geocoder interface {
	// ReverseGeocode converts coordinates to place details. An empty result
	// with a nil error means the provider had nothing for this position.
	ReverseGeocode(ctx context.Context, lat, lng float64) (GeocodingResult, error)
}
