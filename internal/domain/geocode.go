package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// Location sources reported on ResolvedLocation.Source.
const (
	SourceAddress     = "address"
	SourceDisplayName = "display_name"
	SourceCoordinates = "coordinates"
)

// DefaultGeocodeTimeout bounds a single resolution when callers pass zero.
const DefaultGeocodeTimeout = 5 * time.Second

// ResolvedLocation is the display-ready location of a report.
// CoordinatesText is a secondary caption and is empty whenever LocationText
// already holds the coordinates.
type ResolvedLocation struct {
	LocationText    string `json:"locationText"`
	CoordinatesText string `json:"coordinatesText"`
	Source          string `json:"source"`
}

// ResolveLocation produces a best-effort address for coords. It never fails:
// a nil geocoder, a provider error, a timeout, a panic, or an unusable
// response all end in the coordinate fallback.
func ResolveLocation(ctx context.Context, geocoder Geocoder, coords Coordinates, timeout time.Duration, logger *slog.Logger) ResolvedLocation {
	coordsText := FormatCoordinates(coords)
	fallback := ResolvedLocation{LocationText: coordsText, Source: SourceCoordinates}

	if geocoder == nil {
		return fallback
	}
	if logger == nil {
		logger = slog.Default()
	}

	result, err := reverseGeocode(ctx, geocoder, coords, timeout)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", coords.Lat,
			"lng", coords.Lng,
			"error", err,
		)
		return fallback
	}

	if address := ComposeAddress(result.Address); address != "" && address != coordsText {
		return ResolvedLocation{LocationText: address, CoordinatesText: coordsText, Source: SourceAddress}
	}
	if name := result.DisplayName; strings.TrimSpace(name) != "" && name != coordsText {
		return ResolvedLocation{LocationText: name, CoordinatesText: coordsText, Source: SourceDisplayName}
	}

	logger.Debug("reverse geocoding returned nothing usable",
		"lat", coords.Lat,
		"lng", coords.Lng,
		"provider", result.Provider,
	)
	return fallback
}

// reverseGeocode applies the bounded wait and converts provider panics into
// ErrGeocodeUnavailable.
func reverseGeocode(ctx context.Context, geocoder Geocoder, coords Coordinates, timeout time.Duration) (result GeocodingResult, err error) {
	if timeout <= 0 {
		timeout = DefaultGeocodeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result = GeocodingResult{}
			err = fmt.Errorf("%w: provider panic: %v", ErrGeocodeUnavailable, r)
		}
	}()

	result, err = geocoder.ReverseGeocode(ctx, coords.Lat, coords.Lng)
	if err != nil {
		return GeocodingResult{}, fmt.Errorf("%w: %w", ErrGeocodeUnavailable, err)
	}
	return result, nil
}

// ComposeAddress joins the usable structured fields of a in the order
// street, locality, city, region, country. The locality is skipped when the
// street line already contains it or it names the city; the region is skipped
// when it repeats the city. Comparisons ignore case.
func ComposeAddress(a Address) string {
	var parts []string

	street := ""
	if road := strings.TrimSpace(a.Road); road != "" {
		street = road
		if num := strings.TrimSpace(a.HouseNumber); num != "" {
			street = num + " " + road
		}
		parts = append(parts, street)
	}

	city := firstNonEmpty(a.City, a.Town, a.Village, a.Municipality)

	if locality := firstNonEmpty(a.Locality, a.Neighbourhood, a.Suburb); locality != "" &&
		!containsFold(street, locality) && !strings.EqualFold(locality, city) {
		parts = append(parts, locality)
	}

	if city != "" {
		parts = append(parts, city)
	}

	if region := strings.TrimSpace(a.Region); region != "" && !strings.EqualFold(region, city) {
		parts = append(parts, region)
	}

	if country := strings.TrimSpace(a.Country); country != "" {
		parts = append(parts, country)
	}

	return strings.Join(parts, ", ")
}

// FormatCoordinates renders c as `51.107900° N, 17.038500° E`.
func FormatCoordinates(c Coordinates) string {
	latDir := "N"
	if c.Lat < 0 {
		latDir = "S"
	}
	lngDir := "E"
	if c.Lng < 0 {
		lngDir = "W"
	}
	return fmt.Sprintf("%.6f° %s, %.6f° %s", math.Abs(c.Lat), latDir, math.Abs(c.Lng), lngDir)
}

func containsFold(s, substr string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
