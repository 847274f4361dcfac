// Package geocoding composes reverse-geocoding providers into the single
// domain.Geocoder the resolver uses: each configured provider is
// instrumented, the providers are tried in order, and answers are cached.
package geocoding

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/geocoding/bigdatacloud"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/geocoding/googlemaps"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/geocoding/mapbox"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/geocoding/nominatim"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/config"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
)

// NewFromConfig builds the geocoder described by cfg. It returns nil when
// geocoding is disabled, which the resolver treats as "always fall back to
// coordinates".
func NewFromConfig(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.Geocoder, error) {
	if !cfg.GeocodingEnabled {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("reverse geocoding disabled")
		return nil, nil
	}

	providers := make([]Provider, 0, len(cfg.GeocoderProviders))
	for _, name := range cfg.GeocoderProviders {
		g, err := newProvider(name, cfg)
		if err != nil {
			return nil, err
		}
		providers = append(providers, Provider{Name: name, Geocoder: Instrument(name, g, metrics)})
	}

	metrics.GeocodeEnabled.Set(1)
	logger.Info("reverse geocoding enabled",
		"providers", cfg.GeocoderProviders,
		"cache_size", cfg.GeocodeCacheSize,
		"timeout", cfg.GeocodeTimeout,
	)
	return NewCachedGeocoder(NewChain(logger, providers...), cfg.GeocodeCacheSize, metrics), nil
}

func newProvider(name string, cfg *config.Config) (domain.Geocoder, error) {
	switch name {
	case config.ProviderBigDataCloud:
		return bigdatacloud.NewClient(cfg.BigDataCloudURL, cfg.GeocodeTimeout), nil
	case config.ProviderNominatim:
		return nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.GeocodeTimeout), nil
	case config.ProviderMapbox:
		return mapbox.NewClient(cfg.MapboxToken, cfg.GeocodeTimeout), nil
	case config.ProviderGoogleMaps:
		return googlemaps.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout)
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", name)
	}
}
