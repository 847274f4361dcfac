package geocoding

import (
	"context"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
)

// instrumented records request duration and outcome for one provider.
type instrumented struct {
	name    string
	inner   domain.Geocoder
	metrics *observability.Metrics
}

// Instrument wraps a provider so every request is timed and counted.
func Instrument(name string, inner domain.Geocoder, metrics *observability.Metrics) domain.Geocoder {
	return &instrumented{name: name, inner: inner, metrics: metrics}
}

func (g *instrumented) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	start := time.Now()
	result, err := g.inner.ReverseGeocode(ctx, lat, lng)
	g.metrics.GeocodeAPIDuration.WithLabelValues(g.name).Observe(time.Since(start).Seconds())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case result.IsEmpty():
		outcome = "empty"
	}
	g.metrics.GeocodeRequests.WithLabelValues(g.name, outcome).Inc()
	return result, err
}
