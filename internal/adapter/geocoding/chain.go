package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
)

// Provider is a named geocoder in a Chain.
type Provider struct {
	Name     string
	Geocoder domain.Geocoder
}

// Chain tries providers in order. A provider error or an empty answer moves
// on to the next one. When the context has a deadline, each provider gets an
// equal share of the time left, so a stalled provider cannot starve the rest.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a fallback chain over providers.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, logger: logger}
}

// ReverseGeocode returns the first non-empty provider answer. When every
// provider failed the error wraps domain.ErrGeocodeUnavailable; when some
// answered but none had anything, the result is empty with a nil error.
func (c *Chain) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	var (
		errs     []error
		answered bool
	)
	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		result, err := tryProvider(ctx, p, lat, lng, len(c.providers)-i)
		if err != nil {
			c.logger.Debug("geocoding provider failed, trying next",
				"provider", p.Name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		if result.IsEmpty() {
			answered = true
			continue
		}
		if result.Provider == "" {
			result.Provider = p.Name
		}
		return result, nil
	}

	if !answered && len(errs) > 0 {
		return domain.GeocodingResult{}, fmt.Errorf("%w: %w", domain.ErrGeocodeUnavailable, errors.Join(errs...))
	}
	return domain.GeocodingResult{}, nil
}

// tryProvider calls p with 1/remaining of the time left before the context
// deadline. The last provider gets whatever remains.
func tryProvider(ctx context.Context, p Provider, lat, lng float64, remaining int) (domain.GeocodingResult, error) {
	if deadline, ok := ctx.Deadline(); ok && remaining > 1 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Until(deadline)/time.Duration(remaining))
		defer cancel()
	}
	return p.Geocoder.ReverseGeocode(ctx, lat, lng)
}
