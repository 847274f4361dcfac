//go:build smoke

package mapbox

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=smoke ./internal/adapter/geocoding/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second)
}

func TestSmoke_ReverseGeocode(t *testing.T) {
	c := smokeClient(t)

	// Wrocław market square
	result, err := c.ReverseGeocode(context.Background(), 51.1100, 17.0320)
	require.NoError(t, err)

	assert.NotEmpty(t, result.DisplayName)
	assert.Contains(t, domain.ComposeAddress(result.Address), "Poland")
}

func TestSmoke_ResolveLocation(t *testing.T) {
	c := smokeClient(t)

	loc := domain.ResolveLocation(context.Background(), c, domain.Coordinates{Lat: 51.1079, Lng: 17.0385}, 10*time.Second, slog.Default())
	assert.NotEqual(t, domain.SourceCoordinates, loc.Source)
	assert.NotEqual(t, loc.LocationText, loc.CoordinatesText)
}
