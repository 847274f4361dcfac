package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reports, err := Default()
	require.NoError(t, err)
	require.Len(t, reports, 7)

	buckets, err := domain.Classify(reports)
	require.NoError(t, err)
	assert.Len(t, buckets[domain.StatusReported], 2)
	assert.Len(t, buckets[domain.StatusInProgress], 2)
	assert.Len(t, buckets[domain.StatusDispatched], 1)
	assert.Len(t, buckets[domain.StatusResolved], 2)

	first := reports[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, domain.Coordinates{Lat: 51.1079, Lng: 17.0385}, first.Coordinates)
	assert.Equal(t, domain.SeverityHigh, first.Severity)
	assert.Equal(t, "DRN-492", first.DroneID)
	assert.True(t, first.HasImage())

	ids := make(map[string]bool)
	for _, r := range reports {
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
	}
}

func TestLoad_EmptyPathUsesEmbeddedFixture(t *testing.T) {
	reports, err := Load("")
	require.NoError(t, err)
	assert.Len(t, reports, 7)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := []byte(`reports:
  - id: a
    title: Flooded underpass
    category: flood
    coordinates: {lat: -33.8688, lng: 151.2093}
    timestamp: "2025-06-12T08:00:00+02:00"
    status: In Progress
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reports, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, domain.StatusInProgress, reports[0].Status)
	assert.Equal(t, domain.SeverityMedium, reports[0].Severity)
	assert.Equal(t, 6, reports[0].Timestamp.Hour(), "normalised to UTC")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read seed file")
}

func TestParse_InvalidRecordNamesIndex(t *testing.T) {
	_, err := Parse([]byte(`reports:
  - id: ok
    coordinates: {lat: 1, lng: 2}
    timestamp: "2025-06-12T08:00:00Z"
    status: REPORTED
  - id: bad
    coordinates: {lat: 95, lng: 2}
    timestamp: "2025-06-12T08:00:00Z"
    status: REPORTED
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidReport)
	assert.Contains(t, err.Error(), "record 1")
}

func TestMarshal_RoundTrip(t *testing.T) {
	raw := []domain.RawReport{{
		ID:          "9",
		Title:       "Tanker leak",
		Category:    "Chemical Spill",
		Coordinates: domain.NewRawCoordinates(domain.Coordinates{Lat: 51.1273, Lng: 17.1064}),
		Timestamp:   "2025-06-12T06:55:38Z",
		Status:      "IN_PROGRESS",
	}}

	data, err := Marshal(raw)
	require.NoError(t, err)

	reports, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "9", reports[0].ID)
	assert.Equal(t, domain.SeverityCritical, reports[0].Severity, "derived from category")
}

func TestConvertJSON_LegacyLayout(t *testing.T) {
	legacy := []byte(`[
		{
			"id": "1",
			"type": "car_crash",
			"status": "reported",
			"timestamp": "2025-06-12T08:43:21Z",
			"description": "Two cars involved.",
			"location": {"coordinates": [17.0385, 51.1079]}
		},
		{
			"id": "2",
			"title": "Flooding",
			"coordinates": {"lat": 51.0963, "lng": 17.0359},
			"timestamp": "2025-06-12T07:15:00Z",
			"status": "In Progress",
			"severity_level": 5
		}
	]`)

	out, err := ConvertJSON(legacy)
	require.NoError(t, err)

	reports, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, domain.Coordinates{Lat: 51.1079, Lng: 17.0385}, reports[0].Coordinates, "[lng, lat] swapped")
	assert.Equal(t, "car_crash", reports[0].Category)
	assert.Equal(t, "Two cars involved.", reports[0].Summary)
	assert.Equal(t, domain.SeverityHigh, reports[0].Severity)
	assert.Equal(t, domain.StatusInProgress, reports[1].Status)
	assert.Equal(t, domain.SeverityCritical, reports[1].Severity)
	assert.NotContains(t, string(out), "location")
}

func TestConvertJSON_RejectsDuplicates(t *testing.T) {
	_, err := ConvertJSON([]byte(`[
		{"id": "1", "coordinates": {"lat": 1, "lng": 2}, "timestamp": "2025-06-12T07:15:00Z", "status": "REPORTED"},
		{"id": "1", "coordinates": {"lat": 1, "lng": 2}, "timestamp": "2025-06-12T07:15:00Z", "status": "RESOLVED"}
	]`))
	require.ErrorIs(t, err, domain.ErrInvalidReport)
	assert.Contains(t, err.Error(), "record 1")
}

func TestCanonical_RoundTrip(t *testing.T) {
	reports, err := Default()
	require.NoError(t, err)

	raws := make([]domain.RawReport, 0, len(reports))
	for _, r := range reports {
		raws = append(raws, Canonical(r))
	}
	data, err := Marshal(raws)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, reports, again)
}
