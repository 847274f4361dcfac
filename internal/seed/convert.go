package seed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
)

// Canonical renders a validated report in the fixture layout, with
// coordinates as {lat, lng} and severity spelled out.
func Canonical(r domain.EmergencyReport) domain.RawReport {
	return domain.RawReport{
		ID:          r.ID,
		Title:       r.Title,
		Summary:     r.Summary,
		Category:    r.Category,
		Coordinates: domain.NewRawCoordinates(r.Coordinates),
		Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
		Status:      string(r.Status),
		Severity:    domain.RawSeverity(r.Severity),
		ImageURL:    r.ImageURL,
		DroneID:     r.DroneID,
	}
}

// ConvertJSON reads a JSON array of reports in any accepted layout, including
// the legacy `location.coordinates: [lng, lat]` form, validates every record,
// and returns the equivalent YAML fixture.
func ConvertJSON(data []byte) ([]byte, error) {
	var raws []domain.RawReport
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode legacy fixture: %w", err)
	}

	out := make([]domain.RawReport, 0, len(raws))
	seen := make(map[string]int, len(raws))
	for i, raw := range raws {
		r, err := domain.ParseReport(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if prev, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("record %d: %w: id %q repeats record %d", i, domain.ErrInvalidReport, r.ID, prev)
		}
		seen[r.ID] = i
		out = append(out, Canonical(r))
	}
	return Marshal(out)
}
