package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Coordinates is a WGS-84 position in degrees. It is the only coordinate
// representation used past the ingestion boundary.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Validate checks that both values are finite and inside their ranges.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidReport, c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidReport, c.Lng)
	}
	return nil
}

// EmergencyReport is a single drone-detected incident.
type EmergencyReport struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Category    string       `json:"category,omitempty"`
	Coordinates Coordinates  `json:"coordinates"`
	Timestamp   time.Time    `json:"timestamp"`
	Status      ReportStatus `json:"status"`
	Severity    Severity     `json:"severity"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	DroneID     string       `json:"droneId,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt,omitzero"`
}

// HasImage reports whether the report carries an evidence image reference.
func (r EmergencyReport) HasImage() bool {
	return strings.TrimSpace(r.ImageURL) != ""
}

// Validate checks every data-model invariant that can be verified on a single
// record. Id uniqueness is enforced by the store.
func (r EmergencyReport) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidReport)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("report %s: %w: %q", r.ID, ErrInvalidStatus, r.Status)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("report %s: %w: unknown severity %q", r.ID, ErrInvalidReport, r.Severity)
	}
	if err := r.Coordinates.Validate(); err != nil {
		return fmt.Errorf("report %s: %w", r.ID, err)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("report %s: %w: missing timestamp", r.ID, ErrInvalidReport)
	}
	return nil
}

// StatusChange records a status mutation. In a persisted deployment it is the
// durable write that backs UpdateStatus.
type StatusChange struct {
	EventID   string       `json:"event_id"`
	ReportID  string       `json:"report_id"`
	From      ReportStatus `json:"from"`
	To        ReportStatus `json:"to"`
	Backward  bool         `json:"backward"`
	ChangedAt time.Time    `json:"changed_at"`
}
