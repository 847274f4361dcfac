package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawMessage is an unprocessed message from the report ingestion topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RawReport is the wire shape of a report before validation. Both coordinate
// layouts seen in the data sources are accepted here and nowhere else.
type RawReport struct {
	ID            string       `json:"id" yaml:"id"`
	Title         string       `json:"title" yaml:"title"`
	Summary       string       `json:"summary" yaml:"summary"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string       `json:"category,omitempty" yaml:"category,omitempty"`
	Type          string       `json:"type,omitempty" yaml:"type,omitempty"`
	Coordinates   *RawCoordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Location      *RawLocation    `json:"location,omitempty" yaml:"-"`
	Timestamp     string          `json:"timestamp" yaml:"timestamp"`
	Status        string          `json:"status" yaml:"status"`
	Severity      RawSeverity     `json:"severity,omitempty" yaml:"severity,omitempty"`
	SeverityLevel int             `json:"severity_level,omitempty" yaml:"severity_level,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	DroneID       string          `json:"droneId,omitempty" yaml:"droneId,omitempty"`
}

// RawCoordinates is the {lat, lng} object as received. Absent members stay
// nil so they can be told apart from a real zero.
type RawCoordinates struct {
	Lat *float64 `json:"lat" yaml:"lat"`
	Lng *float64 `json:"lng" yaml:"lng"`
}

// NewRawCoordinates returns the wire form of c.
func NewRawCoordinates(c Coordinates) *RawCoordinates {
	lat, lng := c.Lat, c.Lng
	return &RawCoordinates{Lat: &lat, Lng: &lng}
}

// RawSeverity is a severity tier name or a numeric 1-5 urgency level. Numbers
// are kept in their decimal form.
type RawSeverity string

// UnmarshalJSON accepts `"high"` or `4`.
func (s *RawSeverity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = RawSeverity(name)
		return nil
	}

	var level int
	if err := json.Unmarshal(data, &level); err != nil {
		return fmt.Errorf("severity: %w", err)
	}
	*s = RawSeverity(strconv.Itoa(level))
	return nil
}

// RawLocation is the legacy "location" field. Older sources sent either a
// preformatted display string or an object holding a [lng, lat] array.
type RawLocation struct {
	Display string
	LngLat  []float64
}

// UnmarshalJSON accepts `"51.1079° N, 17.0385° E"` or `{"coordinates": [lng, lat]}`.
func (l *RawLocation) UnmarshalJSON(data []byte) error {
	var display string
	if err := json.Unmarshal(data, &display); err == nil {
		l.Display = display
		return nil
	}

	var obj struct {
		Coordinates []float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	l.LngLat = obj.Coordinates
	return nil
}

// MarshalJSON writes the legacy object form so converted fixtures round-trip.
func (l RawLocation) MarshalJSON() ([]byte, error) {
	if l.LngLat != nil {
		return json.Marshal(struct {
			Coordinates []float64 `json:"coordinates"`
		}{l.LngLat})
	}
	return json.Marshal(l.Display)
}

// ParseRawMessage decodes an ingestion message into a validated report.
func ParseRawMessage(msg RawMessage) (EmergencyReport, error) {
	var raw RawReport
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		return EmergencyReport{}, fmt.Errorf("%w: decode: %v", ErrInvalidReport, err)
	}
	if raw.ID == "" && len(msg.Key) > 0 {
		raw.ID = string(msg.Key)
	}
	return ParseReport(raw)
}

// ParseReport converts a RawReport into the canonical model and validates it.
// Missing ids are assigned a random UUID. Severity comes from the explicit
// field, then the numeric level, then the category.
func ParseReport(raw RawReport) (EmergencyReport, error) {
	coords, err := raw.coordinates()
	if err != nil {
		return EmergencyReport{}, err
	}

	status, err := ParseStatus(raw.Status)
	if err != nil {
		return EmergencyReport{}, fmt.Errorf("report %s: %w", raw.ID, err)
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw.Timestamp))
	if err != nil {
		return EmergencyReport{}, fmt.Errorf("report %s: %w: timestamp %q is not ISO-8601", raw.ID, ErrInvalidReport, raw.Timestamp)
	}

	category := firstNonEmpty(raw.Category, raw.Type)
	severity, err := raw.severity(category)
	if err != nil {
		return EmergencyReport{}, fmt.Errorf("report %s: %w", raw.ID, err)
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = uuid.NewString()
	}

	report := EmergencyReport{
		ID:          id,
		Title:       firstNonEmpty(raw.Title, category),
		Summary:     firstNonEmpty(raw.Summary, raw.Description),
		Category:    category,
		Coordinates: coords,
		Timestamp:   ts.UTC(),
		Status:      status,
		Severity:    severity,
		ImageURL:    strings.TrimSpace(raw.ImageURL),
		DroneID:     raw.DroneID,
	}
	if err := report.Validate(); err != nil {
		return EmergencyReport{}, err
	}
	return report, nil
}

// coordinates resolves the canonical position, preferring the explicit
// {lat, lng} object over the legacy [lng, lat] array.
func (raw RawReport) coordinates() (Coordinates, error) {
	if raw.Coordinates != nil {
		if raw.Coordinates.Lat == nil || raw.Coordinates.Lng == nil {
			return Coordinates{}, fmt.Errorf("report %s: %w: missing coordinates, need both lat and lng", raw.ID, ErrInvalidReport)
		}
		return Coordinates{Lat: *raw.Coordinates.Lat, Lng: *raw.Coordinates.Lng}, nil
	}
	if raw.Location != nil && raw.Location.LngLat != nil {
		if len(raw.Location.LngLat) != 2 {
			return Coordinates{}, fmt.Errorf("report %s: %w: location.coordinates must be [lng, lat]", raw.ID, ErrInvalidReport)
		}
		return Coordinates{Lat: raw.Location.LngLat[1], Lng: raw.Location.LngLat[0]}, nil
	}
	return Coordinates{}, fmt.Errorf("report %s: %w: missing coordinates", raw.ID, ErrInvalidReport)
}

func (raw RawReport) severity(category string) (Severity, error) {
	if value := strings.TrimSpace(string(raw.Severity)); value != "" {
		if level, err := strconv.Atoi(value); err == nil {
			return SeverityForLevel(level)
		}
		return ParseSeverity(value)
	}
	if raw.SeverityLevel != 0 {
		return SeverityForLevel(raw.SeverityLevel)
	}
	return SeverityForCategory(category), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
