package viewmodel

import (
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
)

// Detail view states.
const (
	StateResolving = "resolving"
	StateReady     = "ready"
	StateNotFound  = "not_found"
)

// Image states. A missing image is distinct from a URL that fails to load,
// which only the presentation layer can detect.
const (
	ImageAvailable = "available"
	ImageMissing   = "missing"
)

// Map defaults for the detail marker.
const (
	MapZoom         = 14
	MapRadiusMeters = 500
)

// Image describes the evidence image slot.
type Image struct {
	State string `json:"state"`
	URL   string `json:"url,omitempty"`
}

// MapMarker centers the map widget on the report.
type MapMarker struct {
	Center       domain.Coordinates `json:"center"`
	Zoom         int                `json:"zoom"`
	RadiusMeters int                `json:"radiusMeters"`
}

// DetailView is everything the single-report page renders.
type DetailView struct {
	State           string               `json:"state"`
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Summary         string               `json:"summary"`
	Category        string               `json:"category,omitempty"`
	Status          domain.ReportStatus  `json:"status"`
	StatusTitle     string               `json:"statusTitle"`
	Severity        SeverityPresentation `json:"severity"`
	ReportedAt      string               `json:"reportedAt"`
	LocationText    string               `json:"locationText"`
	CoordinatesText string               `json:"coordinatesText"`
	LocationSource  string               `json:"locationSource,omitempty"`
	Image           Image                `json:"image"`
	Map             MapMarker            `json:"map"`
	DroneID         string               `json:"droneId,omitempty"`
}

// NewDetailView renders a report together with its resolved location.
func NewDetailView(r domain.EmergencyReport, loc domain.ResolvedLocation, tz *time.Location) DetailView {
	v := baseDetail(r, tz)
	v.State = StateReady
	v.LocationText = loc.LocationText
	v.CoordinatesText = loc.CoordinatesText
	v.LocationSource = loc.Source
	return v
}

// PendingDetailView renders a report whose location is still being resolved.
func PendingDetailView(r domain.EmergencyReport, tz *time.Location) DetailView {
	v := baseDetail(r, tz)
	v.State = StateResolving
	return v
}

func baseDetail(r domain.EmergencyReport, tz *time.Location) DetailView {
	img := Image{State: ImageMissing}
	if r.HasImage() {
		img = Image{State: ImageAvailable, URL: r.ImageURL}
	}
	return DetailView{
		ID:          r.ID,
		Title:       r.Title,
		Summary:     r.Summary,
		Category:    r.Category,
		Status:      r.Status,
		StatusTitle: r.Status.Title(),
		Severity:    PresentSeverity(r.Severity),
		ReportedAt:  FormatTimestamp(r.Timestamp, tz),
		Image:       img,
		Map: MapMarker{
			Center:       r.Coordinates,
			Zoom:         MapZoom,
			RadiusMeters: MapRadiusMeters,
		},
		DroneID: r.DroneID,
	}
}
