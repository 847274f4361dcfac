package viewmodel

import "github.com/couchcryptid/drone-emergency-dashboard/internal/domain"

// SeverityPresentation is how a severity tier is rendered: badge text, CSS
// class and icon variant.
type SeverityPresentation struct {
	Label     string `json:"label"`
	ClassName string `json:"className"`
	Icon      string `json:"icon"`
}

// Icon variants understood by the presentation layer.
const (
	IconAlertTriangle = "alert-triangle"
	IconAlertCircle   = "alert-circle"
	IconInfoCircle    = "info-circle"
	IconCheckCircle   = "check-circle"
)

// PresentSeverity maps every tier to its presentation. Values outside the four
// tiers get the medium presentation.
func PresentSeverity(s domain.Severity) SeverityPresentation {
	switch s {
	case domain.SeverityCritical:
		return SeverityPresentation{Label: "CRITICAL", ClassName: "severity-critical", Icon: IconAlertTriangle}
	case domain.SeverityHigh:
		return SeverityPresentation{Label: "HIGH", ClassName: "severity-high", Icon: IconAlertCircle}
	case domain.SeverityLow:
		return SeverityPresentation{Label: "LOW", ClassName: "severity-low", Icon: IconCheckCircle}
	case domain.SeverityMedium:
		return mediumPresentation
	default:
		return mediumPresentation
	}
}

var mediumPresentation = SeverityPresentation{Label: "MEDIUM", ClassName: "severity-medium", Icon: IconInfoCircle}
