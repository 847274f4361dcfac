package domain

import (
	"fmt"
	"strings"
)

// ReportStatus is a lifecycle state of an emergency report.
type ReportStatus string

const (
	StatusReported   ReportStatus = "REPORTED"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusDispatched ReportStatus = "DISPATCHED"
	StatusResolved   ReportStatus = "RESOLVED"
)

// Statuses lists every lifecycle state in its intended order.
func Statuses() []ReportStatus {
	return []ReportStatus{StatusReported, StatusInProgress, StatusDispatched, StatusResolved}
}

// Valid reports whether s is one of the four lifecycle states.
func (s ReportStatus) Valid() bool {
	return s.rank() >= 0
}

// rank is the position of s in the lifecycle, or -1 for unknown values.
func (s ReportStatus) rank() int {
	switch s {
	case StatusReported:
		return 0
	case StatusInProgress:
		return 1
	case StatusDispatched:
		return 2
	case StatusResolved:
		return 3
	default:
		return -1
	}
}

// IsBackward reports whether moving from s to next goes against the lifecycle
// order. Unknown values are never considered backward.
func (s ReportStatus) IsBackward(next ReportStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() < s.rank()
}

// Title is the human-readable column heading for s.
func (s ReportStatus) Title() string {
	switch s {
	case StatusReported:
		return "Reported"
	case StatusInProgress:
		return "In Progress"
	case StatusDispatched:
		return "Dispatched"
	case StatusResolved:
		return "Resolved"
	default:
		return string(s)
	}
}

// ParseStatus accepts the canonical enum values as well as the display labels
// used by older data sources ("In Progress", "resolved", "in-progress").
func ParseStatus(value string) (ReportStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	s := ReportStatus(normalized)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return s, nil
}
