package domain

import (
	"fmt"
	"strings"
)

// Severity is the urgency tier of a report. It is fixed at creation and is
// independent of the lifecycle status.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every tier from least to most urgent.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Valid reports whether s is one of the four tiers.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// ParseSeverity normalizes case and whitespace and rejects unknown tiers.
func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidReport, value)
	}
	return s, nil
}

// SeverityForLevel maps the drone agent's 1-5 urgency scale onto the four tiers:
// 1-2 low, 3 medium, 4 high, 5 critical.
func SeverityForLevel(level int) (Severity, error) {
	switch {
	case level >= 1 && level <= 2:
		return SeverityLow, nil
	case level == 3:
		return SeverityMedium, nil
	case level == 4:
		return SeverityHigh, nil
	case level == 5:
		return SeverityCritical, nil
	default:
		return "", fmt.Errorf("%w: severity level %d outside 1-5", ErrInvalidReport, level)
	}
}

// SeverityForCategory derives a tier from the report type when the source did
// not provide one:
//   - fire, chemical: critical
//   - accident, crash, medical, gas: high
//   - anything else: medium
func SeverityForCategory(category string) Severity {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "fire"), strings.Contains(c, "chemical"):
		return SeverityCritical
	case strings.Contains(c, "accident"), strings.Contains(c, "crash"),
		strings.Contains(c, "medical"), strings.Contains(c, "gas"):
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
