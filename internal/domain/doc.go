// Package domain models drone-detected emergency reports and the logic the
// dashboard depends on.
//
// # Reports
//
// An [EmergencyReport] is created by an external ingestion process (the drone
// agent) and is read-only to the dashboard except for its status. Severity is
// fixed when the report is created and never follows the status.
//
// Lifecycle:
//
//	REPORTED -> IN_PROGRESS -> DISPATCHED -> RESOLVED
//
// Any transition may be requested. Moves against this order are allowed for
// manual correction but are flagged as backward (see [ReportStatus.IsBackward]).
//
// # Coordinates
//
// Two layouts exist in upstream data: an object `{lat, lng}` and a legacy
// array `[lng, lat]` under `location.coordinates`. [ParseReport] converts both
// into [Coordinates] at the boundary; nothing past it sees the array form.
//
// # Severity derivation
//
// When a source omits severity, it is taken from the drone agent's numeric
// level (1-2 low, 3 medium, 4 high, 5 critical) or, failing that, from the
// category text:
//
//	fire, chemical                 critical
//	accident, crash, medical, gas  high
//	anything else                  medium
//
// # Reverse geocoding
//
// [ResolveLocation] turns coordinates into display text with a fixed fallback
// order: structured address, then the provider's display name, then the
// formatted coordinates. Structured addresses are joined as
//
//	"<house number> <road>, <locality>, <city>, <region>, <country>"
//
// skipping empty parts, a locality already present in the street line or
// equal to the city, and a region equal to the city. Coordinates are printed
// with six decimals and hemisphere letters, e.g. "51.107900° N, 17.038500° E".
package domain
