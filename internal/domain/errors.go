package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no report has the requested id.
	ErrNotFound = errors.New("report not found")

	// ErrInvalidReport marks a record that violates a data-model invariant.
	// Ingestion rejects such records instead of letting them reach the board.
	ErrInvalidReport = errors.New("invalid report")

	// ErrInvalidStatus is an ErrInvalidReport for a status outside the lifecycle enum.
	ErrInvalidStatus = fmt.Errorf("%w: unknown status", ErrInvalidReport)

	// ErrGeocodeUnavailable covers provider outages, timeouts, and unparseable
	// responses. It is always recovered into the coordinate fallback.
	ErrGeocodeUnavailable = errors.New("geocoding unavailable")
)
