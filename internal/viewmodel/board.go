package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
)

// TimestampLayout renders report times as "June 12, 2025 at 8:43 AM".
const TimestampLayout = "January 2, 2006 at 3:04 PM"

// Card is one report on the board.
type Card struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Summary      string               `json:"summary"`
	Status       domain.ReportStatus  `json:"status"`
	Severity     SeverityPresentation `json:"severity"`
	LocationText string               `json:"locationText"`
	ReportedAt   string               `json:"reportedAt"`
	ImageURL     string               `json:"imageUrl,omitempty"`
	DroneID      string               `json:"droneId,omitempty"`
}

// Column is one status bucket of the board.
type Column struct {
	Status    domain.ReportStatus `json:"status"`
	Title     string              `json:"title"`
	ClassName string              `json:"className"`
	Count     int                 `json:"count"`
	Cards     []Card              `json:"cards"`
}

// Board is the four-column dashboard in lifecycle order.
type Board struct {
	Columns []Column `json:"columns"`
	Total   int      `json:"total"`
}

// NewBoard classifies reports and renders each bucket as a column. Times are
// shown in tz; a nil tz means UTC.
func NewBoard(reports []domain.EmergencyReport, tz *time.Location) (Board, error) {
	buckets, err := domain.Classify(reports)
	if err != nil {
		return Board{}, fmt.Errorf("build board: %w", err)
	}

	board := Board{Columns: make([]Column, 0, len(domain.Statuses()))}
	for _, status := range domain.Statuses() {
		bucket := buckets[status]
		col := Column{
			Status:    status,
			Title:     status.Title(),
			ClassName: columnClass(status),
			Count:     len(bucket),
			Cards:     make([]Card, 0, len(bucket)),
		}
		for _, r := range bucket {
			col.Cards = append(col.Cards, newCard(r, tz))
		}
		board.Columns = append(board.Columns, col)
		board.Total += col.Count
	}
	return board, nil
}

// Column returns the column for status.
func (b Board) Column(status domain.ReportStatus) (Column, bool) {
	for _, c := range b.Columns {
		if c.Status == status {
			return c, true
		}
	}
	return Column{}, false
}

func newCard(r domain.EmergencyReport, tz *time.Location) Card {
	return Card{
		ID:           r.ID,
		Title:        r.Title,
		Summary:      r.Summary,
		Status:       r.Status,
		Severity:     PresentSeverity(r.Severity),
		LocationText: domain.FormatCoordinates(r.Coordinates),
		ReportedAt:   FormatTimestamp(r.Timestamp, tz),
		ImageURL:     r.ImageURL,
		DroneID:      r.DroneID,
	}
}

// columnClass is "column-reported", "column-in-progress", and so on.
func columnClass(status domain.ReportStatus) string {
	return "column-" + strings.ReplaceAll(strings.ToLower(string(status)), "_", "-")
}

// FormatTimestamp renders t in tz using TimestampLayout.
func FormatTimestamp(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	return t.In(tz).Format(TimestampLayout)
}
