package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/viewmodel"
)

// Reports is the read side of the report store.
type Reports interface {
	List() []domain.EmergencyReport
	Get(id string) (domain.EmergencyReport, error)
}

// DetailLoader renders single-report detail views, resolving the location
// through the configured geocoder. A nil geocoder renders coordinates only.
type DetailLoader struct {
	reports  Reports
	geocoder domain.Geocoder
	timeout  time.Duration
	tz       *time.Location
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewDetailLoader creates a DetailLoader. timeout bounds each resolution.
func NewDetailLoader(reports Reports, geocoder domain.Geocoder, timeout time.Duration, tz *time.Location, logger *slog.Logger, metrics *observability.Metrics) *DetailLoader {
	return &DetailLoader{
		reports:  reports,
		geocoder: geocoder,
		timeout:  timeout,
		tz:       tz,
		logger:   logger,
		metrics:  metrics,
	}
}

// Load resolves the detail view for id synchronously. It returns
// domain.ErrNotFound together with a not-found view when id is unknown.
func (l *DetailLoader) Load(ctx context.Context, id string) (viewmodel.DetailView, error) {
	report, err := l.reports.Get(id)
	if err != nil {
		return NotFoundView(id), err
	}
	return l.render(ctx, report), nil
}

func (l *DetailLoader) render(ctx context.Context, report domain.EmergencyReport) viewmodel.DetailView {
	loc := domain.ResolveLocation(ctx, l.geocoder, report.Coordinates, l.timeout, l.logger)
	l.metrics.LocationsResolved.WithLabelValues(loc.Source).Inc()
	return viewmodel.NewDetailView(report, loc, l.tz)
}

// NotFoundView is the detail state shown for an unknown report id.
func NotFoundView(id string) viewmodel.DetailView {
	return viewmodel.DetailView{State: viewmodel.StateNotFound, ID: id}
}
