package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/store"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/viewmodel"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wroclaw = domain.Coordinates{Lat: 51.1079, Lng: 17.0385}
	berlin  = domain.Coordinates{Lat: 52.52, Lng: 13.405}
)

type geocoderFunc func(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error)

func (f geocoderFunc) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.GeocodingResult, error) {
	return f(ctx, lat, lng)
}

func addressOf(city string) geocoderFunc {
	return func(context.Context, float64, float64) (domain.GeocodingResult, error) {
		return domain.GeocodingResult{Address: domain.Address{City: city, Country: "Poland"}}, nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func report(id string, status domain.ReportStatus, coords domain.Coordinates) domain.EmergencyReport {
	return domain.EmergencyReport{
		ID:          id,
		Title:       "Incident " + id,
		Coordinates: coords,
		Timestamp:   time.Date(2025, time.June, 12, 8, 43, 21, 0, time.UTC),
		Status:      status,
		Severity:    domain.SeverityHigh,
	}
}

type fixture struct {
	store   *store.Store
	metrics *observability.Metrics
	clock   *clockwork.FakeClock
	manager *Manager
}

func newFixture(t *testing.T, geocoder domain.Geocoder, interval time.Duration) *fixture {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	st := store.New(nil, discardLogger(), metrics)
	require.NoError(t, st.Seed([]domain.EmergencyReport{
		report("1", domain.StatusReported, wroclaw),
		report("2", domain.StatusInProgress, berlin),
		report("3", domain.StatusResolved, wroclaw),
	}))

	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 12, 9, 0, 0, 0, time.UTC))
	loader := NewDetailLoader(st, geocoder, time.Second, time.UTC, discardLogger(), metrics)
	m := NewManager(st, loader, Options{RefreshInterval: interval, Timezone: time.UTC, Clock: clock}, discardLogger(), metrics)
	t.Cleanup(func() { _ = m.CloseAll(context.Background()) })

	return &fixture{store: st, metrics: metrics, clock: clock, manager: m}
}

func (f *fixture) open(t *testing.T) *Session {
	t.Helper()
	s, err := f.manager.Open()
	require.NoError(t, err)
	return s
}

func waitForState(t *testing.T, s *Session, state string) viewmodel.DetailView {
	t.Helper()
	var view viewmodel.DetailView
	require.Eventually(t, func() bool {
		v, ok := s.Detail()
		view = v
		return ok && v.State == state
	}, 2*time.Second, 10*time.Millisecond)
	return view
}

func TestManager_OpenGetClose(t *testing.T) {
	f := newFixture(t, nil, 0)

	s := f.open(t)
	snap := s.Snapshot()
	assert.Equal(t, 3, snap.Board.Total)
	assert.Equal(t, f.clock.Now(), snap.RefreshedAt)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.SessionsActive), 0)

	got, err := f.manager.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, f.manager.Close(context.Background(), s.ID()))
	assert.InDelta(t, 0, testutil.ToFloat64(f.metrics.SessionsActive), 0)

	_, err = f.manager.Get(s.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, f.manager.Close(context.Background(), s.ID()), ErrSessionNotFound)
}

func TestSession_RefreshPicksUpStatusChanges(t *testing.T) {
	f := newFixture(t, nil, 0)
	s := f.open(t)

	_, err := f.store.UpdateStatus(context.Background(), "1", domain.StatusDispatched)
	require.NoError(t, err)
	f.clock.Advance(5 * time.Second)

	refreshed, err := s.Refresh()
	require.NoError(t, err)
	assert.True(t, refreshed)

	snap := s.Snapshot()
	reported, _ := snap.Board.Column(domain.StatusReported)
	dispatched, _ := snap.Board.Column(domain.StatusDispatched)
	assert.Equal(t, 0, reported.Count)
	assert.Equal(t, 1, dispatched.Count)
	assert.Equal(t, f.clock.Now(), snap.RefreshedAt)
	assert.InDelta(t, 2, testutil.ToFloat64(f.metrics.Refreshes.WithLabelValues("ok")), 0)
}

// gatedReports blocks List until released once armed.
type gatedReports struct {
	Reports
	mu      sync.Mutex
	gate    chan struct{}
	entered chan struct{}
}

func (g *gatedReports) List() []domain.EmergencyReport {
	g.mu.Lock()
	gate, entered := g.gate, g.entered
	g.mu.Unlock()
	if gate != nil {
		close(entered)
		<-gate
	}
	return g.Reports.List()
}

func TestSession_OverlappingRefreshIsSkipped(t *testing.T) {
	f := newFixture(t, nil, 0)
	reports := &gatedReports{Reports: f.store}
	loader := NewDetailLoader(reports, nil, time.Second, time.UTC, discardLogger(), f.metrics)
	s, err := newSession("gated", reports, loader, Options{Clock: f.clock}, discardLogger(), f.metrics)
	require.NoError(t, err)

	reports.mu.Lock()
	reports.gate = make(chan struct{})
	reports.entered = make(chan struct{})
	reports.mu.Unlock()

	done := make(chan bool)
	go func() {
		ok, _ := s.Refresh()
		done <- ok
	}()
	<-reports.entered

	refreshed, err := s.Refresh()
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.Refreshes.WithLabelValues("skipped")), 0)

	reports.mu.Lock()
	close(reports.gate)
	reports.gate = nil
	reports.mu.Unlock()
	assert.True(t, <-done)

	require.NoError(t, s.Close(context.Background()))
}

func TestSession_ScheduledRefresh(t *testing.T) {
	f := newFixture(t, nil, time.Second)
	s := f.open(t)
	require.Equal(t, 3, s.Snapshot().Board.Total)

	added, err := f.store.Add(context.Background(), report("4", domain.StatusReported, berlin))
	require.NoError(t, err)
	require.True(t, added)

	assert.Eventually(t, func() bool {
		return s.Snapshot().Board.Total == 4
	}, 3*time.Second, 50*time.Millisecond)
}

func TestSession_NavigateResolvesLocation(t *testing.T) {
	f := newFixture(t, addressOf("Wrocław"), 0)
	s := f.open(t)

	_, ok := s.Detail()
	assert.False(t, ok)

	pending, err := s.Navigate("1")
	require.NoError(t, err)
	assert.Equal(t, viewmodel.StateResolving, pending.State)
	assert.Equal(t, "1", pending.ID)

	ready := waitForState(t, s, viewmodel.StateReady)
	assert.Equal(t, "Wrocław, Poland", ready.LocationText)
	assert.Equal(t, "51.107900° N, 17.038500° E", ready.CoordinatesText)
	assert.Equal(t, domain.SourceAddress, ready.LocationSource)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.LocationsResolved.WithLabelValues(domain.SourceAddress)), 0)
}

func TestSession_NavigateUnknownReport(t *testing.T) {
	f := newFixture(t, addressOf("Wrocław"), 0)
	s := f.open(t)

	view, err := s.Navigate("999")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, viewmodel.StateNotFound, view.State)

	current, ok := s.Detail()
	require.True(t, ok)
	assert.Equal(t, viewmodel.StateNotFound, current.State)
}

func TestSession_StaleResolutionIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	geocoder := geocoderFunc(func(ctx context.Context, lat, _ float64) (domain.GeocodingResult, error) {
		if lat == wroclaw.Lat {
			select {
			case <-release:
			case <-ctx.Done():
				return domain.GeocodingResult{}, ctx.Err()
			}
			return domain.GeocodingResult{Address: domain.Address{City: "Wrocław"}}, nil
		}
		return domain.GeocodingResult{Address: domain.Address{City: "Berlin"}}, nil
	})
	f := newFixture(t, geocoder, 0)
	s := f.open(t)

	_, err := s.Navigate("1")
	require.NoError(t, err)
	_, err = s.Navigate("2")
	require.NoError(t, err)

	ready := waitForState(t, s, viewmodel.StateReady)
	assert.Equal(t, "2", ready.ID)
	close(release)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(f.metrics.StaleLocationsDrop) == 1
	}, 2*time.Second, 10*time.Millisecond)

	current, _ := s.Detail()
	assert.Equal(t, "2", current.ID)
	assert.Equal(t, "Berlin", current.LocationText)
}

func TestSession_CloseStopsWork(t *testing.T) {
	geocoder := geocoderFunc(func(ctx context.Context, _, _ float64) (domain.GeocodingResult, error) {
		<-ctx.Done()
		return domain.GeocodingResult{}, ctx.Err()
	})
	f := newFixture(t, geocoder, time.Second)
	s := f.open(t)

	_, err := s.Navigate("1")
	require.NoError(t, err)

	require.NoError(t, s.Close(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.StaleLocationsDrop), 0)

	_, err = s.Refresh()
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Navigate("2")
	require.ErrorIs(t, err, ErrSessionClosed)

	current, _ := s.Detail()
	assert.Equal(t, viewmodel.StateResolving, current.State)
	require.NoError(t, s.Close(context.Background()), "second close is a no-op")
}

func TestDetailLoader_Load(t *testing.T) {
	f := newFixture(t, nil, 0)
	loader := NewDetailLoader(f.store, nil, time.Second, time.UTC, discardLogger(), f.metrics)

	view, err := loader.Load(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, viewmodel.StateReady, view.State)
	assert.Equal(t, "52.520000° N, 13.405000° E", view.LocationText)
	assert.Empty(t, view.CoordinatesText)
	assert.Equal(t, domain.SourceCoordinates, view.LocationSource)

	view, err = loader.Load(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, viewmodel.StateNotFound, view.State)
}
