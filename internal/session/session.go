// Package session owns the lifetime of mounted dashboard views: the periodic
// board refresh and the detail loader of each view.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/viewmodel"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

var (
	// ErrSessionNotFound is returned for an unknown or already closed session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// Snapshot is the last assembled board of a session.
type Snapshot struct {
	Board       viewmodel.Board `json:"board"`
	RefreshedAt time.Time       `json:"refreshedAt"`
}

// Options configures a session.
type Options struct {
	RefreshInterval time.Duration
	Timezone        *time.Location
	Clock           clockwork.Clock
}

// Session is one mounted dashboard view. It refreshes its board on a cron
// schedule until closed and tracks the detail page it is showing.
type Session struct {
	id      string
	reports Reports
	loader  *DetailLoader
	tz      *time.Location
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	scheduler  *cron.Cron
	refreshing atomic.Bool

	mu           sync.RWMutex
	snapshot     Snapshot
	detail       *viewmodel.DetailView
	generation   uint64
	cancelDetail context.CancelFunc
	closed       bool
	resolving    sync.WaitGroup
}

func newSession(id string, reports Reports, loader *DetailLoader, opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	logger = logger.With("session_id", id)
	cl := cronLogger{logger: logger}

	s := &Session{
		id:      id,
		reports: reports,
		loader:  loader,
		tz:      opts.Timezone,
		clock:   opts.Clock,
		logger:  logger,
		metrics: metrics,
		scheduler: cron.New(
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
			cron.WithLogger(cl),
		),
	}

	if _, err := s.Refresh(); err != nil {
		return nil, err
	}
	if opts.RefreshInterval > 0 {
		s.scheduler.Schedule(cron.Every(opts.RefreshInterval), cron.FuncJob(s.scheduledRefresh))
		s.scheduler.Start()
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Refresh rebuilds the board from the store. It returns false without doing
// anything when another refresh is still running. A failed refresh keeps the
// previous board.
func (s *Session) Refresh() (bool, error) {
	if s.isClosed() {
		return false, ErrSessionClosed
	}
	if !s.refreshing.CompareAndSwap(false, true) {
		s.metrics.Refreshes.WithLabelValues("skipped").Inc()
		return false, nil
	}
	defer s.refreshing.Store(false)

	board, err := viewmodel.NewBoard(s.reports.List(), s.tz)
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("error").Inc()
		return false, fmt.Errorf("refresh session %s: %w", s.id, err)
	}

	s.mu.Lock()
	s.snapshot = Snapshot{Board: board, RefreshedAt: s.clock.Now().UTC()}
	s.mu.Unlock()

	s.metrics.Refreshes.WithLabelValues("ok").Inc()
	return true, nil
}

func (s *Session) scheduledRefresh() {
	if _, err := s.Refresh(); err != nil && !errors.Is(err, ErrSessionClosed) {
		s.logger.Error("scheduled refresh failed", "error", err)
	}
}

// Snapshot returns the last assembled board.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Navigate switches the detail page to reportID. It returns the pending view
// at once and resolves the location in the background; a resolution that
// finishes after a later Navigate or Close is discarded.
func (s *Session) Navigate(reportID string) (viewmodel.DetailView, error) {
	report, getErr := s.reports.Get(reportID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return viewmodel.DetailView{}, ErrSessionClosed
	}
	if s.cancelDetail != nil {
		s.cancelDetail()
		s.cancelDetail = nil
	}
	s.generation++

	if getErr != nil {
		view := NotFoundView(reportID)
		s.detail = &view
		return view, getErr
	}

	pending := viewmodel.PendingDetailView(report, s.tz)
	s.detail = &pending

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelDetail = cancel
	s.resolving.Add(1)
	go s.resolve(ctx, s.generation, report)

	return pending, nil
}

func (s *Session) resolve(ctx context.Context, gen uint64, report domain.EmergencyReport) {
	defer s.resolving.Done()

	view := s.loader.render(ctx, report)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		s.metrics.StaleLocationsDrop.Inc()
		s.logger.Debug("discarding stale location", "report_id", report.ID)
		return
	}
	s.detail = &view
	s.cancelDetail = nil
}

// Detail returns the current detail view, or false if the session has not
// navigated to a report.
func (s *Session) Detail() (viewmodel.DetailView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.detail == nil {
		return viewmodel.DetailView{}, false
	}
	return *s.detail, true
}

// Close stops the refresh schedule and cancels any pending resolution, then
// waits for running work to finish or ctx to expire.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.cancelDetail != nil {
		s.cancelDetail()
		s.cancelDetail = nil
	}
	s.mu.Unlock()

	stopped := s.scheduler.Stop()
	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.resolving.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close session %s: %w", s.id, ctx.Err())
	}
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// cronLogger routes scheduler logs into slog. Per-run info logs go to Debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
