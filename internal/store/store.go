package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	"github.com/google/uuid"
)

// StatusPublisher durably records a status change before the store commits it.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, change domain.StatusChange) error
}

// Store is the in-memory canonical collection of emergency reports.
// List order is insertion order.
type Store struct {
	mu      sync.RWMutex
	reports []domain.EmergencyReport
	index   map[string]int
	seeded  bool

	publisher StatusPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates an empty store. publisher may be nil, in which case status
// changes are committed without being published.
func New(publisher StatusPublisher, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		index:     make(map[string]int),
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Seed loads the initial collection. It fails without modifying the store if
// any record is invalid or an id repeats.
func (s *Store) Seed(reports []domain.EmergencyReport) error {
	seen := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("seed: %w: duplicate id %q", domain.ErrInvalidReport, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reports {
		if _, exists := s.index[r.ID]; exists {
			return fmt.Errorf("seed: %w: id %q already stored", domain.ErrInvalidReport, r.ID)
		}
	}
	for _, r := range reports {
		s.index[r.ID] = len(s.reports)
		s.reports = append(s.reports, r)
	}
	s.seeded = true
	s.refreshGauge()

	s.logger.Info("store seeded", "reports", len(reports))
	return nil
}

// Add inserts an ingested report. A report whose id is already stored is a
// no-op and returns false, which makes redelivered messages harmless.
func (s *Store) Add(_ context.Context, report domain.EmergencyReport) (bool, error) {
	if err := report.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[report.ID]; exists {
		return false, nil
	}
	s.index[report.ID] = len(s.reports)
	s.reports = append(s.reports, report)
	s.refreshGauge()
	return true, nil
}

// List returns a snapshot of all reports.
func (s *Store) List() []domain.EmergencyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.EmergencyReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// Get returns the report with the given id or domain.ErrNotFound.
func (s *Store) Get(id string) (domain.EmergencyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.EmergencyReport{}, fmt.Errorf("report %q: %w", id, domain.ErrNotFound)
	}
	return s.reports[i], nil
}

// UpdateStatus replaces the status of one report and returns the updated
// record. Setting the current status again changes nothing and publishes
// nothing. When a publisher is configured the change is published first; a
// publish failure leaves the store untouched.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (domain.EmergencyReport, error) {
	if !status.Valid() {
		s.metrics.StatusUpdates.WithLabelValues("invalid").Inc()
		return domain.EmergencyReport{}, fmt.Errorf("update report %q: %w: %q", id, domain.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		s.metrics.StatusUpdates.WithLabelValues("not_found").Inc()
		return domain.EmergencyReport{}, fmt.Errorf("update report %q: %w", id, domain.ErrNotFound)
	}

	current := s.reports[i]
	if current.Status == status {
		s.metrics.StatusUpdates.WithLabelValues("unchanged").Inc()
		return current, nil
	}

	change := domain.StatusChange{
		EventID:   uuid.NewString(),
		ReportID:  id,
		From:      current.Status,
		To:        status,
		Backward:  current.Status.IsBackward(status),
		ChangedAt: domain.Now(),
	}

	if s.publisher != nil {
		if err := s.publisher.PublishStatusChange(ctx, change); err != nil {
			s.metrics.StatusUpdates.WithLabelValues("publish_error").Inc()
			s.logger.Error("publish status change failed", "report_id", id, "error", err)
			return domain.EmergencyReport{}, fmt.Errorf("update report %q: publish: %w", id, err)
		}
	}

	if change.Backward {
		s.metrics.BackwardTransitions.Inc()
		s.logger.Warn("backward status transition",
			"report_id", id,
			"from", change.From,
			"to", change.To,
		)
	}

	current.Status = status
	current.UpdatedAt = change.ChangedAt
	s.reports[i] = current
	s.refreshGauge()

	s.metrics.StatusUpdates.WithLabelValues("updated").Inc()
	s.logger.Info("status updated", "report_id", id, "from", change.From, "to", change.To)
	return current, nil
}

// CheckReadiness returns nil once the store has been seeded.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.seeded {
		return errors.New("report store has not been seeded")
	}
	return nil
}

// refreshGauge recomputes the per-status gauge. Callers hold the write lock.
func (s *Store) refreshGauge() {
	counts := make(map[domain.ReportStatus]int, 4)
	for _, r := range s.reports {
		counts[r.Status]++
	}
	for _, status := range domain.Statuses() {
		s.metrics.Reports.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
