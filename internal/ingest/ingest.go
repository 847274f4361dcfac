// Package ingest consumes drone-emitted reports and adds them to the store.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Source yields raw report messages one at a time.
type Source interface {
	Fetch(ctx context.Context) (domain.RawMessage, error)
}

// Sink accepts validated reports. Add returns false for an id it already holds.
type Sink interface {
	Add(ctx context.Context, report domain.EmergencyReport) (bool, error)
}

// Ingestor runs the fetch-parse-add loop.
type Ingestor struct {
	source  Source
	sink    Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Ingestor.
func New(source Source, sink Sink, logger *slog.Logger, metrics *observability.Metrics) *Ingestor {
	return &Ingestor{
		source:  source,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// Run consumes until ctx is cancelled. Broker errors are retried with
// exponential backoff; invalid messages are logged, counted and committed so
// they are not redelivered.
func (in *Ingestor) Run(ctx context.Context) error {
	in.logger.Info("ingestion started")
	in.metrics.IngestRunning.Set(1)
	defer in.metrics.IngestRunning.Set(0)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			in.logger.Info("ingestion stopping", "reason", ctx.Err())
			return nil
		}

		msg, err := in.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				in.logger.Info("ingestion stopping", "reason", ctx.Err())
				return nil
			}
			in.logger.Error("fetch report failed", "error", err, "retry_in", backoff)
			if !sharedretry.SleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = sharedretry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		in.handle(ctx, msg)
	}
}

// handle processes one message and commits its offset, whatever the outcome.
func (in *Ingestor) handle(ctx context.Context, msg domain.RawMessage) {
	defer in.commit(ctx, msg)

	report, err := domain.ParseRawMessage(msg)
	if err != nil {
		in.reject(msg, err)
		return
	}

	added, err := in.sink.Add(ctx, report)
	if err != nil {
		in.reject(msg, err)
		return
	}
	if !added {
		in.logger.Debug("duplicate report ignored", "report_id", report.ID)
		return
	}

	in.metrics.ReportsIngested.Inc()
	in.logger.Info("report ingested",
		"report_id", report.ID,
		"status", report.Status,
		"severity", report.Severity,
		"drone_id", report.DroneID,
	)
}

func (in *Ingestor) reject(msg domain.RawMessage, err error) {
	in.metrics.IngestRejected.Inc()
	level := slog.LevelWarn
	if !errors.Is(err, domain.ErrInvalidReport) {
		level = slog.LevelError
	}
	in.logger.Log(context.Background(), level, "report rejected, skipping message",
		"error", err,
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)
}

func (in *Ingestor) commit(ctx context.Context, msg domain.RawMessage) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		in.logger.Warn("commit offset failed", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
}
