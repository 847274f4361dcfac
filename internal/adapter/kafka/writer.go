package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/config"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// EventTypeStatusChanged is the event_type header on status-change messages.
const EventTypeStatusChanged = "status_changed"

// StatusWriter produces status-change events to a Kafka topic.
// It implements store.StatusPublisher.
type StatusWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewStatusWriter creates a Kafka producer for the configured status topic.
func NewStatusWriter(cfg *config.Config, logger *slog.Logger) *StatusWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaStatusTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &StatusWriter{writer: w, logger: logger}
}

// PublishStatusChange writes one event keyed by report id, so every change to
// a report lands on the same partition in order.
func (w *StatusWriter) PublishStatusChange(ctx context.Context, change domain.StatusChange) error {
	msg, err := serializeStatusChange(change)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write status change: %w", err)
	}
	w.logger.Debug("status change published", "report_id", change.ReportID, "event_id", change.EventID)
	return nil
}

func (w *StatusWriter) Close() error {
	return w.writer.Close()
}

// serializeStatusChange marshals a StatusChange into a Kafka message.
func serializeStatusChange(change domain.StatusChange) (kafkago.Message, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize status change: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(change.ReportID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventTypeStatusChanged)},
			{Key: "changed_at", Value: []byte(change.ChangedAt.Format(time.RFC3339))},
		},
	}, nil
}
