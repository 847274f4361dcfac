package kafka

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/config"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes drone reports from the ingestion topic.
// It implements ingest.Source.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer-group reader for the configured reports topic.
// Offsets are committed explicitly through RawMessage.Commit.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaReportsTopic,
		GroupID:     cfg.KafkaGroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{reader: r, logger: logger}
}

// Fetch blocks until the next message is available or ctx is done.
func (r *Reader) Fetch(ctx context.Context) (domain.RawMessage, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.RawMessage{}, err
	}
	raw := mapMessageToRaw(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func mapMessageToRaw(msg kafkago.Message) domain.RawMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawMessage{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
