//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/config"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/domain"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/ingest"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/seed"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testReportsTopic = "test-reports"
	testStatusTopic  = "test-status"
	kafkaImage       = "confluentinc/confluent-local:7.5.0"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("dashboard-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func testConfig(broker string) *config.Config {
	return &config.Config{
		KafkaEnabled:      true,
		KafkaBrokers:      []string{broker},
		KafkaReportsTopic: testReportsTopic,
		KafkaStatusTopic:  testStatusTopic,
		KafkaGroupID:      fmt.Sprintf("test-dashboard-%d", time.Now().UnixNano()),
	}
}

func seededStore(t *testing.T, publisher store.StatusPublisher, metrics *observability.Metrics) *store.Store {
	t.Helper()
	reports, err := seed.Default()
	require.NoError(t, err)
	st := store.New(publisher, discardLogger(), metrics)
	require.NoError(t, st.Seed(reports))
	return st
}

// TestIngestFromKafka publishes drone reports, including one in the legacy
// [lng, lat] layout and one poison message, and checks the store picks up
// exactly the valid ones.
func TestIngestFromKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReportsTopic)
	cfg := testConfig(broker)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testReportsTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("drn-100"), Value: []byte(`{
			"title": "Gas Leak at Plac Grunwaldzki",
			"category": "gas",
			"coordinates": {"lat": 51.1118, "lng": 17.0603},
			"timestamp": "2025-06-12T09:10:00Z",
			"status": "REPORTED",
			"droneId": "DRN-311"
		}`)},
		kafkago.Message{Key: []byte("drn-101"), Value: []byte("{not json")},
		kafkago.Message{Key: []byte("drn-102"), Value: []byte(`{
			"id": "drn-102",
			"type": "fire",
			"description": "Grass fire near the embankment.",
			"location": {"coordinates": [17.0200, 51.0900]},
			"timestamp": "2025-06-12T09:12:00Z",
			"status": "reported"
		}`)},
	))

	metrics := observability.NewMetricsForTesting()
	st := seededStore(t, nil, metrics)
	seeded := len(st.List())

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- ingest.New(reader, st, discardLogger(), metrics).Run(runCtx) }()

	require.Eventually(t, func() bool {
		return len(st.List()) == seeded+2
	}, 90*time.Second, 200*time.Millisecond, "valid reports ingested")

	stop()
	require.NoError(t, <-done)

	gas, err := st.Get("drn-100")
	require.NoError(t, err, "message key becomes the id")
	assert.Equal(t, domain.SeverityHigh, gas.Severity)

	fire, err := st.Get("drn-102")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 51.09, Lng: 17.02}, fire.Coordinates)
	assert.Equal(t, domain.SeverityCritical, fire.Severity)
}

// TestStatusChangePublished updates a status through a store backed by the
// Kafka writer and reads the event back from the status topic.
func TestStatusChangePublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testStatusTopic)
	cfg := testConfig(broker)

	writer := kafka.NewStatusWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	st := seededStore(t, writer, observability.NewMetricsForTesting())

	updated, err := st.UpdateStatus(ctx, "4", domain.StatusInProgress)
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testStatusTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from status topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "4", string(msg.Key))
	assert.Equal(t, kafka.EventTypeStatusChanged, headers["event_type"])
	_, err = time.Parse(time.RFC3339, headers["changed_at"])
	assert.NoError(t, err, "changed_at should be valid RFC3339")

	var change domain.StatusChange
	require.NoError(t, json.Unmarshal(msg.Value, &change))
	assert.Equal(t, "4", change.ReportID)
	assert.Equal(t, domain.StatusInProgress, change.To)
	assert.Equal(t, updated.UpdatedAt, change.ChangedAt)
}
