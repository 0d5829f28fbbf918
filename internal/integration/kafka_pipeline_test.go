//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/csvsource"
	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/oil-spill-dashboard/internal/config"
	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
	"github.com/couchcryptid/oil-spill-dashboard/internal/pipeline"
)

const testSinkTopic = "test-cleaned-incidents"

// publishedMessage holds a deserialized message read from the sink topic.
type publishedMessage struct {
	Incident domain.Incident
	Key      string
	Headers  map[string]string
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("spill-dashboard-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

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

// readPublished reads a single message from the sink consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var inc domain.Incident
	require.NoError(t, json.Unmarshal(msg.Value, &inc), "unmarshal sink message")

	return publishedMessage{Incident: inc, Key: string(msg.Key), Headers: headers}
}

// TestPipelinePublishesCleanedDataset loads the bundled dataset, publishes it
// through the Kafka writer, and reads every incident back from the topic.
func TestPipelinePublishesCleanedDataset(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
		BatchSize:      5,
	}
	writer := kafka.NewWriter(cfg, slog.Default())
	defer writer.Close()

	src := csvsource.New(filepath.Join("..", "..", "dataset", "incidents.csv"))
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(src, pipeline.NewPreparer(nil, slog.Default()), writer, slog.Default(), metrics, cfg.BatchSize)

	require.NoError(t, p.Run(ctx))
	tbl, ok := p.Table()
	require.True(t, ok)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
	})
	defer consumer.Close()

	byKey := make(map[string]publishedMessage, tbl.Len())
	for range tbl.Len() {
		m := readPublished(ctx, t, consumer)
		byKey[m.Key] = m
	}
	require.Len(t, byKey, tbl.Len())

	for _, row := range tbl.Rows {
		m, ok := byKey[row.ID]
		require.True(t, ok, "incident %s not published", row.ID)
		assert.Equal(t, row.Threat, m.Headers["threat"])
		assert.Equal(t, strconv.Itoa(row.Year), m.Headers["year"])
		assert.Equal(t, row.MaxPtlReleaseGallons, m.Incident.MaxPtlReleaseGallons)
		assert.NotEmpty(t, m.Incident.Location)
	}
}
