package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/oil-spill-dashboard/internal/config"
	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

// Writer produces cleaned incidents to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes incidents in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, incidents []domain.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d incidents: %w", len(msgs), err)
	}
	w.logger.Debug("incidents written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an incident into a Kafka message keyed by its
// id, or by its source line when the dataset has no id column.
func serializeToMessage(inc domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(inc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident line %d: %w", inc.Line, err)
	}
	key := inc.ID
	if key == "" {
		key = "line-" + strconv.Itoa(inc.Line)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "threat", Value: []byte(inc.Threat)},
			{Key: "year", Value: []byte(strconv.Itoa(inc.Year))},
		},
	}, nil
}
