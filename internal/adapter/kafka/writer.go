package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/irl-covid-dashboard/internal/config"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

// Writer publishes a snapshot event for each new dataset.
// It implements refresh.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes the snapshot event for ds.
func (w *Writer) Publish(ctx context.Context, ds *domain.Dataset) error {
	msg, err := serializeToMessage(domain.NewSnapshotEvent(ds))
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	w.logger.Debug("snapshot published", "dataset_id", ds.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SnapshotEvent into a Kafka message keyed by
// dataset ID.
func serializeToMessage(event domain.SnapshotEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.DatasetID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "loaded_at", Value: []byte(event.LoadedAt.Format(time.RFC3339))},
			{Key: "latest_date", Value: []byte(event.LatestDate)},
		},
	}, nil
}
