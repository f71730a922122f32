// Package kafka publishes normalized harm records to the platform sink
// topic so downstream consumers (API, warehouse loaders) can reuse the
// normalization without re-running it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/storm-harm-report/internal/config"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
)

// Writer produces normalized records to a Kafka topic.
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
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple normalized records in a
// single WriteMessages call. Deterministic record IDs keep replays
// idempotent for downstream upserts.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a NormalizedRecord into a Kafka message.
func serializeToMessage(rec domain.NormalizedRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize normalized record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event", Value: []byte(rec.Event)},
			{Key: "era", Value: []byte(rec.Era.String())},
			{Key: "processed_at", Value: []byte(rec.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
