// Package kafka publishes completed availability tables to a Kafka topic for
// downstream consumers. Publishing is optional and best-effort: the scanner
// persists the table first and only then hands it here.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/seisops/availability/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces one message per availability table.
// It implements scanner.TablePublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishTable serializes a table as JSON and writes it keyed by station and
// year, so re-runs of the same unit compact to the latest table.
func (p *Publisher) PublishTable(ctx context.Context, table *domain.Table) error {
	msg, err := serializeTable(table)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeTable marshals a table into a Kafka message.
func serializeTable(table *domain.Table) (kafkago.Message, error) {
	data, err := json.Marshal(table)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize availability table: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%s.%d", table.StationID(), table.Year)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(table.StationID())},
			{Key: "year", Value: []byte(strconv.Itoa(table.Year))},
			{Key: "generated_at", Value: []byte(table.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
