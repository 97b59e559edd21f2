package events

import (
	"context"
	"encoding/json"
	"time"

	"linkback/internal/logger"

	"github.com/segmentio/kafka-go"
)

const (
	TypeProductsSynced    = "products.synced"
	TypeSaleRecorded      = "sale.recorded"
	TypeSaleStatusChanged = "sale.status_changed"
)

// Event is the envelope written to and read from the event topic.
type Event struct {
	Type      string                 `json:"type"`
	ShopID    string                 `json:"shop_id"`
	ProductID string                 `json:"product_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Publisher writes events to kafka, keyed by shop id.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers, topic string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ShopID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
