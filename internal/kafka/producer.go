package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// Lifecycle event type constants
const (
	EventTradeOpened = "TRADE_OPENED"
	EventTradeClosed = "TRADE_CLOSED"
)

// LifecycleMessage is the wire format for trade lifecycle notifications
type LifecycleMessage struct {
	EventType string        `json:"event_type"`
	Trade     *models.Trade `json:"trade"`
	Timestamp time.Time     `json:"timestamp"`
}

// Producer publishes trade lifecycle events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTradeOpened publishes a trade opened event
func (p *Producer) PublishTradeOpened(ctx context.Context, trade *models.Trade) error {
	return p.publish(ctx, trade, EventTradeOpened)
}

// PublishTradeClosed publishes a trade closed event
func (p *Producer) PublishTradeClosed(ctx context.Context, trade *models.Trade) error {
	return p.publish(ctx, trade, EventTradeClosed)
}

func (p *Producer) publish(ctx context.Context, trade *models.Trade, eventType string) error {
	event := LifecycleMessage{
		EventType: eventType,
		Trade:     trade,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// keyed by trade id so one trade's events stay in partition order
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(trade.ID)),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
