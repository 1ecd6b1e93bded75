package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// FillMessage is the wire format for broker execution fills
type FillMessage struct {
	UserID     int    `json:"user_id"`
	TradeID    int    `json:"trade_id"`
	Type       string `json:"type"`
	Price      string `json:"price"`
	Quantity   string `json:"quantity"`
	ExecutedAt string `json:"executed_at"`
	Note       string `json:"note"`
}

// EventAppender records an execution event on a trade's log
type EventAppender interface {
	AppendEvent(ctx context.Context, userID int, ev *models.TradeEvent) (*models.Trade, error)
}

// Consumer ingests broker execution fills and appends them to the owning
// trade's event log through the journal, so consumed fills get the same
// state transitions and outcome derivation as fills recorded over HTTP.
type Consumer struct {
	reader   *kafka.Reader
	appender EventAppender
	logger   zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for execution fills
func NewConsumer(brokers []string, topic, groupID string, appender EventAppender, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:   reader,
		appender: appender,
		logger:   logger,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().Str("topic", c.reader.Config().Topic).Msg("starting kafka consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.logger.Error().Err(err).Msg("failed to read message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().Err(err).
					Int64("offset", msg.Offset).
					Str("key", string(msg.Key)).
					Msg("failed to process fill")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var fill FillMessage
	if err := json.Unmarshal(msg.Value, &fill); err != nil {
		return fmt.Errorf("failed to unmarshal fill message: %w", err)
	}

	ev, err := c.convertFill(fill)
	if err != nil {
		return fmt.Errorf("failed to convert fill: %w", err)
	}

	trade, err := c.appender.AppendEvent(ctx, fill.UserID, ev)
	if err != nil {
		return fmt.Errorf("failed to append fill event: %w", err)
	}

	c.logger.Info().
		Int("trade_id", trade.ID).
		Str("type", ev.Type).
		Str("status", trade.Status).
		Msg("fill recorded")
	return nil
}

// convertFill maps a FillMessage to a TradeEvent
func (c *Consumer) convertFill(fill FillMessage) (*models.TradeEvent, error) {
	switch fill.Type {
	case models.EventEntry, models.EventAdd, models.EventReduce, models.EventExit:
	default:
		return nil, fmt.Errorf("invalid fill type: %s", fill.Type)
	}
	if fill.TradeID == 0 {
		return nil, fmt.Errorf("fill is missing trade_id")
	}

	price, err := decimal.NewFromString(fill.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %s: %w", fill.Price, err)
	}

	ev := &models.TradeEvent{
		TradeID: fill.TradeID,
		Type:    fill.Type,
		Price:   &price,
		Note:    fill.Note,
	}

	if fill.Quantity != "" {
		qty, err := decimal.NewFromString(fill.Quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %s: %w", fill.Quantity, err)
		}
		ev.Quantity = &qty
	}

	if fill.ExecutedAt != "" {
		occurredAt, err := time.Parse(time.RFC3339, fill.ExecutedAt)
		if err != nil {
			// Try parsing without timezone
			occurredAt, err = time.Parse("2006-01-02T15:04:05", fill.ExecutedAt)
			if err != nil {
				occurredAt = time.Now()
			}
		}
		ev.OccurredAt = occurredAt
	} else {
		ev.OccurredAt = time.Now()
	}

	return ev, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
