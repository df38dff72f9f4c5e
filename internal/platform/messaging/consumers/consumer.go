package consumers

import (
	"context"
	"time"

	"log/slog"

	"github.com/investpro/ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one fetched message. A nil return commits the
// offset; an error leaves it uncommitted so the message is redelivered.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

type Consumer interface {
	Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error
	Close() error
}

// KafkaConsumer reads settlement events with manual offset commits, so a
// projection failure never loses the message.
type KafkaConsumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	return &KafkaConsumer{
		logger: logger,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.SettlementTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: kafka.FirstOffset,
		}),
	}
}

// Subscribe starts the fetch/handle/commit loop in its own goroutine and
// returns immediately. The loop runs until ctx is canceled.
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error {
	c.logger.Info("Consuming from Kafka topic",
		"topic", topic,
		"group_id", groupID,
	)

	go func() {
		for ctx.Err() == nil {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info("Consumer stopping", "topic", topic, "group_id", groupID)
					return
				}
				c.logger.Error("Fetch from Kafka failed",
					"topic", topic,
					"group_id", groupID,
					"error", err,
				)
				time.Sleep(time.Second)
				continue
			}

			c.handleMessage(ctx, handler, msg)
		}
	}()

	return nil
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, handler MessageHandler, msg kafka.Message) {
	msgLogger := c.logger.With(
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
	)

	if err := handler(ctx, msg.Key, msg.Value); err != nil {
		// Uncommitted on purpose, the message comes back on the next fetch
		msgLogger.Error("Message handling failed, offset not committed", "error", err)
		return
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		msgLogger.Error("Offset commit failed after successful handling", "error", err)
		return
	}
	msgLogger.Debug("Message committed")
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
