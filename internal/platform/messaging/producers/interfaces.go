package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the slice of kafka.Writer the producers need, kept as an
// interface so tests can stand in for the real writer.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessagePublisher publishes settlement events to the main topic. The key
// selects the partition, so callers pass the wallet ID to keep per-wallet
// ordering.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks messages that could not be processed
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}
