package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrClosed is returned when publishing on a closed publisher.
var ErrClosed = errors.New("messaging: publisher is closed")

// ErrTopicRequired is returned when the destination is empty.
var ErrTopicRequired = errors.New("messaging: topic is required")

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	io.Closer
	Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte
	// Key is used by Kafka for partitioning and by Pub/Sub as the ordering key.
	Key []byte
	// Headers map to Kafka/NATS headers and Pub/Sub attributes. NSQ ignores them.
	Headers map[string]string
}

// PublishResult carries broker acknowledgment details when available.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

func validate(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	return nil
}
