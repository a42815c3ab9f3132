package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Published is a message captured by Memory.
type Published struct {
	Topic   string
	Message OutgoingMessage
}

// Memory keeps published messages in process.
type Memory struct {
	mu       sync.Mutex
	messages []Published
	closed   bool
	seq      int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := validate(ctx, topic); err != nil {
		return PublishResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return PublishResult{}, ErrClosed
	}
	m.seq++
	m.messages = append(m.messages, Published{Topic: topic, Message: msg})

	return PublishResult{MessageID: strconv.Itoa(m.seq), Topic: topic, Timestamp: time.Now()}, nil
}

// Messages returns a copy of everything published so far.
func (m *Memory) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Published(nil), m.messages...)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Noop drops every message.
type Noop struct{}

func (Noop) Publish(ctx context.Context, topic string, _ OutgoingMessage) (PublishResult, error) {
	if err := validate(ctx, topic); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: topic, Timestamp: time.Now()}, nil
}

func (Noop) Close() error {
	return nil
}
