// Package events publishes domain events to the message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"fintrack/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher sends a keyed JSON payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload any) error
	Close() error
}

// New returns a Kafka publisher, or a log-only one when brokers is empty.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		logger.Log.Info("no event brokers configured, events will only be logged")
		return LogPublisher{}
	}
	return NewKafkaPublisher(brokers)
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event for %s: %w", topic, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	logger.Log.Debug("event published", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the process log instead of a broker.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, topic string, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event for %s: %w", topic, err)
	}
	logger.Log.Info("event", zap.String("topic", topic), zap.String("key", key), zap.ByteString("payload", value))
	return nil
}

func (LogPublisher) Close() error { return nil }

// Key formats an int64 id as a message key.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}
