package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes every event to one topic keyed by Event.Key.
type Kafka struct {
	writer messageWriter
}

func NewKafka(brokers []string, topic string) *Kafka {
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}
	return &Kafka{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	data, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:     []byte(e.Key()),
		Value:   data,
		Headers: []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", e.Type, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
