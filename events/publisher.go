package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Action is what happened to a record.
type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// Event announces a confirmed write to a collection.
type Event struct {
	Collection string `json:"collection"`
	Action     Action `json:"action"`
	ID         string `json:"id"`
	At         int64  `json:"at"`
}

// Publisher sends change events to other systems.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NewEvent stamps an event with the current time.
func NewEvent(collection string, action Action, id string) Event {
	return Event{Collection: collection, Action: action, ID: id, At: time.Now().UnixMilli()}
}

// KafkaPublisher writes events as JSON to one Kafka topic, keyed by
// collection and id so every record's events land on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.Collection + ":" + event.ID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
