package relay

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/example/bidngo-client/internal/stream"
)

// KafkaPublisher writes bid events to a topic, keyed by trip id so all
// events for one trip land in one partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.Hash{}})
	return &KafkaPublisher{writer: w}
}

func (k *KafkaPublisher) Publish(ctx context.Context, ev stream.Event) error {
	key, value, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

func (k *KafkaPublisher) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
