package notify

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Compile-time check: *KafkaDispatcher must satisfy Dispatcher.
var _ Dispatcher = (*KafkaDispatcher)(nil)

// KafkaDispatcher publishes transaction alerts to a Kafka topic. A separate
// consumer renders and delivers the actual email/SMS/push messages.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (d *KafkaDispatcher) SendTransactionAlert(ctx context.Context, contact string, alert TransactionAlert) error {
	payload := struct {
		Contact string `json:"contact"`
		TransactionAlert
	}{Contact: contact, TransactionAlert: alert}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.TransactionId),
		Value: data,
	})
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
