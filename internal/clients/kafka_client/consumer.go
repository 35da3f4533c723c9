package kafka_client

import (
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentiboard/config"
)

// Consumer reads analysis requests from a single topic. Offsets are only
// committed explicitly, after the matching results were published.
type Consumer struct {
	consumer *kafka.Consumer
	topic    string
}

func NewConsumer(cfg config.KafkaConfig) (*Consumer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Consumer...",
		slog.String("broker", cfg.Broker),
		slog.String("group_id", cfg.GroupID),
		slog.String("topic", cfg.RequestTopic))

	c, err := kafka.NewConsumer(consumerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create consumer: %w", err)
	}

	if err := c.SubscribeTopics([]string{cfg.RequestTopic}, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to subscribe to topic %s: %w", cfg.RequestTopic, err)
	}

	slog.Info("[KafkaClient] Kafka Consumer initialized successfully")
	return &Consumer{consumer: c, topic: cfg.RequestTopic}, nil
}

func (c *Consumer) Close() {
	if c == nil || c.consumer == nil {
		return
	}
	slog.Info("[KafkaClient] Closing Kafka consumer...", slog.String("topic", c.topic))
	if err := c.consumer.Close(); err != nil {
		slog.Warn("[KafkaClient] Failed to close consumer", slog.String("error", err.Error()))
	}
}

func isFatal(err error) bool {
	kafkaErr, ok := err.(kafka.Error)
	return ok && (kafkaErr.Code() == kafka.ErrAllBrokersDown || kafkaErr.IsFatal())
}

func isTimeout(err error) bool {
	kafkaErr, ok := err.(kafka.Error)
	return ok && kafkaErr.Code() == kafka.ErrTimedOut
}
