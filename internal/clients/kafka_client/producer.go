package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/models"
)

// Producer publishes analysis results transactionally, one transaction per
// batch.
type Producer struct {
	producer *kafka.Producer
	done     chan struct{}
}

func NewProducer(ctx context.Context, cfg config.KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(producerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	kp := &Producer{producer: p, done: make(chan struct{})}
	go kp.drainEvents()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return kp, nil
}

func (p *Producer) drainEvents() {
	defer close(p.done)
	for e := range p.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			slog.Warn("[KafkaClient] Delivery failed",
				slog.String("key", string(m.Key)),
				slog.String("error", m.TopicPartition.Error.Error()))
		}
	}
}

func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := p.producer.Flush(FLUSH_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	<-p.done
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishResults writes every result to topic keyed by request ID. Either the
// whole batch becomes visible to read_committed consumers or none of it does.
func (p *Producer) PublishResults(ctx context.Context, topic string, results []models.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}

	if err := p.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, result := range results {
		value, err := json.Marshal(result)
		if err == nil {
			err = p.producer.Produce(&kafka.Message{
				TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
				Key:            []byte(result.RequestID),
				Value:          value,
			}, nil)
		}
		if err != nil {
			return p.abort(ctx, err)
		}
	}

	var err error
	for i := 0; i < 3; i++ {
		if err = p.producer.CommitTransaction(ctx); err == nil {
			break
		}
		if kafkaErr, ok := err.(kafka.Error); ok && kafkaErr.TxnRequiresAbort() {
			return p.abort(ctx, err)
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to commit transaction after 3 retries: %w", err)
	}

	slog.Info("[KafkaClient] Published analysis results",
		slog.String("topic", topic),
		slog.Int("count", len(results)))
	return nil
}

func (p *Producer) abort(ctx context.Context, cause error) error {
	if abortErr := p.producer.AbortTransaction(ctx); abortErr != nil {
		return fmt.Errorf("[KafkaClient] failed to abort transaction after %v: %w", cause, abortErr)
	}
	return fmt.Errorf("[KafkaClient] transaction aborted: %w", cause)
}
