package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// Commit stores the offset following msg. Committing the last message of a
// batch covers every earlier message on the same partition.
func (c *Consumer) Commit(ctx context.Context, msg *kafka.Message) error {
	if c == nil || c.consumer == nil {
		return errors.New("[KafkaCommitHandler] Kafka consumer has not been initialized")
	}

	partition := slog.Int("partition", int(msg.TopicPartition.Partition))
	offset := slog.String("offset", msg.TopicPartition.Offset.String())

	for i := 0; i < MAX_RETRIES; i++ {
		if ctx.Err() != nil {
			slog.Warn("[KafkaCommitHandler] Context canceled, stopping commit")
			return ctx.Err()
		}

		_, err := c.consumer.CommitMessage(msg)
		if err == nil {
			slog.Debug("[KafkaCommitHandler] Successfully committed offset", partition, offset)
			return nil
		}
		if isFatal(err) {
			slog.Error("[KafkaCommitHandler] Unrecoverable consumer error. Aborting commit",
				slog.String("error", err.Error()))
			return err
		}

		slog.Warn("[KafkaCommitHandler] Failed to commit offset, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()),
			partition, offset)

		if !sleepCtx(ctx, RETRY_DELAY) {
			return ctx.Err()
		}
	}

	return fmt.Errorf("[KafkaCommitHandler] Failed to commit message after %d retries", MAX_RETRIES)
}
