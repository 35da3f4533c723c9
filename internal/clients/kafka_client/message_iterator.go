package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// ErrFatal wraps consumer errors the client cannot recover from, such as all
// brokers being down.
var ErrFatal = errors.New("unrecoverable consumer error")

// Next polls for the next message. It returns a nil message without error
// when the poll timed out so callers can run periodic work between polls.
func (c *Consumer) Next(ctx context.Context) (*kafka.Message, error) {
	if c == nil || c.consumer == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	attempts := 0
	for attempts < MAX_RETRIES {
		select {
		case <-ctx.Done():
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, ctx.Err()
		default:
		}

		msg, err := c.consumer.ReadMessage(POLL_TIMEOUT)
		if err == nil {
			return msg, nil
		}
		if isTimeout(err) {
			return nil, nil
		}
		if isFatal(err) {
			slog.Error("[KafkaIterator] Unrecoverable consumer error. Aborting",
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("[KafkaIterator] %w: %w", ErrFatal, err)
		}

		attempts++
		slog.Warn("[KafkaIterator] Failed to read message, retrying...",
			slog.Int("attempt", attempts),
			slog.Int("max_retries", MAX_RETRIES),
			slog.String("error", err.Error()))

		if !sleepCtx(ctx, RETRY_DELAY) {
			return nil, ctx.Err()
		}
	}
	return nil, errors.New("[KafkaIterator] Failed to read message after retries")
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
