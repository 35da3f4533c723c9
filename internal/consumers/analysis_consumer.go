package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentiboard/internal/clients/kafka_client"
	"github.com/spacesedan/sentiboard/internal/dashboard"
	"github.com/spacesedan/sentiboard/internal/metrics"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/utils"
)

const (
	publishRetries  = 3
	shutdownTimeout = 5 * time.Second
)

type Analyzer interface {
	Analyze(text string) (dashboard.Analysis, error)
}

// Deduper remembers which request ids already produced a published result.
type Deduper interface {
	IsProcessed(ctx context.Context, requestID string) (bool, error)
	MarkProcessed(ctx context.Context, requestID string) error
}

type Publisher interface {
	PublishResults(ctx context.Context, topic string, results []models.AnalysisResult) error
}

// Source is the subset of kafka_client.Consumer the consumer loop needs.
type Source interface {
	Next(ctx context.Context) (*kafka.Message, error)
	Commit(ctx context.Context, msg *kafka.Message) error
}

// AnalysisConsumer is driven by a single goroutine; only Healthy may be read
// from elsewhere.
type AnalysisConsumer struct {
	analyzer    Analyzer
	deduper     Deduper
	publisher   Publisher
	resultTopic string
	clock       clockwork.Clock
	retryDelay  time.Duration

	buffer   *utils.BatchBuffer[models.AnalysisResult]
	inflight map[string]struct{}
	pending  map[int32]*kafka.Message

	Healthy atomic.Bool
}

func NewAnalysisConsumer(analyzer Analyzer, deduper Deduper, publisher Publisher, resultTopic string, clock clockwork.Clock) *AnalysisConsumer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AnalysisConsumer{
		analyzer:    analyzer,
		deduper:     deduper,
		publisher:   publisher,
		resultTopic: resultTopic,
		clock:       clock,
		retryDelay:  2 * time.Second,
		buffer:      utils.NewBatchBuffer[models.AnalysisResult](utils.BATCH_SIZE),
		inflight:    make(map[string]struct{}),
		pending:     make(map[int32]*kafka.Message),
	}
}

// Run consumes until ctx is done or the source fails with
// kafka_client.ErrFatal. Read errors mark the consumer unhealthy and are
// retried after retryDelay. Results are published in batches of
// utils.BATCH_SIZE or every utils.BATCH_TIMEOUT, and offsets are committed
// only after their batch was published.
func (c *AnalysisConsumer) Run(ctx context.Context, source Source) {
	c.Healthy.Store(true)
	defer c.Healthy.Store(false)

	slog.Info("[AnalysisConsumer] Listening for analysis requests...")
	lastFlush := c.clock.Now()

	for {
		if ctx.Err() != nil {
			c.shutdown(ctx, source)
			return
		}

		msg, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.shutdown(ctx, source)
				return
			}
			c.Healthy.Store(false)
			if errors.Is(err, kafka_client.ErrFatal) {
				slog.Error("[AnalysisConsumer] Source failed permanently, stopping",
					slog.String("error", err.Error()))
				c.shutdown(ctx, source)
				return
			}
			slog.Error("[AnalysisConsumer] Failed to read message, backing off",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", c.retryDelay))
			select {
			case <-ctx.Done():
			case <-c.clock.After(c.retryDelay):
			}
			continue
		}
		c.Healthy.Store(true)

		full := false
		if msg != nil {
			full = c.Handle(ctx, msg)
		}

		if full || c.clock.Since(lastFlush) >= utils.BATCH_TIMEOUT {
			if err := c.Flush(ctx, source); err != nil {
				slog.Error("[AnalysisConsumer] Failed to flush batch", slog.String("error", err.Error()))
			}
			lastFlush = c.clock.Now()
		}
	}
}

func (c *AnalysisConsumer) shutdown(ctx context.Context, source Source) {
	slog.Warn("[AnalysisConsumer] Consumer shutting down...")
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := c.Flush(flushCtx, source); err != nil {
		slog.Error("[AnalysisConsumer] Failed to flush on shutdown", slog.String("error", err.Error()))
	}
}

// Handle processes one request message and reports whether the result buffer
// is full. The message is tracked for commit whatever its outcome.
func (c *AnalysisConsumer) Handle(ctx context.Context, msg *kafka.Message) bool {
	c.pending[msg.TopicPartition.Partition] = msg

	result, publish := c.process(ctx, msg)
	metrics.IngestMessagesTotal.WithLabelValues(result.Status).Inc()
	if !publish {
		return false
	}
	return c.buffer.Add(result)
}

func (c *AnalysisConsumer) process(ctx context.Context, msg *kafka.Message) (models.AnalysisResult, bool) {
	var req models.AnalysisRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		slog.Warn("[AnalysisConsumer] Failed to decode request",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()))
		return models.AnalysisResult{
			RequestID: requestID("", msg.Key),
			Status:    models.IngestStatusInvalid,
			Error:     "malformed request",
		}, true
	}
	req.RequestID = requestID(req.RequestID, msg.Key)

	if c.seen(ctx, req.RequestID) {
		slog.Info("[AnalysisConsumer] Skipping already processed request",
			slog.String("request_id", req.RequestID))
		return models.AnalysisResult{RequestID: req.RequestID, Status: models.IngestStatusDuplicate}, false
	}

	analysis, err := c.analyzer.Analyze(req.Text)
	if err != nil {
		status := models.IngestStatusFailed
		if errors.Is(err, models.ErrEmptyText) {
			status = models.IngestStatusInvalid
		}
		slog.Warn("[AnalysisConsumer] Request not analyzed",
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()))
		return models.AnalysisResult{RequestID: req.RequestID, Status: status, Error: err.Error()}, true
	}

	c.inflight[req.RequestID] = struct{}{}
	record := analysis.Record
	return models.AnalysisResult{
		RequestID: req.RequestID,
		Status:    models.IngestStatusAnalyzed,
		Record:    &record,
		Label:     analysis.Label,
		Sentences: analysis.Sentences,
	}, true
}

func (c *AnalysisConsumer) seen(ctx context.Context, id string) bool {
	if _, ok := c.inflight[id]; ok {
		return true
	}
	if c.deduper == nil {
		return false
	}
	processed, err := c.deduper.IsProcessed(ctx, id)
	if err != nil {
		slog.Warn("[AnalysisConsumer] Dedupe lookup failed, analyzing anyway",
			slog.String("request_id", id),
			slog.String("error", err.Error()))
		return false
	}
	return processed
}

// Flush publishes buffered results, marks them processed and commits every
// tracked offset. On publish failure the results go back to the buffer and
// nothing is committed.
func (c *AnalysisConsumer) Flush(ctx context.Context, source Source) error {
	batch := c.buffer.GetAndClear()

	if len(batch) > 0 {
		if err := c.publish(ctx, batch); err != nil {
			for _, result := range batch {
				c.buffer.Add(result)
			}
			return err
		}
		c.markProcessed(ctx, batch)
	}

	for partition, msg := range c.pending {
		if err := source.Commit(ctx, msg); err != nil {
			slog.Warn("[AnalysisConsumer] Failed to commit offset",
				slog.Int("partition", int(partition)),
				slog.String("error", err.Error()))
			continue
		}
		delete(c.pending, partition)
	}
	return nil
}

func (c *AnalysisConsumer) publish(ctx context.Context, batch []models.AnalysisResult) error {
	var err error
	for i := 0; i < publishRetries; i++ {
		if err = c.publisher.PublishResults(ctx, c.resultTopic, batch); err == nil {
			return nil
		}
		slog.Warn("[AnalysisConsumer] Batch publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if i == publishRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-c.clock.After(c.retryDelay):
		}
	}
	return err
}

func (c *AnalysisConsumer) markProcessed(ctx context.Context, batch []models.AnalysisResult) {
	for _, result := range batch {
		if result.Status != models.IngestStatusAnalyzed {
			continue
		}
		delete(c.inflight, result.RequestID)
		if c.deduper == nil {
			continue
		}
		if err := c.deduper.MarkProcessed(ctx, result.RequestID); err != nil {
			slog.Warn("[AnalysisConsumer] Failed to mark request processed",
				slog.String("request_id", result.RequestID),
				slog.String("error", err.Error()))
		}
	}
}

func requestID(id string, key []byte) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	if len(key) > 0 {
		return string(key)
	}
	return uuid.NewString()
}
