package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/spacesedan/sentiboard/internal/metrics"
	"github.com/spacesedan/sentiboard/internal/models"
)

const (
	maxBatchSize       = 25
	maxUnprocessedRuns = 3
)

// DynamoDBAPI is the subset of the DynamoDB client the history table uses.
type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// historyItem is one exported row. The partition key groups the rows of one
// export and the sort key keeps arrival order.
type historyItem struct {
	ExportID  string  `dynamodbav:"export_id"`
	Seq       int     `dynamodbav:"seq"`
	Text      string  `dynamodbav:"text"`
	Compound  float64 `dynamodbav:"compound"`
	Positive  float64 `dynamodbav:"positive"`
	Negative  float64 `dynamodbav:"negative"`
	Neutral   float64 `dynamodbav:"neutral"`
	Timestamp string  `dynamodbav:"timestamp"`
}

// HistoryTable writes history exports to DynamoDB and reads them back.
type HistoryTable struct {
	client  DynamoDBAPI
	table   string
	backoff time.Duration
}

func NewHistoryTable(client DynamoDBAPI, table string) *HistoryTable {
	return &HistoryTable{
		client:  client,
		table:   table,
		backoff: 500 * time.Millisecond,
	}
}

// Export writes records under a new export id and returns that id.
func (h *HistoryTable) Export(ctx context.Context, records []models.AnalysisRecord) (string, error) {
	exportID := uuid.NewString()

	for i := 0; i < len(records); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return "", ctx.Err()
		default:
		}

		end := i + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, r := range records[i:end] {
			item, err := attributevalue.MarshalMap(toItem(exportID, r))
			if err != nil {
				return "", fmt.Errorf("[DynamoDB] Failed to marshal record %d: %w", r.ID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := h.batchWrite(ctx, writeRequests); err != nil {
			return "", err
		}
	}

	metrics.ExportRowsTotal.WithLabelValues("dynamodb").Add(float64(len(records)))
	slog.Info("[DynamoDB] Successfully exported history",
		slog.String("export_id", exportID),
		slog.Int("records", len(records)))
	return exportID, nil
}

func (h *HistoryTable) batchWrite(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := h.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			h.table: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write history: %w", err)
	}

	retryCount := 0
	backoff := h.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < maxUnprocessedRuns {
		time.Sleep(backoff)
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed history items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[h.table])))

		out, err = h.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[h.table]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d history items not written after %d retries", remaining, maxUnprocessedRuns)
	}
	return nil
}

// Load reads the rows of exportID back in arrival order.
func (h *HistoryTable) Load(ctx context.Context, exportID string) ([]models.AnalysisRecord, error) {
	paginator := dynamodb.NewQueryPaginator(h.client, &dynamodb.QueryInput{
		TableName:              aws.String(h.table),
		KeyConditionExpression: aws.String("export_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: exportID},
		},
		ScanIndexForward: aws.Bool(true),
	})

	var records []models.AnalysisRecord
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Query for export %s failed: %w", exportID, err)
		}

		var page []historyItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal history page", slog.String("error", err.Error()))
			return nil, err
		}
		for _, item := range page {
			record, err := fromItem(item)
			if err != nil {
				return nil, fmt.Errorf("[DynamoDB] export %s row %d: %w", exportID, item.Seq, err)
			}
			records = append(records, record)
		}
	}

	slog.Info("[DynamoDB] Successfully loaded history",
		slog.String("export_id", exportID),
		slog.Int("count", len(records)))
	return records, nil
}

func toItem(exportID string, r models.AnalysisRecord) historyItem {
	return historyItem{
		ExportID:  exportID,
		Seq:       r.ID,
		Text:      r.Text,
		Compound:  r.Score.Compound,
		Positive:  r.Score.Positive,
		Negative:  r.Score.Negative,
		Neutral:   r.Score.Neutral,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func fromItem(item historyItem) (models.AnalysisRecord, error) {
	score, err := models.NewPolarityScore(item.Compound, item.Positive, item.Negative, item.Neutral)
	if err != nil {
		return models.AnalysisRecord{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, item.Timestamp)
	if err != nil {
		return models.AnalysisRecord{}, fmt.Errorf("bad timestamp: %w", err)
	}
	return models.AnalysisRecord{
		ID:        item.Seq,
		Text:      item.Text,
		Score:     score,
		Timestamp: ts.UTC(),
	}, nil
}
