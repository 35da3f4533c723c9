package keywords

import (
	"testing"

	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/stretchr/testify/assert"
)

func record(text string, compound float64) models.AnalysisRecord {
	return models.AnalysisRecord{Text: text, Score: models.PolarityScore{Compound: compound, Neutral: 1}}
}

func TestExtractor_PartitionsByWholeTextScore(t *testing.T) {
	e := New(sentiment.DefaultThresholds)
	history := []models.AnalysisRecord{
		record("love it", 0.7),
		record("hate it", -0.6),
		record("it is tuesday", 0.0),
		record("really love it", 0.8),
		record("edge case", 0.05),
	}

	b := e.Extract(history)

	assert.Equal(t, "love it really love it", b.Positive)
	assert.Equal(t, "hate it", b.Negative)
	assert.Equal(t, "it is tuesday edge case", b.Neutral)
	assert.Equal(t, models.SentimentLabels, b.Available())
}

func TestExtractor_EmptyBucketsProduceNoOutput(t *testing.T) {
	e := New(sentiment.DefaultThresholds)

	b := e.Extract([]models.AnalysisRecord{record("love it", 0.7)})

	assert.Empty(t, b.Negative)
	assert.Empty(t, b.Neutral)
	assert.Equal(t, []models.SentimentLabel{models.SentimentPositive}, b.Available())
	assert.Empty(t, e.Extract(nil).Available())
}

func TestExtractor_Overall(t *testing.T) {
	e := New(sentiment.DefaultThresholds)

	got := e.Overall([]models.AnalysisRecord{record("one", 0.7), record("two", -0.7)})

	assert.Equal(t, "one two", got)
	assert.Equal(t, "", e.Overall(nil))
}

func TestBuckets_Text(t *testing.T) {
	b := Buckets{Positive: "p", Negative: "n", Neutral: "u"}

	assert.Equal(t, "p", b.Text(models.SentimentPositive))
	assert.Equal(t, "n", b.Text(models.SentimentNegative))
	assert.Equal(t, "u", b.Text(models.SentimentNeutral))
}
