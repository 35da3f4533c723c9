// Package keywords groups history text by sentiment bucket for word-cloud
// rendering. Tokenizing and stopword removal are left to the renderer.
package keywords

import (
	"strings"

	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
)

const separator = " "

type Buckets struct {
	Positive string `json:"positive,omitempty"`
	Negative string `json:"negative,omitempty"`
	Neutral  string `json:"neutral,omitempty"`
}

// Text returns the concatenated text for label.
func (b Buckets) Text(label models.SentimentLabel) string {
	switch label {
	case models.SentimentPositive:
		return b.Positive
	case models.SentimentNegative:
		return b.Negative
	default:
		return b.Neutral
	}
}

// Available lists the labels whose bucket has text, in display order.
func (b Buckets) Available() []models.SentimentLabel {
	labels := make([]models.SentimentLabel, 0, len(models.SentimentLabels))
	for _, l := range models.SentimentLabels {
		if b.Text(l) != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

type Extractor struct {
	Thresholds sentiment.Thresholds
}

func New(thresholds sentiment.Thresholds) Extractor {
	return Extractor{Thresholds: thresholds}
}

// Extract partitions records by their whole-text compound score and joins
// each bucket's text in arrival order.
func (e Extractor) Extract(records []models.AnalysisRecord) Buckets {
	var pos, neg, neu []string
	for _, r := range records {
		switch e.Thresholds.Classify(r.Score.Compound) {
		case models.SentimentPositive:
			pos = append(pos, r.Text)
		case models.SentimentNegative:
			neg = append(neg, r.Text)
		default:
			neu = append(neu, r.Text)
		}
	}
	return Buckets{
		Positive: strings.Join(pos, separator),
		Negative: strings.Join(neg, separator),
		Neutral:  strings.Join(neu, separator),
	}
}

// Overall joins every record's text regardless of sentiment.
func (e Extractor) Overall(records []models.AnalysisRecord) string {
	texts := make([]string, 0, len(records))
	for _, r := range records {
		texts = append(texts, r.Text)
	}
	return strings.Join(texts, separator)
}
