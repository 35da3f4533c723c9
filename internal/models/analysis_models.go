package models

import "time"

// AnalysisRecord is one accepted submission. Records are handed out by value
// and are never changed once they are in the history.
type AnalysisRecord struct {
	// ID is the 1-based arrival position in the history.
	ID        int           `json:"id"`
	Text      string        `json:"text"`
	Score     PolarityScore `json:"score"`
	Timestamp time.Time     `json:"timestamp"`
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// SentimentLabels lists every label in display order.
var SentimentLabels = []SentimentLabel{SentimentPositive, SentimentNegative, SentimentNeutral}

func (l SentimentLabel) String() string {
	return string(l)
}

// SentenceEntry is a sentence re-scored on its own, independent of the text
// it came from.
type SentenceEntry struct {
	Sentence string  `json:"sentence"`
	Score    float64 `json:"score"`
}

type LabeledSentence struct {
	SentenceEntry
	Label SentimentLabel `json:"label"`
}
