package models

// AnalysisRequest is the payload of a Kafka analysis request.
type AnalysisRequest struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

const (
	IngestStatusAnalyzed  = "analyzed"
	IngestStatusDuplicate = "duplicate"
	IngestStatusInvalid   = "invalid"
	IngestStatusFailed    = "failed"
)

// AnalysisResult is published for every request the consumer accepts or
// rejects. Record, Label and Sentences are only set when Status is
// IngestStatusAnalyzed.
type AnalysisResult struct {
	RequestID string            `json:"request_id"`
	Status    string            `json:"status"`
	Record    *AnalysisRecord   `json:"record,omitempty"`
	Label     SentimentLabel    `json:"label,omitempty"`
	Sentences []LabeledSentence `json:"sentences,omitempty"`
	Error     string            `json:"error,omitempty"`
}
