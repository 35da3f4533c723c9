package sentiment

import "github.com/spacesedan/sentiboard/internal/models"

// Thresholds bound the neutral band. A compound score strictly above
// Positive is positive, strictly below Negative is negative, anything in
// between (inclusive) is neutral.
type Thresholds struct {
	Negative float64
	Positive float64
}

// DefaultThresholds is shared by every place that labels a score.
var DefaultThresholds = Thresholds{Negative: -0.05, Positive: 0.05}

func (t Thresholds) Classify(compound float64) models.SentimentLabel {
	switch {
	case compound > t.Positive:
		return models.SentimentPositive
	case compound < t.Negative:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// IsNeutral reports whether compound falls inside [Negative, Positive].
func (t Thresholds) IsNeutral(compound float64) bool {
	return t.Classify(compound) == models.SentimentNeutral
}

// Classify labels compound with DefaultThresholds.
func Classify(compound float64) models.SentimentLabel {
	return DefaultThresholds.Classify(compound)
}
