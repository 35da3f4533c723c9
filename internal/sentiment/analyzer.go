// Package sentiment holds the scoring, classification and sentence
// segmentation used by every view over the history.
package sentiment

import "github.com/spacesedan/sentiboard/internal/models"

// Analyzer scores a piece of text. Implementations must return the same
// score for the same input and a neutral score for blank input.
type Analyzer interface {
	Score(text string) models.PolarityScore
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(text string) models.PolarityScore

func (f AnalyzerFunc) Score(text string) models.PolarityScore {
	return f(text)
}
