package models

import (
	"fmt"
	"math"
)

// componentTolerance is how far positive+negative+neutral may drift from 1.0.
const componentTolerance = 0.01

// PolarityScore is the result of scoring a single piece of text.
type PolarityScore struct {
	Compound float64 `json:"compound" dynamodbav:"compound"`
	Positive float64 `json:"positive" dynamodbav:"positive"`
	Negative float64 `json:"negative" dynamodbav:"negative"`
	Neutral  float64 `json:"neutral" dynamodbav:"neutral"`
}

// NeutralScore is returned for blank input.
func NeutralScore() PolarityScore {
	return PolarityScore{Compound: 0, Positive: 0, Negative: 0, Neutral: 1}
}

// NewPolarityScore builds a score and checks that every component is in range.
func NewPolarityScore(compound, positive, negative, neutral float64) (PolarityScore, error) {
	s := PolarityScore{
		Compound: compound,
		Positive: positive,
		Negative: negative,
		Neutral:  neutral,
	}
	if err := s.Validate(); err != nil {
		return PolarityScore{}, err
	}
	return s, nil
}

func (s PolarityScore) Validate() error {
	for _, v := range []float64{s.Compound, s.Positive, s.Negative, s.Neutral} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite component", ErrInvalidScore)
		}
	}
	if s.Compound < -1 || s.Compound > 1 {
		return fmt.Errorf("%w: compound %v outside [-1, 1]", ErrInvalidScore, s.Compound)
	}
	components := []struct {
		name  string
		value float64
	}{
		{"positive", s.Positive},
		{"negative", s.Negative},
		{"neutral", s.Neutral},
	}
	for _, c := range components {
		if c.value < 0 || c.value > 1 {
			return fmt.Errorf("%w: %s %v outside [0, 1]", ErrInvalidScore, c.name, c.value)
		}
	}
	if sum := s.Positive + s.Negative + s.Neutral; math.Abs(sum-1) > componentTolerance {
		return fmt.Errorf("%w: components sum to %v", ErrInvalidScore, sum)
	}
	return nil
}
