// Package aggregate derives distribution counts, averages and time series
// from a history snapshot. Everything here is recomputed on demand.
package aggregate

import (
	"fmt"
	"math"
	"time"

	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
)

const (
	DefaultTailSize      = 5
	DefaultHistogramBins = 20
	minTimeSeriesRecords = 2
	histogramLowerBound  = -1.0
	histogramUpperBound  = 1.0
)

type Counts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (c Counts) Total() int {
	return c.Positive + c.Negative + c.Neutral
}

// Of returns the count for label.
func (c Counts) Of(label models.SentimentLabel) int {
	switch label {
	case models.SentimentPositive:
		return c.Positive
	case models.SentimentNegative:
		return c.Negative
	default:
		return c.Neutral
	}
}

// TailEntry is a recent record labeled with its position in the full
// history, not its position in the tail.
type TailEntry struct {
	Label    string                `json:"label"`
	Position int                   `json:"position"`
	Record   models.AnalysisRecord `json:"record"`
}

type CompositionPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Positive  float64   `json:"positive"`
	Negative  float64   `json:"negative"`
	Neutral   float64   `json:"neutral"`
}

// HistogramBin counts compound scores in [Lower, Upper). The last bin is
// closed on both ends so a compound of exactly 1 is counted.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Summary struct {
	Total   int     `json:"total"`
	Counts  Counts  `json:"counts"`
	Average float64 `json:"average"`
}

type Aggregator struct {
	Thresholds sentiment.Thresholds
}

func New(thresholds sentiment.Thresholds) Aggregator {
	return Aggregator{Thresholds: thresholds}
}

func (a Aggregator) Counts(records []models.AnalysisRecord) Counts {
	var c Counts
	for _, r := range records {
		switch a.Thresholds.Classify(r.Score.Compound) {
		case models.SentimentPositive:
			c.Positive++
		case models.SentimentNegative:
			c.Negative++
		default:
			c.Neutral++
		}
	}
	return c
}

// AverageCompound is the mean compound score. ok is false for an empty
// history, where the mean is undefined.
func (a Aggregator) AverageCompound(records []models.AnalysisRecord) (avg float64, ok bool) {
	if len(records) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range records {
		sum += r.Score.Compound
	}
	return sum / float64(len(records)), true
}

func (a Aggregator) Tail(records []models.AnalysisRecord, n int) []TailEntry {
	if n <= 0 || len(records) == 0 {
		return []TailEntry{}
	}
	if n > len(records) {
		n = len(records)
	}

	offset := len(records) - n
	entries := make([]TailEntry, 0, n)
	for i, r := range records[offset:] {
		position := offset + i + 1
		entries = append(entries, TailEntry{
			Label:    fmt.Sprintf("Input %d", position),
			Position: position,
			Record:   r,
		})
	}
	return entries
}

// TimeSeries pairs each record's component scores with its timestamp. It
// returns nil when there are fewer than two records.
func (a Aggregator) TimeSeries(records []models.AnalysisRecord) []CompositionPoint {
	if len(records) < minTimeSeriesRecords {
		return nil
	}
	points := make([]CompositionPoint, 0, len(records))
	for _, r := range records {
		points = append(points, CompositionPoint{
			Timestamp: r.Timestamp,
			Positive:  r.Score.Positive,
			Negative:  r.Score.Negative,
			Neutral:   r.Score.Neutral,
		})
	}
	return points
}

func (a Aggregator) Histogram(records []models.AnalysisRecord, bins int) []HistogramBin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	width := (histogramUpperBound - histogramLowerBound) / float64(bins)

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lower = histogramLowerBound + float64(i)*width
		out[i].Upper = histogramLowerBound + float64(i+1)*width
	}
	out[bins-1].Upper = histogramUpperBound

	for _, r := range records {
		idx := int(math.Floor((r.Score.Compound - histogramLowerBound) / width))
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func (a Aggregator) Summarize(records []models.AnalysisRecord) Summary {
	avg, _ := a.AverageCompound(records)
	return Summary{
		Total:   len(records),
		Counts:  a.Counts(records),
		Average: avg,
	}
}
