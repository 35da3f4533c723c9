// Package dashboard runs submissions through the analysis pipeline and
// serves the read-side views derived from the session history.
package dashboard

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/sentiboard/internal/aggregate"
	"github.com/spacesedan/sentiboard/internal/history"
	"github.com/spacesedan/sentiboard/internal/keywords"
	"github.com/spacesedan/sentiboard/internal/metrics"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/ranking"
	"github.com/spacesedan/sentiboard/internal/sentiment"
)

// Analysis is one submission with its per-sentence breakdown.
type Analysis struct {
	Record    models.AnalysisRecord    `json:"record"`
	Label     models.SentimentLabel    `json:"label"`
	Sentences []models.LabeledSentence `json:"sentences"`
}

type Overview struct {
	Summary     aggregate.Summary        `json:"summary"`
	Recent      []aggregate.TailEntry    `json:"recent"`
	Histogram   []aggregate.HistogramBin `json:"histogram"`
	OverallText string                   `json:"overall_text"`
}

type Trends struct {
	// Points is empty until the history has at least two records.
	Points []aggregate.CompositionPoint `json:"points"`
}

type Insights struct {
	Keywords  keywords.Buckets        `json:"keywords"`
	Available []models.SentimentLabel `json:"available"`
	Rankings  ranking.Rankings        `json:"rankings"`
}

type Service struct {
	analyzer   sentiment.Analyzer
	thresholds sentiment.Thresholds
	history    *history.Store
	aggregator aggregate.Aggregator
	ranker     ranking.Ranker
	keywords   keywords.Extractor

	// mu keeps one submission fully processed before the next starts.
	mu sync.Mutex
}

func NewService(analyzer sentiment.Analyzer, store *history.Store, thresholds sentiment.Thresholds) *Service {
	return &Service{
		analyzer:   analyzer,
		thresholds: thresholds,
		history:    store,
		aggregator: aggregate.New(thresholds),
		ranker:     ranking.New(analyzer, thresholds),
		keywords:   keywords.New(thresholds),
	}
}

// Analyze scores text, appends it to the history and returns the result.
// Blank text returns models.ErrEmptyText without touching the analyzer.
// Line endings are stored as "\n" so the text survives a CSV export.
func (s *Service) Analyze(text string) (Analysis, error) {
	if strings.TrimSpace(text) == "" {
		metrics.AnalysesRejected.Inc()
		return Analysis{}, models.ErrEmptyText
	}
	text = normalizeNewlines(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	score := s.analyzer.Score(text)
	record, err := s.history.Record(text, score)
	if err != nil {
		return Analysis{}, fmt.Errorf("[Dashboard] failed to record analysis: %w", err)
	}
	analysis := s.describe(record)

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysesTotal.WithLabelValues(analysis.Label.String()).Inc()
	metrics.HistoryRecords.Set(float64(record.ID))

	slog.Debug("[Dashboard] Analysis recorded",
		slog.Int("id", record.ID),
		slog.String("label", analysis.Label.String()),
		slog.Float64("compound", record.Score.Compound),
		slog.Int("sentences", len(analysis.Sentences)))

	return analysis, nil
}

// Breakdown segments text and labels each sentence on its own score.
func (s *Service) Breakdown(text string) []models.LabeledSentence {
	parts := sentiment.Segment(text)
	out := make([]models.LabeledSentence, 0, len(parts))
	for _, p := range parts {
		compound := s.analyzer.Score(p).Compound
		out = append(out, models.LabeledSentence{
			SentenceEntry: models.SentenceEntry{Sentence: p, Score: compound},
			Label:         s.thresholds.Classify(compound),
		})
	}
	return out
}

func (s *Service) describe(record models.AnalysisRecord) Analysis {
	return Analysis{
		Record:    record,
		Label:     s.thresholds.Classify(record.Score.Compound),
		Sentences: s.Breakdown(record.Text),
	}
}

func (s *Service) IsEmpty() bool {
	return s.history.IsEmpty()
}

func (s *Service) History() []models.AnalysisRecord {
	return s.history.All()
}

func (s *Service) Latest() (Analysis, error) {
	record, ok := s.history.Latest()
	if !ok {
		return Analysis{}, models.ErrEmptyHistory
	}
	return s.describe(record), nil
}

func (s *Service) Overview() (Overview, error) {
	records := s.history.All()
	if len(records) == 0 {
		return Overview{}, models.ErrEmptyHistory
	}
	return Overview{
		Summary:     s.aggregator.Summarize(records),
		Recent:      s.aggregator.Tail(records, aggregate.DefaultTailSize),
		Histogram:   s.aggregator.Histogram(records, aggregate.DefaultHistogramBins),
		OverallText: s.keywords.Overall(records),
	}, nil
}

func (s *Service) Trends() (Trends, error) {
	records := s.history.All()
	if len(records) == 0 {
		return Trends{}, models.ErrEmptyHistory
	}
	points := s.aggregator.TimeSeries(records)
	if points == nil {
		points = []aggregate.CompositionPoint{}
	}
	return Trends{Points: points}, nil
}

func (s *Service) Insights() (Insights, error) {
	records := s.history.All()
	if len(records) == 0 {
		return Insights{}, models.ErrEmptyHistory
	}
	buckets := s.keywords.Extract(records)
	return Insights{
		Keywords:  buckets,
		Available: buckets.Available(),
		Rankings:  s.ranker.Rank(records),
	}, nil
}

// Import appends previously exported records in their original order, keeping
// their scores and timestamps. Every record is validated first, so a rejected
// import leaves the history untouched.
func (s *Service) Import(records []models.AnalysisRecord) (int, error) {
	for i, r := range records {
		if err := validateImport(r); err != nil {
			return 0, fmt.Errorf("[Dashboard] failed to import row %d: %w", i+1, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range records {
		if _, err := s.history.Append(normalizeNewlines(r.Text), r.Score, r.Timestamp); err != nil {
			return i, fmt.Errorf("[Dashboard] failed to import row %d: %w", i+1, err)
		}
	}
	metrics.HistoryRecords.Set(float64(s.history.Len()))

	slog.Info("[Dashboard] Imported history",
		slog.Int("records", len(records)),
		slog.Int("total", s.history.Len()))
	return len(records), nil
}

func validateImport(r models.AnalysisRecord) error {
	if strings.TrimSpace(r.Text) == "" {
		return models.ErrEmptyText
	}
	return r.Score.Validate()
}

func normalizeNewlines(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
}
