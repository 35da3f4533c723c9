package dashboard

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentiboard/internal/export"
	"github.com/spacesedan/sentiboard/internal/history"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type stubAnalyzer struct {
	mu     sync.Mutex
	scores map[string]float64
	calls  int
}

func (s *stubAnalyzer) Score(text string) models.PolarityScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	c := s.scores[text]
	switch {
	case c > 0:
		return models.PolarityScore{Compound: c, Positive: 0.6, Neutral: 0.4}
	case c < 0:
		return models.PolarityScore{Compound: c, Negative: 0.6, Neutral: 0.4}
	default:
		return models.NeutralScore()
	}
}

func (s *stubAnalyzer) getCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var start = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, scores map[string]float64) (*Service, *stubAnalyzer, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	analyzer := &stubAnalyzer{scores: scores}
	return NewService(analyzer, history.NewStore(clock), sentiment.DefaultThresholds), analyzer, clock
}

// --- Tests ---

func TestService_AnalyzeRecordsAndBreaksDown(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]float64{
		"Great job! It rains.": 0.6,
		"Great job!":           0.66,
		"It rains.":            0.0,
	})

	a, err := svc.Analyze("Great job! It rains.")
	require.NoError(t, err)

	assert.Equal(t, 1, a.Record.ID)
	assert.Equal(t, "Great job! It rains.", a.Record.Text)
	assert.Equal(t, start, a.Record.Timestamp)
	assert.Equal(t, models.SentimentPositive, a.Label)
	require.Len(t, a.Sentences, 2)
	assert.Equal(t, models.SentimentPositive, a.Sentences[0].Label)
	assert.Equal(t, models.SentimentNeutral, a.Sentences[1].Label)
	assert.False(t, svc.IsEmpty())
}

func TestService_AnalyzeRejectsBlankWithoutScoring(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)

	for _, text := range []string{"", "  ", "\n\t"} {
		_, err := svc.Analyze(text)
		assert.ErrorIs(t, err, models.ErrEmptyText)
	}

	assert.Equal(t, 0, analyzer.getCalls())
	assert.True(t, svc.IsEmpty())
}

func TestService_EmptyHistoryViews(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.Latest()
	assert.ErrorIs(t, err, models.ErrEmptyHistory)
	_, err = svc.Overview()
	assert.ErrorIs(t, err, models.ErrEmptyHistory)
	_, err = svc.Trends()
	assert.ErrorIs(t, err, models.ErrEmptyHistory)
	_, err = svc.Insights()
	assert.ErrorIs(t, err, models.ErrEmptyHistory)
	assert.Empty(t, svc.History())
}

func TestService_Overview(t *testing.T) {
	scores := map[string]float64{
		"a": 0.8, "b": -0.6, "c": 0.0, "d": 0.9, "e": -0.9, "f": 0.3, "g": 0.2, "h": -0.1,
	}
	svc, _, clock := newTestService(t, scores)
	for _, text := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		_, err := svc.Analyze(text)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	o, err := svc.Overview()
	require.NoError(t, err)

	assert.Equal(t, 8, o.Summary.Total)
	assert.Equal(t, 4, o.Summary.Counts.Positive)
	assert.Equal(t, 3, o.Summary.Counts.Negative)
	assert.Equal(t, 1, o.Summary.Counts.Neutral)
	assert.InDelta(t, 0.075, o.Summary.Average, 1e-9)
	require.Len(t, o.Recent, 5)
	assert.Equal(t, "Input 4", o.Recent[0].Label)
	assert.Equal(t, "Input 8", o.Recent[4].Label)
	assert.Len(t, o.Histogram, 20)
	assert.Equal(t, "a b c d e f g h", o.OverallText)
}

func TestService_Trends(t *testing.T) {
	svc, _, clock := newTestService(t, map[string]float64{"up": 0.5, "down": -0.5})

	_, err := svc.Analyze("up")
	require.NoError(t, err)

	tr, err := svc.Trends()
	require.NoError(t, err)
	assert.Empty(t, tr.Points)

	clock.Advance(time.Minute)
	_, err = svc.Analyze("down")
	require.NoError(t, err)

	tr, err = svc.Trends()
	require.NoError(t, err)
	require.Len(t, tr.Points, 2)
	assert.Equal(t, start.Add(time.Minute), tr.Points[1].Timestamp)
	assert.Equal(t, 0.6, tr.Points[1].Negative)
}

func TestService_Insights(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]float64{
		"Great job! Thanks.":   0.7,
		"Great job! Terrible.": -0.2,
		"Great job!":           0.66,
		"Thanks.":              0.4,
		"Terrible.":            -0.5,
	})
	_, err := svc.Analyze("Great job! Thanks.")
	require.NoError(t, err)
	_, err = svc.Analyze("Great job! Terrible.")
	require.NoError(t, err)

	in, err := svc.Insights()
	require.NoError(t, err)

	assert.Equal(t, "Great job! Thanks.", in.Keywords.Positive)
	assert.Equal(t, "Great job! Terrible.", in.Keywords.Negative)
	assert.Empty(t, in.Keywords.Neutral)
	assert.Equal(t, []models.SentimentLabel{models.SentimentPositive, models.SentimentNegative}, in.Available)
	require.Len(t, in.Rankings.MostPositive, 2)
	assert.Equal(t, "Great job!", in.Rankings.MostPositive[0].Sentence)
	require.Len(t, in.Rankings.MostNegative, 1)
	assert.Equal(t, "Terrible.", in.Rankings.MostNegative[0].Sentence)
}

func TestService_Latest(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]float64{"first": 0.5, "second": -0.5})
	_, err := svc.Analyze("first")
	require.NoError(t, err)
	_, err = svc.Analyze("second")
	require.NoError(t, err)

	latest, err := svc.Latest()
	require.NoError(t, err)

	assert.Equal(t, "second", latest.Record.Text)
	assert.Equal(t, models.SentimentNegative, latest.Label)
}

func TestService_ImportKeepsOrderAndValues(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	records := []models.AnalysisRecord{
		{ID: 1, Text: "one", Score: models.PolarityScore{Compound: 0.4, Positive: 0.5, Neutral: 0.5}, Timestamp: start},
		{ID: 2, Text: "two", Score: models.PolarityScore{Compound: -0.4, Negative: 0.5, Neutral: 0.5}, Timestamp: start.Add(time.Hour)},
	}

	n, err := svc.Import(records)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, records, svc.History())
	assert.Equal(t, 0, analyzer.getCalls(), "import must not rescore")
}

func TestService_ImportRejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name    string
		invalid models.AnalysisRecord
		wantErr error
	}{
		{name: "blank text", invalid: models.AnalysisRecord{Text: " ", Score: models.NeutralScore(), Timestamp: start}, wantErr: models.ErrEmptyText},
		{name: "bad score", invalid: models.AnalysisRecord{Text: "x", Score: models.PolarityScore{Compound: 2, Neutral: 1}, Timestamp: start}, wantErr: models.ErrInvalidScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, nil)
			records := []models.AnalysisRecord{
				{Text: "ok", Score: models.NeutralScore(), Timestamp: start},
				tt.invalid,
			}

			n, err := svc.Import(records)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, n)
			assert.Empty(t, svc.History())
		})
	}
}

func TestService_CRLFTextSurvivesCSVExport(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	_, err := svc.Analyze("line one\r\nline two\rline three")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\nline three", svc.History()[0].Text)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, svc.History()))
	got, err := export.ReadCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, svc.History(), got)
}

func TestService_ImportNormalizesLineEndings(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.Import([]models.AnalysisRecord{{Text: "a\r\nb", Score: models.NeutralScore(), Timestamp: start}})

	require.NoError(t, err)
	assert.Equal(t, "a\nb", svc.History()[0].Text)
}

func TestService_ConcurrentAnalyzeIsSerialized(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]float64{"x": 0.5})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Analyze("x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs := svc.History()
	require.Len(t, recs, 20)
	for i, r := range recs {
		assert.Equal(t, i+1, r.ID)
	}
}
