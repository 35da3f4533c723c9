// Package ranking surfaces the most positive, negative and neutral sentences
// across the whole history.
package ranking

import (
	"math"
	"sort"

	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
)

const DefaultLimit = 5

type Rankings struct {
	MostPositive []models.SentenceEntry `json:"most_positive"`
	MostNegative []models.SentenceEntry `json:"most_negative"`
	MostNeutral  []models.SentenceEntry `json:"most_neutral"`
}

// Ranker re-segments every record and scores each sentence on its own.
// These sentence scores are independent of the whole-text score stored on
// the record.
type Ranker struct {
	Analyzer   sentiment.Analyzer
	Thresholds sentiment.Thresholds
	Limit      int
}

func New(analyzer sentiment.Analyzer, thresholds sentiment.Thresholds) Ranker {
	return Ranker{
		Analyzer:   analyzer,
		Thresholds: thresholds,
		Limit:      DefaultLimit,
	}
}

// Corpus returns every distinct sentence in the history in encounter order.
// When a sentence appears more than once, the first occurrence wins.
func (r Ranker) Corpus(records []models.AnalysisRecord) []models.SentenceEntry {
	seen := make(map[string]struct{})
	corpus := make([]models.SentenceEntry, 0, len(records))

	for _, record := range records {
		for _, s := range sentiment.Segment(record.Text) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			corpus = append(corpus, models.SentenceEntry{
				Sentence: s,
				Score:    r.Analyzer.Score(s).Compound,
			})
		}
	}
	return corpus
}

func (r Ranker) Rank(records []models.AnalysisRecord) Rankings {
	return r.RankCorpus(r.Corpus(records))
}

// RankCorpus splits corpus into buckets and keeps the top entries of each.
// Ties keep encounter order.
func (r Ranker) RankCorpus(corpus []models.SentenceEntry) Rankings {
	var pos, neg, neu []models.SentenceEntry
	for _, e := range corpus {
		switch r.Thresholds.Classify(e.Score) {
		case models.SentimentPositive:
			pos = append(pos, e)
		case models.SentimentNegative:
			neg = append(neg, e)
		default:
			neu = append(neu, e)
		}
	}

	sort.SliceStable(pos, func(i, j int) bool { return pos[i].Score > pos[j].Score })
	sort.SliceStable(neg, func(i, j int) bool { return neg[i].Score < neg[j].Score })
	sort.SliceStable(neu, func(i, j int) bool { return math.Abs(neu[i].Score) < math.Abs(neu[j].Score) })

	return Rankings{
		MostPositive: r.top(pos),
		MostNegative: r.top(neg),
		MostNeutral:  r.top(neu),
	}
}

func (r Ranker) top(entries []models.SentenceEntry) []models.SentenceEntry {
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]models.SentenceEntry, len(entries))
	copy(out, entries)
	return out
}
