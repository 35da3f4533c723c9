// Package history keeps the append-only log of analyses for a session.
package history

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentiboard/internal/models"
)

// Store is an append-only, arrival-ordered list of analysis records. Appends
// are serialized against reads; records are never updated or removed.
type Store struct {
	clock   clockwork.Clock
	mu      sync.RWMutex
	records []models.AnalysisRecord
}

func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:   clock,
		records: make([]models.AnalysisRecord, 0, 16),
	}
}

// Append adds a record stamped with timestamp and returns it. Blank text is
// rejected with models.ErrEmptyText and nothing is stored.
func (s *Store) Append(text string, score models.PolarityScore, timestamp time.Time) (models.AnalysisRecord, error) {
	if strings.TrimSpace(text) == "" {
		return models.AnalysisRecord{}, models.ErrEmptyText
	}
	if err := score.Validate(); err != nil {
		return models.AnalysisRecord{}, fmt.Errorf("[HistoryStore] rejecting record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := models.AnalysisRecord{
		ID:    len(s.records) + 1,
		Text:  text,
		Score: score,
		// UTC drops the monotonic reading so exported timestamps compare equal.
		Timestamp: timestamp.UTC(),
	}
	s.records = append(s.records, record)
	return record, nil
}

// Record appends text stamped with the store's clock.
func (s *Store) Record(text string, score models.PolarityScore) (models.AnalysisRecord, error) {
	return s.Append(text, score, s.clock.Now())
}

// All returns the records in arrival order. The returned slice is capped at
// its length, so later appends never show up in it and appending to it
// never writes into the store.
func (s *Store) All() []models.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	return s.records[:n:n]
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Latest returns the most recently appended record.
func (s *Store) Latest() (models.AnalysisRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return models.AnalysisRecord{}, false
	}
	return s.records[len(s.records)-1], true
}
