// Package export writes and reads the flat tabular form of the history:
// one row per record, in arrival order.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/sentiboard/internal/models"
)

const (
	FileName    = "sentiment_analysis_history.csv"
	ContentType = "text/csv"
)

// Header is the canonical column order.
var Header = []string{"text", "compound", "positive", "negative", "neutral", "timestamp"}

var ErrBadHeader = errors.New("unexpected csv header")

func WriteCSV(w io.Writer, records []models.AnalysisRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("[Export] failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(toRow(r)); err != nil {
			return fmt.Errorf("[Export] failed to write row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV. IDs are reassigned from row
// position, which matches how they were assigned on the way in.
func ReadCSV(r io.Reader) ([]models.AnalysisRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("[Export] failed to read header: %w", err)
	}
	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("[Export] %w: column %d is %q, want %q", ErrBadHeader, i+1, header[i], col)
		}
	}

	var records []models.AnalysisRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[Export] failed to read line %d: %w", line, err)
		}
		record, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("[Export] line %d: %w", line, err)
		}
		record.ID = len(records) + 1
		records = append(records, record)
	}
	return records, nil
}

func toRow(r models.AnalysisRecord) []string {
	return []string{
		r.Text,
		formatFloat(r.Score.Compound),
		formatFloat(r.Score.Positive),
		formatFloat(r.Score.Negative),
		formatFloat(r.Score.Neutral),
		r.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func fromRow(row []string) (models.AnalysisRecord, error) {
	if strings.TrimSpace(row[0]) == "" {
		return models.AnalysisRecord{}, fmt.Errorf("column text: %w", models.ErrEmptyText)
	}

	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return models.AnalysisRecord{}, fmt.Errorf("column %s: %w", Header[i+1], err)
		}
		vals[i] = v
	}
	score, err := models.NewPolarityScore(vals[0], vals[1], vals[2], vals[3])
	if err != nil {
		return models.AnalysisRecord{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, row[5])
	if err != nil {
		return models.AnalysisRecord{}, fmt.Errorf("column timestamp: %w", err)
	}

	return models.AnalysisRecord{
		Text:      row[0],
		Score:     score,
		Timestamp: ts.UTC(),
	}, nil
}

// formatFloat uses the shortest representation that parses back to the
// same value.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
