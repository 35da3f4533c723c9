package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/sentiboard/internal/metrics"
	"github.com/spacesedan/sentiboard/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteArchive keeps one history snapshot in a local SQLite file. Save
// replaces the previous snapshot.
type SQLiteArchive struct {
	db *sql.DB
}

func OpenSQLiteArchive(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteArchive] failed to open %s: %w", path, err)
	}

	a := &SQLiteArchive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("[SQLiteArchive] failed to migrate %s: %w", path, err)
	}
	return a, nil
}

func (a *SQLiteArchive) migrate() error {
	_, err := a.db.Exec(`
	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY,
		text TEXT NOT NULL,
		compound REAL NOT NULL,
		positive REAL NOT NULL,
		negative REAL NOT NULL,
		neutral REAL NOT NULL,
		timestamp TEXT NOT NULL
	)`)
	return err
}

func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

func (a *SQLiteArchive) Save(ctx context.Context, records []models.AnalysisRecord) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[SQLiteArchive] failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("[SQLiteArchive] failed to clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (seq, text, compound, positive, negative, neutral, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("[SQLiteArchive] failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx, i+1, r.Text,
			r.Score.Compound, r.Score.Positive, r.Score.Negative, r.Score.Neutral,
			r.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("[SQLiteArchive] failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[SQLiteArchive] failed to commit snapshot: %w", err)
	}
	metrics.ExportRowsTotal.WithLabelValues("sqlite").Add(float64(len(records)))

	slog.Info("[SQLiteArchive] Saved history snapshot", slog.Int("records", len(records)))
	return nil
}

func (a *SQLiteArchive) Load(ctx context.Context) ([]models.AnalysisRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT seq, text, compound, positive, negative, neutral, timestamp
		FROM history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteArchive] failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		var (
			r  models.AnalysisRecord
			ts string
		)
		if err := rows.Scan(&r.ID, &r.Text,
			&r.Score.Compound, &r.Score.Positive, &r.Score.Negative, &r.Score.Neutral, &ts); err != nil {
			return nil, fmt.Errorf("[SQLiteArchive] failed to scan row: %w", err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("[SQLiteArchive] row %d: bad timestamp: %w", r.ID, err)
		}
		if err := r.Score.Validate(); err != nil {
			return nil, fmt.Errorf("[SQLiteArchive] row %d: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
