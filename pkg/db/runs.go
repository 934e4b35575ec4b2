package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run represents one recorded batch invocation
type Run struct {
	RunID           int64     `yaml:"run_id"`
	CreatedAt       time.Time `yaml:"created_at"`
	ItemCount       int       `yaml:"item_count"`
	SuccessCount    int       `yaml:"success_count"`
	FailedCount     int       `yaml:"failed_count"`
	Options         string    `yaml:"options,omitempty"`
	TotalWords      int       `yaml:"total_words"`
	TotalCodeBlocks int       `yaml:"total_code_blocks"`
	AvgQualityScore float64   `yaml:"avg_quality_score"`
}

// RunItem represents a single document's outcome within a run
type RunItem struct {
	ItemID         int64   `yaml:"item_id"`
	RunID          int64   `yaml:"run_id"`
	SourceURL      string  `yaml:"source_url"`
	Status         string  `yaml:"status"`
	ErrorType      string  `yaml:"error_type,omitempty"`
	ErrorMessage   string  `yaml:"error_message,omitempty"`
	FileID         string  `yaml:"file_id,omitempty"`
	QualityScore   float64 `yaml:"quality_score"`
	WordCount      int     `yaml:"word_count"`
	CodeBlockCount int     `yaml:"code_block_count"`
}

// InsertRun creates a new run record and returns its ID
func (db *DB) InsertRun(itemCount int, options string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (item_count, options)
		VALUES (?, ?)
	`, itemCount, options)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// InsertRunItem records the outcome of one document in a run
func (db *DB) InsertRunItem(item RunItem) error {
	var errorType, errorMessage, fileID any
	if item.ErrorType != "" {
		errorType = item.ErrorType
	}
	if item.ErrorMessage != "" {
		errorMessage = item.ErrorMessage
	}
	if item.FileID != "" {
		fileID = item.FileID
	}

	_, err := db.Exec(`
		INSERT INTO run_items (run_id, source_url, status, error_type, error_message, file_id, quality_score, word_count, code_block_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.RunID, item.SourceURL, item.Status, errorType, errorMessage, fileID,
		item.QualityScore, item.WordCount, item.CodeBlockCount)
	if err != nil {
		return fmt.Errorf("failed to insert run item: %w", err)
	}
	return nil
}

// UpdateRunStats finalizes the aggregate counters for a run
func (db *DB) UpdateRunStats(runID int64, successCount, failedCount, totalWords, totalCodeBlocks int, avgQuality float64) error {
	_, err := db.Exec(`
		UPDATE runs
		SET success_count = ?, failed_count = ?, total_words = ?, total_code_blocks = ?, avg_quality_score = ?
		WHERE run_id = ?
	`, successCount, failedCount, totalWords, totalCodeBlocks, avgQuality, runID)
	if err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its ID
func (db *DB) GetRun(runID int64) (*Run, error) {
	var run Run
	err := db.QueryRow(`
		SELECT run_id, created_at, item_count, success_count, failed_count,
		       options, total_words, total_code_blocks, avg_quality_score
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID,
		&run.CreatedAt,
		&run.ItemCount,
		&run.SuccessCount,
		&run.FailedCount,
		&run.Options,
		&run.TotalWords,
		&run.TotalCodeBlocks,
		&run.AvgQualityScore,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// GetRunItems retrieves all item outcomes for a run
func (db *DB) GetRunItems(runID int64) ([]RunItem, error) {
	rows, err := db.Query(`
		SELECT item_id, run_id, source_url, status, error_type, error_message,
		       file_id, quality_score, word_count, code_block_count
		FROM run_items
		WHERE run_id = ?
		ORDER BY item_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run items: %w", err)
	}
	defer rows.Close()

	var items []RunItem
	for rows.Next() {
		var item RunItem
		var errorType, errorMessage, fileID sql.NullString
		var quality sql.NullFloat64
		if err := rows.Scan(&item.ItemID, &item.RunID, &item.SourceURL, &item.Status,
			&errorType, &errorMessage, &fileID, &quality,
			&item.WordCount, &item.CodeBlockCount); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		if errorType.Valid {
			item.ErrorType = errorType.String
		}
		if errorMessage.Valid {
			item.ErrorMessage = errorMessage.String
		}
		if fileID.Valid {
			item.FileID = fileID.String
		}
		if quality.Valid {
			item.QualityScore = quality.Float64
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, created_at, item_count, success_count, failed_count,
		       options, total_words, total_code_blocks, avg_quality_score
		FROM runs
		ORDER BY created_at DESC, run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.ItemCount, &r.SuccessCount,
			&r.FailedCount, &r.Options, &r.TotalWords, &r.TotalCodeBlocks,
			&r.AvgQualityScore); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
