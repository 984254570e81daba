package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/splitflow/internal/service"
)

// RecordApply appends one attempt to the apply audit trail.
func (s *SQLiteStorage) RecordApply(ctx context.Context, entry service.ApplyRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(entry.StepKey, "entry.StepKey"); err != nil {
		return err
	}

	appliedAt := entry.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO apply_log (step_key, google_row, tag, mis_id, outcome, detail, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.StepKey, entry.GoogleRow, entry.Tag, entry.MISID, entry.Outcome, entry.Detail, appliedAt)
	if err != nil {
		return fmt.Errorf("failed to record apply: %w", err)
	}
	return nil
}

// GetApplyHistory returns all apply attempts for a sheet row, newest first.
func (s *SQLiteStorage) GetApplyHistory(ctx context.Context, googleRow int) ([]service.ApplyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT step_key, google_row, tag, mis_id, outcome, COALESCE(detail, ''), applied_at
		FROM apply_log
		WHERE google_row = ?
		ORDER BY applied_at DESC, id DESC
	`, googleRow)
	if err != nil {
		return nil, fmt.Errorf("failed to query apply history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []service.ApplyRecord
	for rows.Next() {
		var entry service.ApplyRecord
		if err := rows.Scan(&entry.StepKey, &entry.GoogleRow, &entry.Tag, &entry.MISID,
			&entry.Outcome, &entry.Detail, &entry.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan apply record: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate apply history: %w", err)
	}
	return history, nil
}
