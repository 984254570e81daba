package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/model"
)

// SavePlanSnapshot stores the full plan for a tab, replacing any prior
// snapshot. The snapshot is what "full list" restore reads from; the
// breakdown transformation is never inverted.
func (s *SQLiteStorage) SavePlanSnapshot(ctx context.Context, tab string, plan *model.SplitPlan) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(tab, "tab"); err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("%w: plan", ErrNilParameter)
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plan_snapshots (tab, plan_json, saved_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(tab) DO UPDATE SET plan_json = excluded.plan_json, saved_at = CURRENT_TIMESTAMP
	`, tab, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save plan snapshot for %q: %w", tab, err)
	}
	return nil
}

// GetPlanSnapshot loads the saved plan for a tab and when it was saved.
func (s *SQLiteStorage) GetPlanSnapshot(ctx context.Context, tab string) (*model.SplitPlan, time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, time.Time{}, err
	}
	if err := validateString(tab, "tab"); err != nil {
		return nil, time.Time{}, err
	}

	var payload string
	var savedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT plan_json, saved_at FROM plan_snapshots WHERE tab = ?
	`, tab).Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, common.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get plan snapshot for %q: %w", tab, err)
	}

	var plan model.SplitPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode plan snapshot for %q: %w", tab, err)
	}
	return &plan, savedAt, nil
}
