// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/splitflow/internal/model"
)

// Storage defines the contract for the local persistence layer.
type Storage interface {
	// Settings cache
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
	ListSettings(ctx context.Context) (map[string]string, error)

	// Plan snapshots
	SavePlanSnapshot(ctx context.Context, tab string, plan *model.SplitPlan) error
	GetPlanSnapshot(ctx context.Context, tab string) (*model.SplitPlan, time.Time, error)

	// Apply audit trail
	RecordApply(ctx context.Context, entry ApplyRecord) error
	GetApplyHistory(ctx context.Context, googleRow int) ([]ApplyRecord, error)

	Close() error
}

// ApplyRecord is one row of the apply audit trail.
type ApplyRecord struct {
	AppliedAt time.Time
	StepKey   string
	Tag       string
	MISID     string
	Outcome   string
	Detail    string
	GoogleRow int
}

// Apply outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions returns sensible retry defaults for transient failures.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}
