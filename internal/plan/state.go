// Package plan owns the current split plan and the approval workflow state.
package plan

import "github.com/Veraticus/splitflow/internal/model"

// StepState is the explicit lifecycle state of one approvable plan step.
type StepState int

const (
	// StateFromSheet marks CREATE_PART1 steps: the original entry is edited
	// upstream in the spreadsheet, never here.
	StateFromSheet StepState = iota
	// StateKnown marks steps whose identifier was already recorded in the
	// sheet; they render as a read-only badge.
	StateKnown
	// StateNeedsInput is the initial state for steps awaiting an identifier.
	StateNeedsInput
	// StateApproved means the user has provided an identifier for the step.
	StateApproved
	// StateApplying means the apply call for the step is in flight.
	StateApplying
	// StateApplied means the backend confirmed the write.
	StateApplied
)

// String returns a short label for logs and rendering.
func (s StepState) String() string {
	switch s {
	case StateFromSheet:
		return "from-sheet"
	case StateKnown:
		return "known"
	case StateNeedsInput:
		return "needs-input"
	case StateApproved:
		return "approved"
	case StateApplying:
		return "applying"
	case StateApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// Actionable returns true if the step still accepts user interaction.
func (s StepState) Actionable() bool {
	switch s {
	case StateNeedsInput, StateApproved:
		return true
	default:
		return false
	}
}

// KindForAction maps a plan step action to its approval namespace. The second
// return is false for CREATE_PART1, which never enters the approval workflow.
func KindForAction(action model.StepAction) (model.StepKind, bool) {
	switch action {
	case model.ActionCreatePart2:
		return model.KindPart2, true
	case model.ActionGap:
		return model.KindGap, true
	case model.ActionPatch:
		return model.KindPatch, true
	default:
		return "", false
	}
}
