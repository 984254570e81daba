// Package viewmodel defines the data structures for TUI rendering.
package viewmodel

import (
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/Veraticus/splitflow/internal/plan"
)

// StepPhase represents the display phase of one plan step.
type StepPhase int

const (
	// PhaseFromSheet marks steps whose identifier is managed in the
	// spreadsheet; no approve/apply affordance is rendered.
	PhaseFromSheet StepPhase = iota
	// PhaseKnown marks steps with an identifier already recorded in the sheet.
	PhaseKnown
	// PhaseNeedsInput marks steps rendering a text input and a disabled apply.
	PhaseNeedsInput
	// PhaseApproved marks steps whose input is approved; apply is enabled.
	PhaseApproved
	// PhaseApplying marks steps with an apply call in flight.
	PhaseApplying
	// PhaseApplied marks steps confirmed by the backend; the input zone is
	// replaced by the confirmed identifier badge.
	PhaseApplied
)

// StepView represents one plan step's display data.
type StepView struct {
	ActionLabel   string
	Dates         string
	Discount      string
	VendorContrib string
	Locations     string
	Notes         string
	ID            string // known or confirmed identifier, for badge phases
	Input         string // current text input contents
	Error         string // last apply failure, shown until the next attempt
	Phase         StepPhase
	Index         int
}

// ShowsInput returns true if the step renders an editable identifier field.
func (sv StepView) ShowsInput() bool {
	switch sv.Phase {
	case PhaseNeedsInput, PhaseApproved, PhaseApplying:
		return true
	default:
		return false
	}
}

// ShowsBadge returns true if the step renders a read-only identifier badge.
func (sv StepView) ShowsBadge() bool {
	return sv.Phase == PhaseKnown || sv.Phase == PhaseApplied
}

// CanApprove returns true if an approve action is currently meaningful.
func (sv StepView) CanApprove() bool {
	return sv.Phase == PhaseNeedsInput || sv.Phase == PhaseApproved
}

// CanApply returns true if the apply control is enabled.
func (sv StepView) CanApply() bool {
	return sv.Phase == PhaseApproved
}

// ApplyLabel returns the apply control's label for the current phase.
func (sv StepView) ApplyLabel() string {
	switch sv.Phase {
	case PhaseApplying:
		return "Applying..."
	case PhaseApplied:
		return "Applied"
	default:
		return "Apply"
	}
}

// HasError returns true if the step has a failure message to show.
func (sv StepView) HasError() bool {
	return sv.Error != ""
}

// actionLabel maps a step action to its display label.
func actionLabel(action model.StepAction) string {
	switch action {
	case model.ActionCreatePart1:
		return "Create Part 1"
	case model.ActionGap:
		return "Gap Entry"
	case model.ActionPatch:
		return "Location Patch"
	case model.ActionCreatePart2:
		return "Create Part 2"
	default:
		return string(action)
	}
}

// phaseForState maps a session step state to its display phase.
func phaseForState(state plan.StepState) StepPhase {
	switch state {
	case plan.StateFromSheet:
		return PhaseFromSheet
	case plan.StateKnown:
		return PhaseKnown
	case plan.StateApproved:
		return PhaseApproved
	case plan.StateApplying:
		return PhaseApplying
	case plan.StateApplied:
		return PhaseApplied
	default:
		return PhaseNeedsInput
	}
}
