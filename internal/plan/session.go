package plan

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/misid"
	"github.com/Veraticus/splitflow/internal/model"
)

// Session owns the current split plan and all ephemeral approval state.
// The plan is replaced wholesale by each ingest; approvals never outlive the
// plan they were made against.
type Session struct {
	plan     *model.SplitPlan
	states   map[model.StepKey]StepState
	approved map[model.StepKey]model.ApprovedID
	applied  map[model.StepKey]string
	failed   map[model.StepKey]string
	tab      string
	mu       sync.Mutex
}

// IngestResult summarizes a successful ingest for display.
type IngestResult struct {
	DateContext    string
	SplitsRequired int
	NoConflict     int
	Summary        model.Summary
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		states:   make(map[model.StepKey]StepState),
		approved: make(map[model.StepKey]model.ApprovedID),
		applied:  make(map[model.StepKey]string),
		failed:   make(map[model.StepKey]string),
	}
}

// Ingest accepts a planning response. A failed response leaves existing state
// untouched and surfaces the server's error; a successful one replaces the
// plan wholesale and resets every approval.
func (s *Session) Ingest(tab string, resp *api.PlanResponse) (IngestResult, error) {
	if resp == nil {
		return IngestResult{}, common.NewUserError("planning returned no response", common.ErrBackendRejected)
	}
	if resp.Failed() {
		return IngestResult{}, common.NewUserError(resp.ErrorMessage(), common.ErrBackendRejected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tab = tab
	s.plan = &model.SplitPlan{
		DateContext:    resp.DateContext,
		Summary:        resp.Summary,
		SplitsRequired: resp.SplitsRequired,
		NoConflict:     resp.NoConflict,
		CategoryList:   resp.CategoryList,
		BrandList:      resp.BrandList,
		BrandLinkedMap: resp.BrandLinkedMap,
	}
	s.states = make(map[model.StepKey]StepState)
	s.approved = make(map[model.StepKey]model.ApprovedID)
	s.applied = make(map[model.StepKey]string)
	s.failed = make(map[model.StepKey]string)

	return IngestResult{
		DateContext:    resp.DateContext,
		SplitsRequired: len(resp.SplitsRequired),
		NoConflict:     len(resp.NoConflict),
		Summary:        resp.Summary,
	}, nil
}

// Restore loads a previously snapshotted plan, resetting approvals the same
// way a fresh ingest does.
func (s *Session) Restore(tab string, snapshot *model.SplitPlan) error {
	if snapshot == nil {
		return common.ErrNoPlan
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tab = tab
	s.plan = snapshot
	s.states = make(map[model.StepKey]StepState)
	s.approved = make(map[model.StepKey]model.ApprovedID)
	s.applied = make(map[model.StepKey]string)
	s.failed = make(map[model.StepKey]string)
	return nil
}

// Plan returns the current plan for rendering. Callers must not mutate it.
func (s *Session) Plan() *model.SplitPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Tab returns the sheet tab the current plan was built from.
func (s *Session) Tab() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// HasPlan returns true once a plan has been ingested.
func (s *Session) HasPlan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan != nil
}

// KeyFor derives the approval key for a step, if the step participates in the
// approval workflow at all.
func (s *Session) KeyFor(splitIdx, stepIdx int) (model.StepKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, ok := s.stepAtLocked(splitIdx, stepIdx)
	if !ok {
		return model.StepKey{}, false
	}
	kind, ok := KindForAction(step.Action)
	if !ok {
		return model.StepKey{}, false
	}
	return model.StepKey{Kind: kind, SplitIndex: splitIdx, StepIndex: stepIdx}, true
}

// StateOf returns the current lifecycle state for a step.
func (s *Session) StateOf(splitIdx, stepIdx int) StepState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(splitIdx, stepIdx)
}

// KnownID returns the pre-existing sheet identifier for a step in StateKnown,
// or the confirmed value for a step in StateApplied.
func (s *Session) KnownID(splitIdx, stepIdx int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyLocked(splitIdx, stepIdx)
	if ok {
		if confirmed, applied := s.applied[key]; applied {
			return confirmed, true
		}
	}
	return s.existingIDLocked(splitIdx, stepIdx)
}

// ApprovedID returns the identifier the user approved for a step, if any.
func (s *Session) ApprovedID(splitIdx, stepIdx int) (model.ApprovedID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyLocked(splitIdx, stepIdx)
	if !ok {
		return model.ApprovedID{}, false
	}
	id, ok := s.approved[key]
	return id, ok
}

// Approve records a user-provided identifier for a step and moves it to
// StateApproved. Re-approving with a different identifier is allowed until
// the apply succeeds.
func (s *Session) Approve(splitIdx, stepIdx int, misID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return common.NewUserError("run planning before approving IDs", common.ErrNoPlan)
	}
	key, ok := s.keyLocked(splitIdx, stepIdx)
	if !ok {
		return fmt.Errorf("step %d/%d does not accept an identifier", splitIdx, stepIdx)
	}

	// Users paste identifiers straight from sheet cells, so a section/slot
	// prefix like "W2:" may come along. The backend wants the bare ID; the
	// tag travels separately with the apply call.
	trimmed := misid.StripTag(misID)
	if trimmed == "" || misid.IsPlaceholder(trimmed) {
		return common.NewUserError("enter a MIS ID before approving", nil)
	}

	switch s.stateLocked(splitIdx, stepIdx) {
	case StateNeedsInput, StateApproved:
	case StateApplying:
		return common.NewUserError("apply is in progress for this step", common.ErrAlreadyApplying)
	case StateApplied:
		return common.NewUserError("this step has already been applied", nil)
	default:
		return fmt.Errorf("step %d/%d does not accept an identifier", splitIdx, stepIdx)
	}

	s.approved[key] = model.ApprovedID{
		MISID:     trimmed,
		GoogleRow: s.plan.SplitsRequired[splitIdx].GoogleRow,
	}
	s.states[key] = StateApproved
	return nil
}

// BeginApply transitions an approved step to StateApplying and hands back the
// identifier to send. Calling it without a prior approve is a precondition
// error and must not result in a network call; calling it while an apply is
// already in flight is rejected rather than trusting a disabled control.
func (s *Session) BeginApply(splitIdx, stepIdx int) (model.ApprovedID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return model.ApprovedID{}, common.NewUserError("run planning before applying IDs", common.ErrNoPlan)
	}
	key, ok := s.keyLocked(splitIdx, stepIdx)
	if !ok {
		return model.ApprovedID{}, fmt.Errorf("step %d/%d does not accept an identifier", splitIdx, stepIdx)
	}

	switch s.stateLocked(splitIdx, stepIdx) {
	case StateApproved:
	case StateApplying:
		return model.ApprovedID{}, common.NewUserError("apply is already in progress for this step", common.ErrAlreadyApplying)
	case StateApplied:
		return model.ApprovedID{}, common.NewUserError("this step has already been applied", nil)
	default:
		return model.ApprovedID{}, common.NewUserError("approve an ID before applying", common.ErrNotApproved)
	}

	id := s.approved[key]
	s.states[key] = StateApplying
	delete(s.failed, key)
	return id, nil
}

// LastApplyError returns the failure message from the step's most recent
// apply attempt. It is cleared when the next attempt starts.
func (s *Session) LastApplyError(splitIdx, stepIdx int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyLocked(splitIdx, stepIdx)
	if !ok {
		return "", false
	}
	msg, ok := s.failed[key]
	return msg, ok
}

// FinishApply completes an apply. On success detail is the backend's
// confirmed cell value: the step becomes StateApplied and the ephemeral
// approval is discarded. On failure detail is the error message: the step
// returns to StateApproved so the user may retry, and the message is kept
// until the next attempt.
func (s *Session) FinishApply(splitIdx, stepIdx int, success bool, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyLocked(splitIdx, stepIdx)
	if !ok {
		return
	}
	if s.stateLocked(splitIdx, stepIdx) != StateApplying {
		return
	}

	if !success {
		s.states[key] = StateApproved
		s.failed[key] = detail
		return
	}

	if detail == "" {
		detail = s.approved[key].MISID
	}
	s.applied[key] = detail
	delete(s.approved, key)
	delete(s.failed, key)
	s.states[key] = StateApplied
}

// stepAtLocked returns the plan step at the given position.
func (s *Session) stepAtLocked(splitIdx, stepIdx int) (model.PlanStep, bool) {
	if s.plan == nil || splitIdx < 0 || splitIdx >= len(s.plan.SplitsRequired) {
		return model.PlanStep{}, false
	}
	steps := s.plan.SplitsRequired[splitIdx].Plan
	if stepIdx < 0 || stepIdx >= len(steps) {
		return model.PlanStep{}, false
	}
	return steps[stepIdx], true
}

func (s *Session) keyLocked(splitIdx, stepIdx int) (model.StepKey, bool) {
	step, ok := s.stepAtLocked(splitIdx, stepIdx)
	if !ok {
		return model.StepKey{}, false
	}
	kind, ok := KindForAction(step.Action)
	if !ok {
		return model.StepKey{}, false
	}
	return model.StepKey{Kind: kind, SplitIndex: splitIdx, StepIndex: stepIdx}, true
}

func (s *Session) stateLocked(splitIdx, stepIdx int) StepState {
	step, ok := s.stepAtLocked(splitIdx, stepIdx)
	if !ok {
		return StateFromSheet
	}
	key, keyed := s.keyLocked(splitIdx, stepIdx)
	if !keyed {
		return StateFromSheet
	}
	if state, tracked := s.states[key]; tracked {
		return state
	}
	if _, known := s.existingIDForStepLocked(splitIdx, step); known {
		return StateKnown
	}
	return StateNeedsInput
}

// existingIDLocked resolves the identifier the sheet already holds for a step.
func (s *Session) existingIDLocked(splitIdx, stepIdx int) (string, bool) {
	step, ok := s.stepAtLocked(splitIdx, stepIdx)
	if !ok {
		return "", false
	}
	return s.existingIDForStepLocked(splitIdx, step)
}

func (s *Session) existingIDForStepLocked(splitIdx int, step model.PlanStep) (string, bool) {
	item := s.plan.SplitsRequired[splitIdx]

	var raw string
	var ok bool
	switch step.Action {
	case model.ActionCreatePart1:
		raw, ok = item.PartID(1)
	case model.ActionCreatePart2:
		raw, ok = item.PartID(2)
	case model.ActionGap:
		raw, ok = item.GapID()
	case model.ActionPatch:
		raw, ok = item.PatchID()
	}
	if !ok {
		return "", false
	}
	return knownIDDisplay(raw)
}

// knownIDDisplay normalizes a stored cell value into its badge form. Sheets
// mark empty slots with "-" or "N/A"; those mean no identifier exists yet, so
// the step must stay editable. Tagged and multi-ID cells keep their tags in
// the display form.
func knownIDDisplay(raw string) (string, bool) {
	tokens := misid.ParseCell(raw)
	if len(tokens) == 0 {
		return "", false
	}
	displays := make([]string, 0, len(tokens))
	for _, token := range tokens {
		displays = append(displays, token.Display)
	}
	return strings.Join(displays, ", "), true
}
