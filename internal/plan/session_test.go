package plan

import (
	"testing"

	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlanResponse() *api.PlanResponse {
	return &api.PlanResponse{
		Status:      api.Status{Success: true},
		DateContext: "January 2026",
		Summary:     model.Summary{WeeklyCount: 12, MonthlyCount: 3, SaleCount: 1},
		SplitsRequired: []model.SplitItem{
			{
				Brand:        "Acme Hops",
				Weekday:      "Monday",
				Discount:     "20%",
				GoogleRow:    14,
				ConflictType: model.ConflictFull,
				InterruptingDeal: &model.Deal{
					Brand:   "Acme Hops",
					Section: model.SectionMonthly,
				},
				Plan: []model.PlanStep{
					{Action: model.ActionCreatePart1, Dates: "01/01 - 01/15"},
					{Action: model.ActionGap, Dates: "01/16 - 01/20"},
					{Action: model.ActionCreatePart2, Dates: "01/21 - 01/31"},
				},
			},
		},
		NoConflict: []model.Deal{
			{Brand: "Quiet Cider", Weekday: "Friday"},
			{Brand: "Calm Kombucha", Weekday: "Tuesday"},
		},
	}
}

func TestSession_IngestSuccess(t *testing.T) {
	s := NewSession()

	result, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SplitsRequired)
	assert.Equal(t, 2, result.NoConflict)
	assert.Equal(t, "January 2026", result.DateContext)
	assert.Equal(t, 12, result.Summary.WeeklyCount)
	assert.True(t, s.HasPlan())
	assert.Equal(t, "Jan Promos", s.Tab())
}

func TestSession_IngestFailureLeavesStateUntouched(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)
	require.NoError(t, s.Approve(0, 2, "NEWID99"))

	_, err = s.Ingest("Feb Promos", &api.PlanResponse{
		Status: api.Status{Success: false, Error: "sheet is locked"},
	})
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "sheet is locked")

	// Prior plan and approval survive the failed re-run.
	assert.Equal(t, "Jan Promos", s.Tab())
	assert.Equal(t, StateApproved, s.StateOf(0, 2))
}

func TestSession_IngestResetsApprovals(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)
	require.NoError(t, s.Approve(0, 2, "NEWID99"))

	_, err = s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	assert.Equal(t, StateNeedsInput, s.StateOf(0, 2))
	_, ok := s.ApprovedID(0, 2)
	assert.False(t, ok)
}

func TestSession_InitialStates(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	// CREATE_PART1 never enters the approval workflow.
	assert.Equal(t, StateFromSheet, s.StateOf(0, 0))
	_, ok := s.KeyFor(0, 0)
	assert.False(t, ok)

	// GAP and CREATE_PART2 with no recorded identifier await input.
	assert.Equal(t, StateNeedsInput, s.StateOf(0, 1))
	assert.Equal(t, StateNeedsInput, s.StateOf(0, 2))
}

func TestSession_KnownIdentifiers(t *testing.T) {
	resp := testPlanResponse()
	resp.SplitsRequired[0].InterruptingDeal.MISID = "GAP555"
	resp.SplitsRequired[0].ParsedMISIDs = map[model.Section]model.SectionIDs{
		model.SectionWeekly: {Parts: []string{"PART111", "PART222"}},
	}

	s := NewSession()
	_, err := s.Ingest("Jan Promos", resp)
	require.NoError(t, err)

	assert.Equal(t, StateKnown, s.StateOf(0, 1))
	gapID, ok := s.KnownID(0, 1)
	require.True(t, ok)
	assert.Equal(t, "GAP555", gapID)

	assert.Equal(t, StateKnown, s.StateOf(0, 2))
	part2, ok := s.KnownID(0, 2)
	require.True(t, ok)
	assert.Equal(t, "PART222", part2)

	// Part1 is read-only regardless of whether its id is recorded.
	assert.Equal(t, StateFromSheet, s.StateOf(0, 0))
	part1, ok := s.KnownID(0, 0)
	require.True(t, ok)
	assert.Equal(t, "PART111", part1)
}

func TestSession_PlaceholderIdentifiersStayEditable(t *testing.T) {
	resp := testPlanResponse()
	resp.SplitsRequired[0].InterruptingDeal.MISID = "-"
	resp.SplitsRequired[0].ParsedMISIDs = map[model.Section]model.SectionIDs{
		model.SectionWeekly: {Parts: []string{"PART111", "N/A"}},
	}

	s := NewSession()
	_, err := s.Ingest("Jan Promos", resp)
	require.NoError(t, err)

	// "-" and "N/A" mean no identifier yet, not a recorded one.
	assert.Equal(t, StateNeedsInput, s.StateOf(0, 1))
	_, ok := s.KnownID(0, 1)
	assert.False(t, ok)
	assert.Equal(t, StateNeedsInput, s.StateOf(0, 2))
	_, ok = s.KnownID(0, 2)
	assert.False(t, ok)

	// The real part1 identifier is still known.
	part1, ok := s.KnownID(0, 0)
	require.True(t, ok)
	assert.Equal(t, "PART111", part1)

	// Placeholder steps accept an identifier like any other empty step.
	require.NoError(t, s.Approve(0, 1, "GAP123"))
	assert.Equal(t, StateApproved, s.StateOf(0, 1))
}

func TestSession_TaggedIdentifierDisplay(t *testing.T) {
	resp := testPlanResponse()
	resp.SplitsRequired[0].InterruptingDeal.MISID = "M1:GAP555\nMP:GAP556"
	resp.SplitsRequired[0].ParsedMISIDs = map[model.Section]model.SectionIDs{
		model.SectionWeekly: {Parts: []string{"W1:PART111", "W2:PART222"}},
	}

	s := NewSession()
	_, err := s.Ingest("Jan Promos", resp)
	require.NoError(t, err)

	// Display form keeps the section/slot tag.
	part2, ok := s.KnownID(0, 2)
	require.True(t, ok)
	assert.Equal(t, "W2:PART222", part2)

	// A cell holding several tagged identifiers renders all of them.
	gap, ok := s.KnownID(0, 1)
	require.True(t, ok)
	assert.Equal(t, "M1:GAP555, MP:GAP556", gap)
	assert.Equal(t, StateKnown, s.StateOf(0, 1))
}

func TestSession_ApproveStripsTag(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	// Pasting the tagged display form stores the bare identifier.
	require.NoError(t, s.Approve(0, 2, "W2:NEWID99"))
	id, ok := s.ApprovedID(0, 2)
	require.True(t, ok)
	assert.Equal(t, "NEWID99", id.MISID)
}

func TestSession_ApproveRejectsPlaceholder(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	err = s.Approve(0, 2, "N/A")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "enter a MIS ID")
}

func TestSession_ApproveRequiresID(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	err = s.Approve(0, 2, "   ")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "enter a MIS ID")
	assert.Equal(t, StateNeedsInput, s.StateOf(0, 2))
}

func TestSession_ApproveGatesApply(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	_, err = s.BeginApply(0, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotApproved)
	assert.Equal(t, StateNeedsInput, s.StateOf(0, 2))
}

func TestSession_ApplyLifecycle(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	require.NoError(t, s.Approve(0, 2, "NEWID99"))
	assert.Equal(t, StateApproved, s.StateOf(0, 2))

	id, err := s.BeginApply(0, 2)
	require.NoError(t, err)
	assert.Equal(t, "NEWID99", id.MISID)
	assert.Equal(t, 14, id.GoogleRow)
	assert.Equal(t, StateApplying, s.StateOf(0, 2))

	// A second apply during the in-flight window is rejected outright.
	_, err = s.BeginApply(0, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAlreadyApplying)

	s.FinishApply(0, 2, true, "NEWID99")
	assert.Equal(t, StateApplied, s.StateOf(0, 2))

	confirmed, ok := s.KnownID(0, 2)
	require.True(t, ok)
	assert.Equal(t, "NEWID99", confirmed)

	// The ephemeral approval is consumed on success.
	_, ok = s.ApprovedID(0, 2)
	assert.False(t, ok)
}

func TestSession_FailedApplyReturnsToApproved(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	require.NoError(t, s.Approve(0, 1, "GAPID1"))
	_, err = s.BeginApply(0, 1)
	require.NoError(t, err)

	s.FinishApply(0, 1, false, "")
	assert.Equal(t, StateApproved, s.StateOf(0, 1))

	// The approval survives, so the user can retry immediately.
	id, ok := s.ApprovedID(0, 1)
	require.True(t, ok)
	assert.Equal(t, "GAPID1", id.MISID)

	_, err = s.BeginApply(0, 1)
	assert.NoError(t, err)
}

func TestSession_FailedApplyRecordsError(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	require.NoError(t, s.Approve(0, 1, "GAPID1"))
	_, err = s.BeginApply(0, 1)
	require.NoError(t, err)

	s.FinishApply(0, 1, false, "row is locked")
	msg, ok := s.LastApplyError(0, 1)
	require.True(t, ok)
	assert.Equal(t, "row is locked", msg)

	// Starting the next attempt clears the stale message.
	_, err = s.BeginApply(0, 1)
	require.NoError(t, err)
	_, ok = s.LastApplyError(0, 1)
	assert.False(t, ok)

	// A successful retry leaves no error behind.
	s.FinishApply(0, 1, true, "GAPID1")
	_, ok = s.LastApplyError(0, 1)
	assert.False(t, ok)
}

func TestSession_ReApproveReplacesID(t *testing.T) {
	s := NewSession()
	_, err := s.Ingest("Jan Promos", testPlanResponse())
	require.NoError(t, err)

	require.NoError(t, s.Approve(0, 2, "FIRST"))
	require.NoError(t, s.Approve(0, 2, "SECOND"))

	id, ok := s.ApprovedID(0, 2)
	require.True(t, ok)
	assert.Equal(t, "SECOND", id.MISID)
}

func TestSession_ApplyWithoutPlan(t *testing.T) {
	s := NewSession()
	_, err := s.BeginApply(0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoPlan)
}

func TestKindForAction(t *testing.T) {
	tests := []struct {
		action model.StepAction
		kind   model.StepKind
		ok     bool
	}{
		{model.ActionCreatePart2, model.KindPart2, true},
		{model.ActionGap, model.KindGap, true},
		{model.ActionPatch, model.KindPatch, true},
		{model.ActionCreatePart1, "", false},
	}

	for _, tt := range tests {
		kind, ok := KindForAction(tt.action)
		assert.Equal(t, tt.ok, ok, "action %s", tt.action)
		assert.Equal(t, tt.kind, kind, "action %s", tt.action)
	}
}
