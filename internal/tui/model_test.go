package tui

import (
	"testing"

	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/Veraticus/splitflow/internal/plan"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *plan.Session {
	t.Helper()

	resp := &api.PlanResponse{
		Status:      api.Status{Success: true},
		DateContext: "Week of 03/10 - 03/16",
		Summary:     model.Summary{WeeklyCount: 2, MonthlyCount: 1},
		SplitsRequired: []model.SplitItem{
			{
				Brand:        "Acme Hops",
				Weekday:      "Tuesday",
				GoogleRow:    14,
				ConflictType: model.ConflictFull,
				Plan: []model.PlanStep{
					{Action: model.ActionCreatePart1, Dates: "03/10 - 03/11"},
					{Action: model.ActionGap, Dates: "03/12"},
					{Action: model.ActionCreatePart2, Dates: "03/13 - 03/16"},
				},
			},
		},
	}

	session := plan.NewSession()
	_, err := session.Ingest("March Wk2", resp)
	require.NoError(t, err)
	return session
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelNavigation(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})

	require.Len(t, m.positions, 3)
	assert.Equal(t, 0, m.cursor)

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)

	next, _ = m.Update(keyMsg("k"))
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)

	// Cannot move above the first row
	next, _ = m.Update(keyMsg("k"))
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestModelEditIgnoredOnReadOnlyStep(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})

	// Cursor starts on the part 1 step, which is managed in the sheet
	next, _ := m.Update(keyMsg("i"))
	m = next.(Model)
	assert.False(t, m.editing)
}

func TestModelApproveFlow(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})

	// Move to the gap step and open the input
	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	next, _ = m.Update(keyMsg("i"))
	m = next.(Model)
	require.True(t, m.editing)

	// Type an ID and approve it
	next, _ = m.Update(keyMsg("G"))
	m = next.(Model)
	next, _ = m.Update(keyMsg("1"))
	m = next.(Model)
	next, _ = m.Update(keyMsg("enter"))
	m = next.(Model)

	assert.False(t, m.editing)
	assert.Equal(t, plan.StateApproved, m.session.StateOf(0, 1))
}

func TestModelApproveRejectsEmptyID(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	next, _ = m.Update(keyMsg("i"))
	m = next.(Model)
	next, _ = m.Update(keyMsg("enter"))
	m = next.(Model)

	assert.True(t, m.editing)
	assert.Contains(t, m.status, "enter a MIS ID")
	assert.Equal(t, plan.StateNeedsInput, m.session.StateOf(0, 1))
}

func TestModelApplyRequiresApproval(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	next, cmd := m.Update(keyMsg("a"))
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "approve")
	assert.Equal(t, plan.StateNeedsInput, m.session.StateOf(0, 1))
}

func TestModelApplyFinished(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})
	require.NoError(t, m.session.Approve(0, 1, "G123"))
	_, err := m.session.BeginApply(0, 1)
	require.NoError(t, err)
	m.refresh()

	next, _ := m.Update(applyFinishedMsg{
		splitIdx: 0,
		stepIdx:  1,
		success:  true,
		newValue: "G1:G123",
	})
	m = next.(Model)

	assert.Equal(t, plan.StateApplied, m.session.StateOf(0, 1))
	assert.Contains(t, m.status, "Applied")

	id, ok := m.session.KnownID(0, 1)
	require.True(t, ok)
	assert.Equal(t, "G1:G123", id)
}

func TestModelApplyFailureReturnsToApproved(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})
	require.NoError(t, m.session.Approve(0, 1, "G123"))
	_, err := m.session.BeginApply(0, 1)
	require.NoError(t, err)

	next, _ := m.Update(applyFinishedMsg{
		splitIdx: 0,
		stepIdx:  1,
		errMsg:   "row is locked",
	})
	m = next.(Model)

	assert.Equal(t, plan.StateApproved, m.session.StateOf(0, 1))
	assert.Contains(t, m.status, "row is locked")

	// The failure also sticks to the step itself until the next attempt.
	require.Len(t, m.view.Splits, 1)
	failed := m.view.Splits[0].Steps[1]
	assert.True(t, failed.HasError())
	assert.Equal(t, "row is locked", failed.Error)
}

func TestModelQuit(t *testing.T) {
	m := newModel(Config{Session: testSession(t)})

	next, cmd := m.Update(keyMsg("q"))
	m = next.(Model)

	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
