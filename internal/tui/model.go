// Package tui implements the interactive split review flow.
package tui

import (
	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/common"
	"github.com/Veraticus/splitflow/internal/plan"
	"github.com/Veraticus/splitflow/internal/service"
	"github.com/Veraticus/splitflow/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Config holds the dependencies for the review TUI.
type Config struct {
	Session *plan.Session
	Client  *api.Client
	Storage service.Storage
}

// stepRef addresses one step row in the flattened navigation order.
type stepRef struct {
	splitIdx int
	stepIdx  int
}

// Model holds the review TUI state. All rendering derives from the view
// model, which in turn derives from the session; the model itself only
// tracks navigation and input focus.
type Model struct {
	session   *plan.Session
	client    *api.Client
	storage   service.Storage
	view      viewmodel.PlanView
	positions []stepRef
	input     textinput.Model
	status    string
	cursor    int
	width     int
	height    int
	editing   bool
	quitting  bool
}

func newModel(cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "MIS ID"
	input.CharLimit = 64
	input.Width = 24

	m := Model{
		session: cfg.Session,
		client:  cfg.Client,
		storage: cfg.Storage,
		input:   input,
	}
	m.refresh()
	return m
}

// refresh rebuilds the view model and navigation order from the session.
func (m *Model) refresh() {
	m.view = viewmodel.BuildPlanView(m.session)

	m.positions = m.positions[:0]
	for _, split := range m.view.Splits {
		for _, step := range split.Steps {
			m.positions = append(m.positions, stepRef{splitIdx: split.Index, stepIdx: step.Index})
		}
	}
	if m.cursor >= len(m.positions) {
		m.cursor = len(m.positions) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// current returns the step under the cursor.
func (m Model) current() (stepRef, bool) {
	if len(m.positions) == 0 {
		return stepRef{}, false
	}
	return m.positions[m.cursor], true
}

// currentStepView resolves the cursor to its view data.
func (m Model) currentStepView() (viewmodel.StepView, bool) {
	ref, ok := m.current()
	if !ok {
		return viewmodel.StepView{}, false
	}
	for _, split := range m.view.Splits {
		if split.Index != ref.splitIdx {
			continue
		}
		for _, step := range split.Steps {
			if step.Index == ref.stepIdx {
				return step, true
			}
		}
	}
	return viewmodel.StepView{}, false
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case applyFinishedMsg:
		detail := msg.newValue
		if !msg.success {
			detail = msg.errMsg
		}
		m.session.FinishApply(msg.splitIdx, msg.stepIdx, msg.success, detail)
		m.refresh()
		if msg.success {
			m.status = "Applied " + msg.newValue
		} else {
			m.status = "Apply failed: " + msg.errMsg
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.positions)-1 {
			m.cursor++
		}

	case "enter", "i":
		step, ok := m.currentStepView()
		if !ok || !step.CanApprove() {
			return m, nil
		}
		m.editing = true
		m.input.SetValue(step.Input)
		m.input.Focus()
		return m, textinput.Blink

	case "a":
		return m.startApply()
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil

	case "enter":
		ref, ok := m.current()
		if !ok {
			m.editing = false
			return m, nil
		}
		if err := m.session.Approve(ref.splitIdx, ref.stepIdx, m.input.Value()); err != nil {
			m.status = common.UserMessage(err)
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		m.status = "Approved; press a to apply"
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startApply begins the apply for the step under the cursor. Preconditions
// are enforced by the session, so an unapproved or in-flight step never
// produces a network call.
func (m Model) startApply() (tea.Model, tea.Cmd) {
	ref, ok := m.current()
	if !ok {
		return m, nil
	}

	approved, err := m.session.BeginApply(ref.splitIdx, ref.stepIdx)
	if err != nil {
		m.status = common.UserMessage(err)
		return m, nil
	}

	key, _ := m.session.KeyFor(ref.splitIdx, ref.stepIdx)
	m.refresh()
	m.status = "Applying " + approved.MISID + "..."
	return m, m.applyCmd(ref, key.Kind, approved)
}
