package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/splitflow/internal/cli"
	"github.com/Veraticus/splitflow/internal/tui/viewmodel"
)

// View renders the whole review screen from the current view model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(cli.FormatTitle(fmt.Sprintf("Split planning: %s", m.view.Tab)))
	b.WriteString("\n")
	b.WriteString(cli.SubtleStyle.Render(fmt.Sprintf(
		"%s | weekly %d, monthly %d, sale %d | %d splits required, %d clean",
		m.view.Summary.DateContext,
		m.view.Summary.Weekly,
		m.view.Summary.Monthly,
		m.view.Summary.Sale,
		m.view.Summary.SplitsRequired,
		m.view.Summary.NoConflict,
	)))
	b.WriteString("\n\n")

	if !m.view.HasSplits() {
		b.WriteString(cli.FormatSuccess("No splits required for this tab."))
		b.WriteString("\n")
		return b.String()
	}

	row := 0
	for _, split := range m.view.Splits {
		b.WriteString(m.renderSplitHeader(split))
		for _, step := range split.Steps {
			selected := row == m.cursor
			b.WriteString(m.renderStep(step, selected))
			row++
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(cli.InfoStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(cli.SubtleStyle.Render("j/k move  i edit ID  enter approve  a apply  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderSplitHeader(split viewmodel.SplitView) string {
	header := fmt.Sprintf("%s (%s, row %d) %s",
		split.Brand, split.Weekday, split.GoogleRow, split.ConflictLabel)
	if split.InterruptingDeal != "" {
		header += " vs " + split.InterruptingDeal
	}
	return cli.BoldStyle.Render(header) + "\n"
}

func (m Model) renderStep(step viewmodel.StepView, selected bool) string {
	cursor := "  "
	if selected {
		cursor = cli.PromptStyle.Render("> ")
	}

	line := fmt.Sprintf("%-16s %-16s", step.ActionLabel, step.Dates)

	switch {
	case step.ShowsBadge():
		line += cli.BadgeStyle.Render("[" + step.ID + "]")
		if step.Phase == viewmodel.PhaseApplied {
			line += " " + cli.SuccessStyle.Render(step.ApplyLabel())
		}
	case step.Phase == viewmodel.PhaseFromSheet:
		line += cli.SubtleStyle.Render(step.ID)
	case selected && m.editing:
		line += m.input.View()
	case step.Input != "":
		line += step.Input + "  " + m.renderApplyControl(step)
	default:
		line += cli.SubtleStyle.Render("<no ID>") + "  " + m.renderApplyControl(step)
	}

	if step.HasError() {
		line += "  " + cli.ErrorStyle.Render(step.Error)
	}

	return cursor + line + "\n"
}

func (m Model) renderApplyControl(step viewmodel.StepView) string {
	label := "[" + step.ApplyLabel() + "]"
	if step.CanApply() {
		return cli.SuccessStyle.Render(label)
	}
	return cli.SubtleStyle.Render(label)
}
