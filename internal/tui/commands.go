package tui

import (
	"context"
	"time"

	"github.com/Veraticus/splitflow/internal/api"
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/Veraticus/splitflow/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// applyCmd issues the apply call for one approved step and reports back.
// The session already moved the step to StateApplying, so a second apply
// cannot start while this command is in flight.
func (m Model) applyCmd(ref stepRef, kind model.StepKind, approved model.ApprovedID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()

		resp, err := m.client.ApplySplitID(ctx, api.ApplySplitIDRequest{
			GoogleRow: approved.GoogleRow,
			NewMISID:  approved.MISID,
			Tag:       string(kind),
			Append:    true,
		})

		msg := applyFinishedMsg{splitIdx: ref.splitIdx, stepIdx: ref.stepIdx}
		switch {
		case err != nil:
			msg.errMsg = err.Error()
		case resp.Failed():
			msg.errMsg = resp.ErrorMessage()
		default:
			msg.success = true
			msg.newValue = resp.NewValue
		}

		m.recordApply(ref, kind, approved, msg)
		return msg
	}
}

// recordApply appends the attempt to the local audit trail. Failures to
// record never affect the apply outcome.
func (m Model) recordApply(ref stepRef, kind model.StepKind, approved model.ApprovedID, msg applyFinishedMsg) {
	if m.storage == nil {
		return
	}

	outcome := service.OutcomeFailure
	if msg.success {
		outcome = service.OutcomeSuccess
	}
	key := model.StepKey{Kind: kind, SplitIndex: ref.splitIdx, StepIndex: ref.stepIdx}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = m.storage.RecordApply(ctx, service.ApplyRecord{
		StepKey:   key.String(),
		GoogleRow: approved.GoogleRow,
		Tag:       string(kind),
		MISID:     approved.MISID,
		Outcome:   outcome,
		Detail:    msg.errMsg,
		AppliedAt: time.Now().UTC(),
	})
}
