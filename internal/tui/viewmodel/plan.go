package viewmodel

import (
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/Veraticus/splitflow/internal/plan"
)

// SummaryView represents the planning summary line.
type SummaryView struct {
	DateContext    string
	Weekly         int
	Monthly        int
	Sale           int
	SplitsRequired int
	NoConflict     int
}

// SplitView represents one split item's display data.
type SplitView struct {
	Brand            string
	Weekday          string
	Discount         string
	VendorContrib    string
	Locations        string
	ConflictLabel    string
	InterruptingDeal string
	Steps            []StepView
	GoogleRow        int
	Index            int
}

// PlanView represents the whole split plan's display data.
type PlanView struct {
	Tab     string
	Summary SummaryView
	Splits  []SplitView
}

// HasSplits returns true if any deal needs splitting.
func (pv PlanView) HasSplits() bool {
	return len(pv.Splits) > 0
}

// conflictLabel maps a conflict type to its display label.
func conflictLabel(ct model.ConflictType) string {
	switch ct {
	case model.ConflictFull:
		return "Full conflict"
	case model.ConflictLocationPartial:
		return "Partial locations"
	default:
		return string(ct)
	}
}

// BuildPlanView derives the complete plan view from the session. Rendering
// is a pure function of this structure; nothing reads session state at draw
// time.
func BuildPlanView(session *plan.Session) PlanView {
	p := session.Plan()
	if p == nil {
		return PlanView{}
	}

	view := PlanView{
		Tab: session.Tab(),
		Summary: SummaryView{
			DateContext:    p.DateContext,
			Weekly:         p.Summary.WeeklyCount,
			Monthly:        p.Summary.MonthlyCount,
			Sale:           p.Summary.SaleCount,
			SplitsRequired: len(p.SplitsRequired),
			NoConflict:     len(p.NoConflict),
		},
	}

	for i, item := range p.SplitsRequired {
		split := SplitView{
			Index:         i,
			Brand:         item.Brand,
			Weekday:       item.Weekday,
			Discount:      item.Discount,
			VendorContrib: item.VendorContrib,
			Locations:     item.Locations,
			GoogleRow:     item.GoogleRow,
			ConflictLabel: conflictLabel(item.ConflictType),
		}
		if item.InterruptingDeal != nil {
			split.InterruptingDeal = item.InterruptingDeal.Brand
		}

		for j, step := range item.Plan {
			sv := StepView{
				Index:         j,
				ActionLabel:   actionLabel(step.Action),
				Dates:         step.Dates,
				Discount:      step.Discount,
				VendorContrib: step.VendorContrib,
				Locations:     step.Locations,
				Notes:         step.Notes,
				Phase:         phaseForState(session.StateOf(i, j)),
			}
			if id, ok := session.KnownID(i, j); ok && sv.ShowsBadge() {
				sv.ID = id
			}
			if sv.Phase == PhaseFromSheet {
				if id, ok := session.KnownID(i, j); ok {
					sv.ID = id
				} else {
					sv.ID = "From Sheet"
				}
			}
			if approved, ok := session.ApprovedID(i, j); ok && sv.ShowsInput() {
				sv.Input = approved.MISID
			}
			if errMsg, ok := session.LastApplyError(i, j); ok {
				sv.Error = errMsg
			}
			split.Steps = append(split.Steps, sv)
		}

		view.Splits = append(view.Splits, split)
	}

	return view
}
