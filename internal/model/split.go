package model

// StepAction identifies what kind of MIS entry a plan step produces.
type StepAction string

// Plan step action constants.
const (
	ActionCreatePart1 StepAction = "CREATE_PART1"
	ActionGap         StepAction = "GAP"
	ActionPatch       StepAction = "PATCH"
	ActionCreatePart2 StepAction = "CREATE_PART2"
)

// ConflictType describes how an interrupting deal overlaps a weekly deal.
type ConflictType string

// Conflict type constants.
const (
	ConflictFull            ConflictType = "FULL"
	ConflictLocationPartial ConflictType = "LOCATION_PARTIAL"
)

// PlanStep is one row of the MIS entry plan for a split. Steps are immutable
// once ingested; approval state is tracked in the session, never on the step.
type PlanStep struct {
	Action        StepAction `json:"action"`
	Dates         string     `json:"dates"` // single date or "MM/DD - MM/DD"
	Discount      string     `json:"discount"`
	VendorContrib string     `json:"vendor_contrib"`
	Locations     string     `json:"locations"`
	Notes         string     `json:"notes,omitempty"`
}

// SectionIDs holds the identifiers already recorded in the sheet for one
// section of a split, as pre-grouped by the backend.
type SectionIDs struct {
	Parts []string `json:"parts"`
	Patch string   `json:"patch,omitempty"`
}

// SplitItem represents one weekly deal that needs to be divided into
// multiple MIS entries because a monthly or sale deal interrupts it.
type SplitItem struct {
	Brand            string                 `json:"brand"`
	Weekday          string                 `json:"weekday"`
	Discount         string                 `json:"discount"`
	VendorContrib    string                 `json:"vendor_contrib"`
	Locations        string                 `json:"locations"`
	GoogleRow        int                    `json:"google_row"`
	ConflictType     ConflictType           `json:"conflict_type"`
	InterruptingDeal *Deal                  `json:"interrupting_deal,omitempty"`
	Plan             []PlanStep             `json:"plan"`
	ParsedMISIDs     map[Section]SectionIDs `json:"parsed_mis_ids,omitempty"`
}

// PartID returns the already-known identifier for the given part number of the
// weekly section, if the sheet recorded one. Part numbers start at 1.
func (s SplitItem) PartID(part int) (string, bool) {
	ids, ok := s.ParsedMISIDs[SectionWeekly]
	if !ok || part < 1 || part > len(ids.Parts) {
		return "", false
	}
	if ids.Parts[part-1] == "" {
		return "", false
	}
	return ids.Parts[part-1], true
}

// PatchID returns the already-known patch identifier for the weekly section.
func (s SplitItem) PatchID() (string, bool) {
	ids, ok := s.ParsedMISIDs[SectionWeekly]
	if !ok || ids.Patch == "" {
		return "", false
	}
	return ids.Patch, true
}

// GapID returns the interrupting deal's identifier, if known.
func (s SplitItem) GapID() (string, bool) {
	if s.InterruptingDeal == nil || s.InterruptingDeal.MISID == "" {
		return "", false
	}
	return s.InterruptingDeal.MISID, true
}
