package model

import "fmt"

// Summary holds the per-section deal counts reported by a planning run.
type Summary struct {
	WeeklyCount  int `json:"weekly_count"`
	MonthlyCount int `json:"monthly_count"`
	SaleCount    int `json:"sale_count"`
}

// SplitPlan is the result of one planning run for a sheet tab. It is replaced
// wholesale on each re-run and lives only in memory.
type SplitPlan struct {
	DateContext    string            `json:"date_context"`
	Summary        Summary           `json:"summary"`
	SplitsRequired []SplitItem       `json:"splits_required"`
	NoConflict     []Deal            `json:"no_conflict"`
	CategoryList   []string          `json:"category_list,omitempty"`
	BrandList      []string          `json:"brand_list,omitempty"`
	BrandLinkedMap map[string]string `json:"brand_linked_map,omitempty"`
}

// StepKind distinguishes the three approval namespaces of the apply workflow.
type StepKind string

// Step kind constants. The values double as the backend tag sent with apply.
const (
	KindPart2 StepKind = "part2"
	KindGap   StepKind = "gap"
	KindPatch StepKind = "patch"
)

// StepKey addresses one approvable plan step within the current plan.
type StepKey struct {
	Kind       StepKind
	SplitIndex int
	StepIndex  int
}

// String renders the composite key form used in logs and the audit trail.
func (k StepKey) String() string {
	return fmt.Sprintf("%s-%d-%d", k.Kind, k.SplitIndex, k.StepIndex)
}

// ApprovedID is an ephemeral record of a user-approved identifier, held only
// until the apply for its step succeeds.
type ApprovedID struct {
	MISID     string
	GoogleRow int
}
