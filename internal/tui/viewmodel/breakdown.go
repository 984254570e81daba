package viewmodel

import (
	"fmt"

	"github.com/Veraticus/splitflow/internal/bucket"
	"github.com/Veraticus/splitflow/internal/misid"
)

// EntryView represents one row in a weekday bucket.
type EntryView struct {
	Label         string
	FirstInstance string
	Reference     bool
}

// Annotation returns the extra text shown next to a reference entry.
func (ev EntryView) Annotation() string {
	if !ev.Reference {
		return ""
	}
	return "First instance: " + ev.FirstInstance
}

// DayView represents one collapsible weekday section.
type DayView struct {
	Day       string
	Notes     []string
	Entries   []EntryView
	Collapsed bool
}

// Empty returns true if the day has nothing to show.
func (dv DayView) Empty() bool {
	return len(dv.Entries) == 0 && len(dv.Notes) == 0
}

// BreakdownView represents the weekday breakdown of the weekly section.
type BreakdownView struct {
	Days        []DayView
	Unscheduled []EntryView
	Tail        []EntryView
}

// rowLabel builds the one-line display form of a table row. MIS identifier
// cells may hold several tagged IDs; each renders as its own badge with the
// tag kept.
func rowLabel(row bucket.Row) string {
	label := row.Brand
	if row.Discount != "" {
		label += "  " + row.Discount
	}
	if row.VendorContrib != "" {
		label += fmt.Sprintf("  (vendor %s)", row.VendorContrib)
	}
	for _, badge := range MISIDBadges(row.MISID) {
		label += "  [" + badge + "]"
	}
	return label
}

// MISIDBadges parses a raw identifier cell into display badges. Placeholder
// cells yield none.
func MISIDBadges(raw string) []string {
	tokens := misid.ParseCell(raw)
	if len(tokens) == 0 {
		return nil
	}
	badges := make([]string, 0, len(tokens))
	for _, token := range tokens {
		badges = append(badges, token.Display)
	}
	return badges
}

// BuildBreakdownView derives the breakdown view from a bucketization result.
func BuildBreakdownView(b *bucket.Breakdown) BreakdownView {
	view := BreakdownView{}

	for _, bkt := range b.Buckets {
		day := DayView{
			Day:       bkt.Day,
			Notes:     bkt.Notes,
			Collapsed: bkt.Collapsed,
		}
		for _, entry := range bkt.References {
			day.Entries = append(day.Entries, EntryView{
				Label:         rowLabel(entry.Row),
				Reference:     true,
				FirstInstance: entry.FirstInstance,
			})
		}
		for _, entry := range bkt.Rows {
			day.Entries = append(day.Entries, EntryView{Label: rowLabel(entry.Row)})
		}
		view.Days = append(view.Days, day)
	}

	for _, row := range b.Unscheduled {
		view.Unscheduled = append(view.Unscheduled, EntryView{Label: rowLabel(row)})
	}
	for _, row := range b.Tail {
		view.Tail = append(view.Tail, EntryView{Label: rowLabel(row)})
	}

	return view
}
