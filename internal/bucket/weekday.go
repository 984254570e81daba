// Package bucket reorganizes weekly promotion rows into Monday-first weekday
// buckets for the breakdown view. It operates on row view-models, never on
// rendered output, and either produces a complete Breakdown or an error that
// enumerates every failed precondition.
package bucket

import (
	"fmt"
	"strings"

	"github.com/Veraticus/splitflow/internal/model"
)

// Row is one table row as the view layer knows it.
type Row struct {
	Section       model.Section
	Weekday       string
	GroupID       string // empty for ungrouped rows
	Brand         string
	Discount      string
	VendorContrib string
	Locations     string
	MISID         string
	IsGroupHeader bool
}

// Entry is one row placed in a bucket. Reference entries are de-emphasized
// clones of rows whose full group lives under an earlier weekday.
type Entry struct {
	Row           Row
	FirstInstance string // canonical weekday of the full group, for references
	Reference     bool
}

// Bucket holds one weekday's entries. Buckets start collapsed.
type Bucket struct {
	Day        string
	Notes      []string // shared group notes spanning this weekday
	References []Entry
	Rows       []Entry
	Collapsed  bool
}

// Empty returns true if the bucket has nothing to show.
func (b Bucket) Empty() bool {
	return len(b.Rows) == 0 && len(b.References) == 0
}

// Breakdown is the complete result of a bucketization.
type Breakdown struct {
	Buckets     []Bucket // always seven, Monday first
	Unscheduled []Row    // weekly rows with no usable weekday, kept visible
	Tail        []Row    // monthly/sale rows preserved verbatim after the buckets
}

// PrimaryCount returns the number of non-reference rows across all buckets,
// including unscheduled rows. It always equals the weekly input row count.
func (b *Breakdown) PrimaryCount() int {
	n := len(b.Unscheduled)
	for _, bucket := range b.Buckets {
		n += len(bucket.Rows)
	}
	return n
}

// BuildError reports which preconditions the input rows violated.
type BuildError struct {
	Problems []string
}

func (e *BuildError) Error() string {
	return "cannot build breakdown: " + strings.Join(e.Problems, "; ")
}

// Build partitions rows into weekday buckets. Group headers carry their full
// group under the group's first weekday in Monday-first order; every other
// weekday the group spans receives reference entries plus a shared note.
func Build(rows []Row) (*Breakdown, error) {
	var problems []string

	headers := make(map[string]Row)
	members := make(map[string][]Row)
	var groupOrder []string
	var singles []Row
	var tail []Row

	for _, row := range rows {
		if row.Section != model.SectionWeekly {
			tail = append(tail, row)
			continue
		}
		switch {
		case row.IsGroupHeader:
			if row.GroupID == "" {
				problems = append(problems, fmt.Sprintf("group header for %q has no group id", row.Brand))
				continue
			}
			if _, dup := headers[row.GroupID]; dup {
				problems = append(problems, fmt.Sprintf("group %q has more than one header", row.GroupID))
				continue
			}
			headers[row.GroupID] = row
			groupOrder = append(groupOrder, row.GroupID)
		case row.GroupID != "":
			members[row.GroupID] = append(members[row.GroupID], row)
		default:
			singles = append(singles, row)
		}
	}

	for groupID := range members {
		if _, ok := headers[groupID]; !ok {
			problems = append(problems, fmt.Sprintf("group %q has members but no header", groupID))
		}
	}
	for _, groupID := range groupOrder {
		if len(members[groupID]) == 0 {
			problems = append(problems, fmt.Sprintf("group %q has a header but no members", groupID))
		}
	}

	if len(problems) > 0 {
		return nil, &BuildError{Problems: problems}
	}

	breakdown := &Breakdown{
		Buckets: make([]Bucket, len(model.WeekdayOrder)),
		Tail:    tail,
	}
	for i, day := range model.WeekdayOrder {
		breakdown.Buckets[i] = Bucket{Day: day, Collapsed: true}
	}

	for _, groupID := range groupOrder {
		if err := placeGroup(breakdown, headers[groupID], members[groupID]); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return nil, &BuildError{Problems: problems}
	}

	for _, row := range singles {
		day, ok := model.NormalizeWeekday(row.Weekday)
		if !ok {
			breakdown.Unscheduled = append(breakdown.Unscheduled, row)
			continue
		}
		idx := model.WeekdayIndex(day)
		breakdown.Buckets[idx].Rows = append(breakdown.Buckets[idx].Rows, Entry{Row: row})
	}

	return breakdown, nil
}

// placeGroup assigns one grouped deal across the weekdays it spans.
func placeGroup(breakdown *Breakdown, header Row, groupMembers []Row) error {
	seen := make(map[string]bool)
	var spanned []string
	for _, member := range groupMembers {
		day, ok := model.NormalizeWeekday(member.Weekday)
		if !ok {
			return fmt.Errorf("group %q member has no usable weekday", header.GroupID)
		}
		if !seen[day] {
			seen[day] = true
			spanned = append(spanned, day)
		}
	}

	first, ok := model.FirstWeekday(spanned)
	if !ok {
		return fmt.Errorf("group %q spans no weekdays", header.GroupID)
	}

	note := groupNote(header, spanned)

	firstIdx := model.WeekdayIndex(first)
	breakdown.Buckets[firstIdx].Rows = append(breakdown.Buckets[firstIdx].Rows, Entry{Row: header})
	breakdown.Buckets[firstIdx].Notes = append(breakdown.Buckets[firstIdx].Notes, note)
	for _, member := range groupMembers {
		breakdown.Buckets[firstIdx].Rows = append(breakdown.Buckets[firstIdx].Rows, Entry{Row: member})
	}

	for _, day := range spanned {
		if day == first {
			continue
		}
		idx := model.WeekdayIndex(day)
		breakdown.Buckets[idx].Notes = append(breakdown.Buckets[idx].Notes, note)
		for _, member := range groupMembers {
			memberDay, _ := model.NormalizeWeekday(member.Weekday)
			if memberDay != day {
				continue
			}
			breakdown.Buckets[idx].References = append(breakdown.Buckets[idx].References, Entry{
				Row:           member,
				Reference:     true,
				FirstInstance: first,
			})
		}
	}

	return nil
}

// groupNote builds the shared note attached to every weekday a group spans.
func groupNote(header Row, spanned []string) string {
	ordered := make([]string, 0, len(spanned))
	for _, day := range model.WeekdayOrder {
		for _, s := range spanned {
			if s == day {
				ordered = append(ordered, model.WeekdayAbbrev(day))
			}
		}
	}
	return fmt.Sprintf("%s %s, vendor %s (%s)",
		header.Brand, header.Discount, header.VendorContrib, strings.Join(ordered, "/"))
}
