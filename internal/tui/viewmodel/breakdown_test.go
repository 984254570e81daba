package viewmodel

import (
	"testing"

	"github.com/Veraticus/splitflow/internal/bucket"
	"github.com/Veraticus/splitflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBreakdownView(t *testing.T) {
	header := bucket.Row{Section: model.SectionWeekly, GroupID: "g1", IsGroupHeader: true,
		Brand: "Acme Hops", Discount: "20%", VendorContrib: "60%"}
	monday := bucket.Row{Section: model.SectionWeekly, GroupID: "g1", Weekday: "Monday",
		Brand: "Acme Hops", Discount: "20%"}
	thursday := bucket.Row{Section: model.SectionWeekly, GroupID: "g1", Weekday: "Thursday",
		Brand: "Acme Hops", Discount: "20%"}
	unscheduled := bucket.Row{Section: model.SectionWeekly, Brand: "Lost Lager"}
	monthly := bucket.Row{Section: model.SectionMonthly, Brand: "Big Monthly", MISID: "MON42"}

	b, err := bucket.Build([]bucket.Row{header, monday, thursday, unscheduled, monthly})
	require.NoError(t, err)

	view := BuildBreakdownView(b)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "Monday", view.Days[0].Day)
	assert.True(t, view.Days[0].Collapsed)
	assert.Len(t, view.Days[0].Entries, 3)

	thu := view.Days[3]
	require.Len(t, thu.Entries, 1)
	assert.True(t, thu.Entries[0].Reference)
	assert.Equal(t, "First instance: Monday", thu.Entries[0].Annotation())

	require.Len(t, view.Unscheduled, 1)
	assert.Contains(t, view.Unscheduled[0].Label, "Lost Lager")

	require.Len(t, view.Tail, 1)
	assert.Contains(t, view.Tail[0].Label, "MON42")

	// Non-reference entries carry no annotation.
	assert.Empty(t, view.Days[0].Entries[0].Annotation())
}

func TestRowLabelParsesIdentifierCells(t *testing.T) {
	// Tagged multi-ID cells render one badge per identifier, tags kept.
	row := bucket.Row{Section: model.SectionWeekly, Brand: "Acme Hops",
		MISID: "W1:PART111\nW2:PART222"}
	label := rowLabel(row)
	assert.Contains(t, label, "[W1:PART111]")
	assert.Contains(t, label, "[W2:PART222]")

	// Placeholder cells render no badge at all.
	assert.NotContains(t, rowLabel(bucket.Row{Brand: "Lost Lager", MISID: "-"}), "[")
	assert.Empty(t, MISIDBadges("N/A"))

	// Legacy comma cells split into individual badges.
	assert.Equal(t, []string{"AAA111", "BBB222"}, MISIDBadges("AAA111, BBB222"))
}

func TestDayView_Empty(t *testing.T) {
	assert.True(t, DayView{Day: "Sunday"}.Empty())
	assert.False(t, DayView{Notes: []string{"n"}}.Empty())
}
