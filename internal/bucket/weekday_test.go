package bucket

import (
	"fmt"
	"testing"

	"github.com/Veraticus/splitflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklyRow(brand, weekday string) Row {
	return Row{
		Section:       model.SectionWeekly,
		Weekday:       weekday,
		Brand:         brand,
		Discount:      "15%",
		VendorContrib: "50%",
	}
}

func bucketFor(t *testing.T, b *Breakdown, day string) Bucket {
	t.Helper()
	idx := model.WeekdayIndex(day)
	require.GreaterOrEqual(t, idx, 0, "unknown day %s", day)
	return b.Buckets[idx]
}

func TestBuild_UngroupedRowsLandOnTheirWeekday(t *testing.T) {
	rows := []Row{
		weeklyRow("Acme Hops", "Wednesday"),
		weeklyRow("Quiet Cider", "Monday"),
		weeklyRow("Calm Kombucha", "Monday"),
	}

	b, err := Build(rows)
	require.NoError(t, err)

	monday := bucketFor(t, b, "Monday")
	require.Len(t, monday.Rows, 2)
	assert.Equal(t, "Quiet Cider", monday.Rows[0].Row.Brand)
	assert.Equal(t, "Calm Kombucha", monday.Rows[1].Row.Brand)

	wednesday := bucketFor(t, b, "Wednesday")
	require.Len(t, wednesday.Rows, 1)
	assert.Equal(t, "Acme Hops", wednesday.Rows[0].Row.Brand)

	assert.True(t, bucketFor(t, b, "Sunday").Empty())
}

func TestBuild_WeekdayCaseInsensitive(t *testing.T) {
	for _, spelled := range []string{"MONDAY", "monday", "Monday", " monday "} {
		b, err := Build([]Row{weeklyRow("Acme Hops", spelled)})
		require.NoError(t, err, "spelling %q", spelled)
		assert.Len(t, bucketFor(t, b, "Monday").Rows, 1, "spelling %q", spelled)
	}
}

func TestBuild_GroupFullContentUnderFirstWeekday(t *testing.T) {
	header := Row{Section: model.SectionWeekly, GroupID: "g1", IsGroupHeader: true,
		Brand: "Acme Hops", Discount: "20%", VendorContrib: "60%"}
	monday := weeklyRow("Acme Hops", "Monday")
	monday.GroupID = "g1"
	thursday := weeklyRow("Acme Hops", "THURSDAY")
	thursday.GroupID = "g1"

	b, err := Build([]Row{header, monday, thursday})
	require.NoError(t, err)

	// Full group (header + both members) under Monday.
	mon := bucketFor(t, b, "Monday")
	require.Len(t, mon.Rows, 3)
	assert.True(t, mon.Rows[0].Row.IsGroupHeader)
	assert.Empty(t, mon.References)

	// Thursday gets only a reference clone of its own member row.
	thu := bucketFor(t, b, "Thursday")
	assert.Empty(t, thu.Rows)
	require.Len(t, thu.References, 1)
	assert.True(t, thu.References[0].Reference)
	assert.Equal(t, "Monday", thu.References[0].FirstInstance)
	assert.Equal(t, "THURSDAY", thu.References[0].Row.Weekday)

	// The shared note lands on every spanned weekday.
	require.Len(t, mon.Notes, 1)
	require.Len(t, thu.Notes, 1)
	assert.Equal(t, mon.Notes[0], thu.Notes[0])
	assert.Contains(t, mon.Notes[0], "Acme Hops")
	assert.Contains(t, mon.Notes[0], "Mon/Thu")
}

func TestBuild_BucketCompleteness(t *testing.T) {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	var rows []Row
	for i := 0; i < 23; i++ {
		rows = append(rows, weeklyRow(fmt.Sprintf("Brand %d", i), days[i%len(days)]))
	}

	b, err := Build(rows)
	require.NoError(t, err)
	assert.Equal(t, len(rows), b.PrimaryCount())
	assert.Empty(t, b.Unscheduled)
}

func TestBuild_MissingWeekdayGoesToUnscheduled(t *testing.T) {
	rows := []Row{
		weeklyRow("Acme Hops", "Monday"),
		weeklyRow("Lost Lager", ""),
		weeklyRow("Dashed Stout", "-"),
	}

	b, err := Build(rows)
	require.NoError(t, err)

	// Rows without a weekday stay visible instead of being silently dropped.
	require.Len(t, b.Unscheduled, 2)
	assert.Equal(t, len(rows), b.PrimaryCount())
}

func TestBuild_MonthlySaleRowsPreservedVerbatim(t *testing.T) {
	monthly := Row{Section: model.SectionMonthly, Brand: "Big Monthly"}
	sale := Row{Section: model.SectionSale, Brand: "Flash Sale"}
	rows := []Row{weeklyRow("Acme Hops", "Friday"), monthly, sale}

	b, err := Build(rows)
	require.NoError(t, err)

	require.Len(t, b.Tail, 2)
	assert.Equal(t, "Big Monthly", b.Tail[0].Brand)
	assert.Equal(t, "Flash Sale", b.Tail[1].Brand)
}

func TestBuild_BucketsStartCollapsedMondayFirst(t *testing.T) {
	b, err := Build(nil)
	require.NoError(t, err)

	require.Len(t, b.Buckets, 7)
	assert.Equal(t, "Monday", b.Buckets[0].Day)
	assert.Equal(t, "Sunday", b.Buckets[6].Day)
	for _, bucket := range b.Buckets {
		assert.True(t, bucket.Collapsed)
	}
}

func TestBuild_PreconditionErrors(t *testing.T) {
	member := weeklyRow("Acme Hops", "Monday")
	member.GroupID = "orphan"

	headerOnly := Row{Section: model.SectionWeekly, GroupID: "empty", IsGroupHeader: true, Brand: "Solo"}

	_, err := Build([]Row{member, headerOnly})
	require.Error(t, err)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Len(t, buildErr.Problems, 2)
	assert.Contains(t, err.Error(), `"orphan" has members but no header`)
	assert.Contains(t, err.Error(), `"empty" has a header but no members`)
}

func TestBuild_GroupMemberWithoutWeekdayIsAnError(t *testing.T) {
	header := Row{Section: model.SectionWeekly, GroupID: "g1", IsGroupHeader: true, Brand: "Acme"}
	member := weeklyRow("Acme", "")
	member.GroupID = "g1"

	_, err := Build([]Row{header, member})
	require.Error(t, err)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, err.Error(), "no usable weekday")
}
