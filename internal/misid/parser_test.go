package misid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell_TaggedFormat(t *testing.T) {
	tokens := ParseCell("W1:ABC123\nW2:XYZ789")
	require.Len(t, tokens, 2)

	assert.Equal(t, "W1:ABC123", tokens[0].Display)
	assert.Equal(t, "ABC123", tokens[0].Lookup)
	assert.Equal(t, "W", tokens[0].Section)
	assert.Equal(t, SlotPart1, tokens[0].Slot)
	assert.True(t, tokens[0].Tagged())

	assert.Equal(t, "W2:XYZ789", tokens[1].Display)
	assert.Equal(t, "XYZ789", tokens[1].Lookup)
	assert.Equal(t, SlotPart2, tokens[1].Slot)
}

func TestParseCell_LegacyFormat(t *testing.T) {
	tokens := ParseCell("ABC123, XYZ789")
	require.Len(t, tokens, 2)

	for i, want := range []string{"ABC123", "XYZ789"} {
		assert.Equal(t, want, tokens[i].Lookup)
		assert.Equal(t, want, tokens[i].Display, "legacy tokens display their lookup value")
		assert.False(t, tokens[i].Tagged())
	}
}

func TestParseCell_NewlineWinsOverComma(t *testing.T) {
	// A tagged cell may contain commas inside notes-ish junk; the presence of
	// any newline selects the tagged format.
	tokens := ParseCell("WP:PATCH1\nW2:NEXT,2")
	require.Len(t, tokens, 2)
	assert.Equal(t, "PATCH1", tokens[0].Lookup)
	assert.Equal(t, SlotPatch, tokens[0].Slot)
	assert.Equal(t, "NEXT,2", tokens[1].Lookup)
}

func TestParseCell_Placeholders(t *testing.T) {
	for _, raw := range []string{"", "-", "N/A", "n/a", "   "} {
		assert.Nil(t, ParseCell(raw), "input %q", raw)
		assert.True(t, IsPlaceholder(raw), "input %q", raw)
	}
}

func TestParseCell_SkipsEmptySegments(t *testing.T) {
	tokens := ParseCell("ABC123,, XYZ789,")
	require.Len(t, tokens, 2)
	assert.Equal(t, "ABC123", tokens[0].Lookup)
	assert.Equal(t, "XYZ789", tokens[1].Lookup)
}

func TestStripTag(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "weekly part1", input: "W1:ABC123", want: "ABC123"},
		{name: "weekly patch", input: "WP:ABC123", want: "ABC123"},
		{name: "monthly part1", input: "M1:ABC123", want: "ABC123"},
		{name: "sale patch", input: "SP:ABC123", want: "ABC123"},
		{name: "lowercase tag", input: "w1:ABC123", want: "ABC123"},
		{name: "untagged", input: "ABC123", want: "ABC123"},
		{name: "unknown letter", input: "X1:ABC123", want: "X1:ABC123"},
		{name: "unknown slot", input: "W9:ABC123", want: "W9:ABC123"},
		{name: "colon in wrong spot", input: "WEEK:ABC123", want: "WEEK:ABC123"},
		{name: "surrounding spaces", input: "  W2:XYZ789  ", want: "XYZ789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTag(tt.input))
		})
	}
}

func TestStripTag_Idempotent(t *testing.T) {
	inputs := []string{"W1:ABC123", "ABC123", "MP:99-X", "", "-", "WEEK:ABC"}
	for _, s := range inputs {
		once := StripTag(s)
		assert.Equal(t, once, StripTag(once), "input %q", s)
	}
}
