package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeActivities_SlotCounts(t *testing.T) {
	full := []Activity{
		{Time: SlotMorning, Name: "Market", Description: "Walk the market"},
		{Time: SlotLunch, Name: "Tapas", Description: "Tapas bar"},
		{Time: SlotAfternoon, Name: "Museum", Description: "Prado"},
		{Time: SlotDinner, Name: "Paella", Description: "Seafood"},
		{Time: SlotAdditional, Name: "Flamenco", Description: "Show"},
	}

	cases := []struct {
		name string
		in   []Activity
	}{
		{"zero slots", nil},
		{"three slots", []Activity{full[4], full[0], full[2]}},
		{"five slots", full},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeActivities(tc.in, nil)
			require.Len(t, got, 5)
			for i, slot := range CanonicalSlots {
				assert.Equal(t, slot, got[i].Time)
				assert.NotEmpty(t, got[i].Description)
			}
		})
	}
}

func TestNormalizeActivities_FallbackBeforePlaceholder(t *testing.T) {
	prev := []Activity{{Time: SlotDinner, Name: "Old dinner", Description: "Keep me"}}
	got := NormalizeActivities([]Activity{{Time: SlotMorning, Name: "New", Description: "fresh"}}, prev)

	assert.Equal(t, "fresh", got[0].Description)
	assert.Equal(t, "Keep me", got[3].Description)
	assert.Equal(t, PlaceholderActivity, got[1].Description)
}

func TestNormalizeActivities_BlankEntryDoesNotShadowFallback(t *testing.T) {
	prev := []Activity{{Time: SlotLunch, Name: "Cafe", Description: "Old lunch"}}
	got := NormalizeActivities([]Activity{{Time: SlotLunch}}, prev)
	assert.Equal(t, "Old lunch", got[1].Description)
}

func TestProposal_RenumberAndNights(t *testing.T) {
	p := Proposal{Days: []Day{{Number: 7}, {Number: 2}, {Number: 2}}}
	p.Renumber()
	for i, d := range p.Days {
		assert.Equal(t, i+1, d.Number)
	}
	assert.Equal(t, 2, p.Nights())
	assert.Equal(t, 0, (&Proposal{}).Nights())
}

func TestProposal_CloneIsDeep(t *testing.T) {
	p := Proposal{Days: []Day{{ID: "d1", Activities: NormalizeActivities(nil, nil)}}}
	c := p.Clone()
	c.Days[0].Activities[0].Description = "changed"
	c.Days[0].Title = "changed"

	assert.Equal(t, PlaceholderActivity, p.Days[0].Activities[0].Description)
	assert.Empty(t, p.Days[0].Title)
}

func TestParseTimeSlot(t *testing.T) {
	slot, ok := ParseTimeSlot(" lunch ")
	require.True(t, ok)
	assert.Equal(t, SlotLunch, slot)

	_, ok = ParseTimeSlot("brunch")
	assert.False(t, ok)
	assert.Equal(t, -1, SlotIndex("Brunch"))
	assert.Equal(t, 4, SlotIndex(SlotAdditional))
}
