package cli

import (
	"testing"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditCmd_StructuralEditsSavedOnQuit(t *testing.T) {
	app := testApp(t, testutil.NewScriptedClient(testutil.DayResponse(3, "Food crawl")))
	j := seedJourney(t, app, testutil.WithDays(3))

	out, err := executeCmd(t, app, "add\nmove 4 1\nrefine 3 more street food\nquit\n", "edit", j.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Added an unplanned day.")
	assert.Contains(t, out, "Moved day 4 to position 1.")
	assert.Contains(t, out, "Day 3: Food crawl")

	saved := stored(t, app, j.ID)
	days := saved.Proposals[0].Days
	require.Len(t, days, 4)
	assert.True(t, days[0].IsPlaceholder())
	assert.Equal(t, "Food crawl", days[2].Title)
	assert.Equal(t, j.Proposals[0].Days[1].ID, days[2].ID)
	assert.Equal(t, 3, saved.PreferredDuration)
}

func TestEditCmd_EndOfInputSaves(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app, testutil.WithDays(2))

	_, err := executeCmd(t, app, "delete 2", "edit", j.ID)
	require.NoError(t, err)
	assert.Len(t, stored(t, app, j.ID).Proposals[0].Days, 1)
}

func TestEditCmd_RefusalsAndErrors(t *testing.T) {
	tests := []struct {
		name  string
		style domain.TravelStyle
		input string
		want  string
	}{
		{"fixed first day", domain.StyleDriving, "delete 1\nquit\n", "cannot be deleted"},
		{"move a fixed day", domain.StyleRVTrip, "move 1 2\nquit\n", "not allowed"},
		{"day out of range", domain.StyleDestination, "show 9\nquit\n", "day 9 is out of range"},
		{"unknown slot", domain.StyleDestination, "slot 1 brunch eggs\nquit\n", "unknown slot"},
		{"model disabled", domain.StyleDestination, "lucky 1\nquit\n", "LLM is disabled"},
		{"unknown command", domain.StyleDestination, "dance\nquit\n", "unknown command"},
		{"usage", domain.StyleDestination, "move 1\nquit\n", "usage: move FROM TO"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := testApp(t, nil)
			j := seedJourney(t, app, testutil.WithStyle(tc.style), testutil.WithDays(4))

			out, err := executeCmd(t, app, tc.input, "edit", j.ID)
			require.NoError(t, err)
			assert.Contains(t, out, tc.want)
		})
	}
}

func TestEditCmd_ConfirmBlocksEdits(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app, testutil.WithDays(3))

	out, err := executeCmd(t, app, "confirm\nadd\nreopen\nadd\nquit\n", "edit", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Itinerary confirmed.")
	assert.Contains(t, out, "Cannot add days to a confirmed journey.")
	assert.Contains(t, out, "Reopened for planning.")

	saved := stored(t, app, j.ID)
	assert.Equal(t, domain.JourneyPlanning, saved.Status)
	assert.Len(t, saved.Proposals[0].Days, 4)
}

func TestEditCmd_SlotAndInsert(t *testing.T) {
	client := testutil.NewScriptedClient(
		"Pasteis at [Manteigaria](https://example.com/m).",
		testutil.DayResponse(3, "Sintra"),
	)
	app := testApp(t, client)
	j := seedJourney(t, app, testutil.WithDays(4))

	out, err := executeCmd(t, app, "slot 1 lunch pastries\ninsert 2\nsave\nstatus\nquit\n", "edit", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Pasteis at [Manteigaria]")
	assert.Contains(t, out, "Saved.")
	assert.Contains(t, out, "saved")

	days := stored(t, app, j.ID).Proposals[0].Days
	require.Len(t, days, 5)
	lunch, ok := days[0].Activity(domain.SlotLunch)
	require.True(t, ok)
	assert.Equal(t, "Pasteis at Manteigaria", lunch.Name)
	assert.Equal(t, j.Proposals[0].Days[1].Activities[0], days[1].Activities[0])
	assert.Equal(t, domain.PlaceholderDayTitle, days[2].Title)
}

func TestEditCmd_GenerateAndSelect(t *testing.T) {
	response := testutil.DayResponse(1, "A") + testutil.DayResponse(2, "B")
	app := testApp(t, testutil.NewScriptedClient(response))
	j := seedJourney(t, app, testutil.WithDays(2))

	out, err := executeCmd(t, app, "generate\nproposals\nselect 1\nquit\n", "edit", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Switched proposal.")

	saved := stored(t, app, j.ID)
	require.Len(t, saved.Proposals, 2)
	assert.Equal(t, j.Proposals[0].ID, saved.ActiveProposalID)
}
