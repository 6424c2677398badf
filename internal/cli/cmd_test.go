package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/itinera/internal/autosave"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/alexanderramin/itinera/internal/service"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// testApp wires a full App backed by an in-memory DB. A nil client leaves
// the LLM disabled.
func testApp(t *testing.T, client *testutil.ScriptedClient) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteJourneyRepo(database, testutil.NewTestUoW(database))

	app := &App{
		LLMConfig: llm.DefaultConfig(),
		Identity:  domain.Identity{UserID: "tester", Role: "user"},
		Autosave:  autosave.Options{Clock: testutil.NewFakeClock()},
		Now:       func() time.Time { return testNow },
	}
	var proposals service.ProposalService
	if client != nil {
		proposals = service.NewProposalService(client, service.ProposalOptions{})
		app.Proposals = proposals
		app.LLM = client
		app.LLMConfig.Enabled = true
	}
	app.Journeys = service.NewJourneyService(repo, proposals)
	return app
}

// seedJourney stores a Lisbon journey with the given fixture options.
func seedJourney(t *testing.T, app *App, opts ...testutil.JourneyOption) *domain.Journey {
	t.Helper()
	j := testutil.NewTestJourney(opts...)
	require.NoError(t, app.Journeys.Create(context.Background(), j, app.Identity))
	return j
}

// executeCmd runs a cobra command with the given stdin and captures output.
func executeCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func stored(t *testing.T, app *App, id string) *domain.Journey {
	t.Helper()
	j, err := app.Journeys.GetByID(context.Background(), id)
	require.NoError(t, err)
	return j
}

func TestNewCmd_CreatesJourneyFromFlags(t *testing.T) {
	app := testApp(t, nil)

	out, err := executeCmd(t, app, "", "new",
		"--destination", "Kyoto", "--nights", "4", "--travelers", "2",
		"--interests", "Food, temples", "--start", "2026-04-02", "--budget", "luxury")
	require.NoError(t, err)
	assert.Contains(t, out, "Created journey Trip to Kyoto")

	journeys, err := app.Journeys.List(context.Background(), "tester")
	require.NoError(t, err)
	require.Len(t, journeys, 1)
	j := journeys[0]
	assert.Equal(t, 4, j.PreferredDuration)
	assert.Equal(t, 2, j.Travelers)
	assert.Equal(t, domain.BudgetLuxury, j.Budget)
	assert.Equal(t, []string{"food", "temples"}, j.Interests)
	require.NotNil(t, j.StartDate)
	assert.Equal(t, "2026-04-02", j.StartDate.Format(dateLayout))
}

func TestNewCmd_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing destination", []string{"new"}, "destination is required"},
		{"road trip without origin", []string{"new", "--destination", "Porto", "--style", "motorcycle"}, "origin is required"},
		{"bad start date", []string{"new", "--destination", "Porto", "--start", "soon"}, "invalid start date"},
		{"form without terminal", []string{"new", "--interactive"}, "needs a terminal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := executeCmd(t, testApp(t, nil), "", tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewCmd_GenerateRightAway(t *testing.T) {
	app := testApp(t, testutil.NewScriptedClient(
		testutil.DayResponse(1, "Arrival")+testutil.DayResponse(2, "Departure")))

	out, err := executeCmd(t, app, "", "new", "--destination", "Lisbon", "--nights", "1", "--generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Day 1: Arrival")
	assert.Contains(t, out, "Day 2: Departure")
}

func TestListCmd(t *testing.T) {
	app := testApp(t, nil)
	seedJourney(t, app, testutil.WithDays(3))
	other := testutil.NewTestJourney()
	other.Name = "Someone else's trip"
	require.NoError(t, app.Journeys.Create(context.Background(), other, domain.Identity{UserID: "other"}))

	out, err := executeCmd(t, app, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lisbon getaway")
	assert.Contains(t, out, "Someone else's trip")

	out, err = executeCmd(t, app, "", "list", "--mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Lisbon getaway")
	assert.NotContains(t, out, "Someone else's trip")
}

func TestShowCmd_ResolvesPrefix(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app, testutil.WithDays(2))

	out, err := executeCmd(t, app, "", "show", j.ID[:6])
	require.NoError(t, err)
	assert.Contains(t, out, "LISBON GETAWAY")
	assert.Contains(t, out, "Day 2: Day 2 title")

	_, err = executeCmd(t, app, "", "show", "zzzz")
	assert.ErrorContains(t, err, "journey not found")
}

func TestDeleteCmd(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app)

	out, err := executeCmd(t, app, "n\n", "delete", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	stored(t, app, j.ID)

	out, err = executeCmd(t, app, "y\n", "delete", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted journey")
	_, err = app.Journeys.GetByID(context.Background(), j.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGenerateCmd(t *testing.T) {
	t.Run("llm disabled", func(t *testing.T) {
		app := testApp(t, nil)
		j := seedJourney(t, app)
		_, err := executeCmd(t, app, "", "generate", j.ID)
		assert.ErrorIs(t, err, errLLMDisabled)
	})

	t.Run("adds an active proposal", func(t *testing.T) {
		response := testutil.DayResponse(1, "Arrival") + testutil.DayResponse(2, "Alfama") + testutil.DayResponse(3, "Departure")
		app := testApp(t, testutil.NewScriptedClient(response))
		j := seedJourney(t, app, testutil.WithDays(3))

		out, err := executeCmd(t, app, "", "generate", j.ID)
		require.NoError(t, err)
		assert.Contains(t, out, "Day 2: Alfama")

		saved := stored(t, app, j.ID)
		require.Len(t, saved.Proposals, 2)
		assert.Equal(t, saved.Proposals[1].ID, saved.ActiveProposalID)
		assert.Equal(t, 2, saved.PreferredDuration)
	})

	t.Run("oracle failures suggest a retry", func(t *testing.T) {
		app := testApp(t, testutil.NewFailingClient(llm.ErrTimeout))
		j := seedJourney(t, app)
		_, err := executeCmd(t, app, "", "generate", j.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrOracle)
		assert.Contains(t, err.Error(), "try again")
	})
}

func TestConfirmAndReopenCmds(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app, testutil.WithDays(3))

	out, err := executeCmd(t, app, "", "confirm", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Confirmed Lisbon getaway.")
	saved := stored(t, app, j.ID)
	assert.Equal(t, domain.JourneyConfirmed, saved.Status)
	require.NotNil(t, saved.ConfirmedItinerary)

	out, err = executeCmd(t, app, "", "confirm", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to confirm")

	out, err = executeCmd(t, app, "", "reopen", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened")
	assert.Equal(t, domain.JourneyPlanning, stored(t, app, j.ID).Status)
}

func TestSelectCmd(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app, testutil.WithDays(2), testutil.WithDays(3))
	require.Equal(t, j.Proposals[1].ID, stored(t, app, j.ID).ActiveProposalID)

	out, err := executeCmd(t, app, "", "select", j.ID, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Switched")

	saved := stored(t, app, j.ID)
	assert.Equal(t, j.Proposals[0].ID, saved.ActiveProposalID)
	assert.Equal(t, 1, saved.PreferredDuration)

	_, err = executeCmd(t, app, "", "select", j.ID, "7")
	assert.ErrorContains(t, err, "proposal 7 is out of range")
}

func TestExportCmd(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app, testutil.WithDays(2))

	out, err := executeCmd(t, app, "", "export", j.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "# Lisbon getaway")
	assert.Contains(t, out, "## Day 2: Day 2 title")

	path := filepath.Join(t.TempDir(), "trip.ics")
	out, err = executeCmd(t, app, "", "export", j.ID, "--format", "ics", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	assert.Equal(t, 10, strings.Count(string(data), "BEGIN:VEVENT"))

	_, err = executeCmd(t, app, "", "export", j.ID, "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

type fixedZone struct {
	loc *time.Location
	err error
}

func (z fixedZone) TimeZone(context.Context, string) (*time.Location, error) { return z.loc, z.err }

func TestExportCmd_YAMLAndZones(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app, testutil.WithDays(2))

	out, err := executeCmd(t, app, "", "export", j.ID, "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "journey: Lisbon getaway")
	assert.Contains(t, out, "slot: Morning")

	app.Zones = fixedZone{loc: time.FixedZone("WET", 0)}
	out, err = executeCmd(t, app, "", "export", j.ID, "-f", "ics")
	require.NoError(t, err)
	assert.Contains(t, out, "X-WR-TIMEZONE:WET")

	app.Zones = fixedZone{err: errors.New("geocoder down")}
	out, err = executeCmd(t, app, "", "export", j.ID, "-f", "ics")
	require.NoError(t, err, "lookup failures fall back to the start date's zone")
	assert.NotContains(t, out, "X-WR-TIMEZONE")

	out, err = executeCmd(t, app, "", "export", j.ID, "-f", "ics", "--tz", "UTC")
	require.NoError(t, err)
	assert.Contains(t, out, "X-WR-TIMEZONE:UTC")

	_, err = executeCmd(t, app, "", "export", j.ID, "-f", "ics", "--tz", "Mars/Olympus")
	assert.ErrorContains(t, err, "unknown time zone")
}

func TestExportCmd_NothingToExport(t *testing.T) {
	app := testApp(t, nil)
	j := seedJourney(t, app)

	_, err := executeCmd(t, app, "", "export", j.ID)
	assert.Error(t, err)
}

func TestLLMStatusCmd(t *testing.T) {
	out, err := executeCmd(t, testApp(t, nil), "", "llm", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "ollama")
	assert.Contains(t, out, "disabled")

	out, err = executeCmd(t, testApp(t, testutil.NewScriptedClient("ok")), "", "llm", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "reachable")
	assert.NotContains(t, out, "unreachable")
}
