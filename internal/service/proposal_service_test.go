package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/planner"
	"github.com/alexanderramin/itinera/internal/prompt"
	"github.com/alexanderramin/itinera/internal/routing"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRouter struct {
	route *routing.Route
	err   error
	calls int
}

func (f *fakeRouter) GetDrivingRoute(context.Context, string, string, domain.TravelStyle) (*routing.Route, error) {
	f.calls++
	return f.route, f.err
}

func threeDayResponse() string {
	return "Here is your plan.\n\n" +
		testutil.DayResponse(1, "Arrival") +
		testutil.DayResponse(2, "Explore") +
		testutil.DayResponse(3, "Departure")
}

func TestGenerateProposal_InitialGeneration(t *testing.T) {
	client := testutil.NewScriptedClient(threeDayResponse())
	svc := NewProposalService(client, ProposalOptions{})
	j := testutil.NewTestJourney(testutil.WithDuration(2))

	p, err := svc.GenerateProposal(context.Background(), j)
	require.NoError(t, err)

	require.Len(t, p.Days, 3)
	for i, d := range p.Days {
		assert.Equal(t, i+1, d.Number)
		assert.NotEmpty(t, d.ID)
		assert.True(t, d.HasCanonicalSlots())
	}
	assert.Equal(t, "Arrival", p.Days[0].Title)
	assert.Equal(t, "Option 1: Lisbon", p.Name)

	next, changed := planner.AddProposal(j, p)
	require.True(t, changed)
	assert.Equal(t, 2, next.PreferredDuration)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, llm.TaskGenerate, reqs[0].Task)
	assert.Equal(t, prompt.SystemPrompt, reqs[0].SystemPrompt)
}

func TestGenerateProposal_TruncatedOutput(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := testutil.NewScriptedClient(threeDayResponse())
	svc := NewProposalService(client, ProposalOptions{Logger: zap.New(core)})
	j := testutil.NewTestJourney(testutil.WithDuration(4))

	p, err := svc.GenerateProposal(context.Background(), j)
	require.NoError(t, err)
	assert.Len(t, p.Days, 3, "missing days are never fabricated")

	next, _ := planner.AddProposal(j, p)
	assert.Equal(t, 2, next.PreferredDuration)
	assert.Equal(t, 1, logs.FilterMessage("model returned fewer days than requested").Len())
}

func TestGenerateProposal_NoDaysIsParseFailure(t *testing.T) {
	svc := NewProposalService(testutil.NewScriptedClient("Sorry, I cannot help with that."), ProposalOptions{})

	_, err := svc.GenerateProposal(context.Background(), testutil.NewTestJourney())

	assert.ErrorIs(t, err, ErrParseFailure)
	assert.False(t, IsRetryable(err))
}

func TestGenerateProposal_OracleFailureIsRetryable(t *testing.T) {
	svc := NewProposalService(testutil.NewFailingClient(llm.ErrTimeout), ProposalOptions{})

	_, err := svc.GenerateProposal(context.Background(), testutil.NewTestJourney())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracle)
	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.True(t, IsRetryable(err))
}

func TestGenerateProposal_InvalidJourney(t *testing.T) {
	client := testutil.NewScriptedClient(threeDayResponse())
	svc := NewProposalService(client, ProposalOptions{})
	j := testutil.NewTestJourney(testutil.WithStyle(domain.StyleDriving), testutil.WithOrigin(""))

	_, err := svc.GenerateProposal(context.Background(), j)

	require.Error(t, err)
	assert.Empty(t, client.Requests(), "oracle is not called for an invalid journey")
}

func TestGenerateProposal_UsesRouteForRoadTrips(t *testing.T) {
	router := &fakeRouter{route: &routing.Route{DistanceKm: 625, Duration: 6*time.Hour + 30*time.Minute}}
	client := testutil.NewScriptedClient(threeDayResponse())
	svc := NewProposalService(client, ProposalOptions{Router: router, UseWebContext: true})
	j := testutil.NewTestJourney(testutil.WithStyle(domain.StyleDriving), testutil.WithDuration(2))

	_, err := svc.GenerateProposal(context.Background(), j)
	require.NoError(t, err)

	assert.Equal(t, 1, router.calls)
	assert.Contains(t, client.LastPrompt(), "625 km")
	assert.True(t, client.Requests()[0].UseWebContext)
}

func TestGenerateProposal_RouteFailureDegrades(t *testing.T) {
	router := &fakeRouter{err: routing.ErrUnavailable}
	client := testutil.NewScriptedClient(threeDayResponse())
	svc := NewProposalService(client, ProposalOptions{Router: router})
	j := testutil.NewTestJourney(testutil.WithStyle(domain.StyleMotorcycle), testutil.WithDuration(2))

	p, err := svc.GenerateProposal(context.Background(), j)
	require.NoError(t, err)

	assert.Len(t, p.Days, 3)
	assert.Contains(t, client.LastPrompt(), "never plan more than 4 hours")
}

func TestGenerateProposal_SkipsRouterForCityBreaks(t *testing.T) {
	router := &fakeRouter{}
	svc := NewProposalService(testutil.NewScriptedClient(threeDayResponse()), ProposalOptions{Router: router})

	_, err := svc.GenerateProposal(context.Background(), testutil.NewTestJourney(testutil.WithDuration(2)))
	require.NoError(t, err)

	assert.Zero(t, router.calls)
}

func TestRefineDay_MergeNeverLosesData(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(3))
	p, _ := j.ActiveProposal()
	orig := p.Days[1]
	client := testutil.NewScriptedClient(testutil.DayResponse(2, "Sintra", domain.SlotMorning))
	svc := NewProposalService(client, ProposalOptions{})

	got, err := svc.RefineDay(context.Background(), j, orig.ID, "More palaces")
	require.NoError(t, err)

	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, 2, got.Number)
	assert.Equal(t, "Sintra", got.Title)
	require.True(t, got.HasCanonicalSlots())
	assert.Equal(t, "New Morning for Sintra.", got.Activities[0].Description)
	for i := 1; i < len(domain.CanonicalSlots); i++ {
		assert.Equal(t, orig.Activities[i], got.Activities[i], "slot %s", domain.CanonicalSlots[i])
	}
	assert.Contains(t, client.LastPrompt(), "More palaces")
	assert.Equal(t, llm.TaskRefineDay, client.Requests()[0].Task)
}

func TestRefineDay_ZeroSlotsKeepsEverySlot(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(2))
	p, _ := j.ActiveProposal()
	orig := p.Days[0]
	svc := NewProposalService(testutil.NewScriptedClient("**Day 1: Slow start**\nJust relax."), ProposalOptions{})

	got, err := svc.RefineDay(context.Background(), j, orig.ID, "slower")
	require.NoError(t, err)

	assert.Equal(t, "Slow start", got.Title)
	assert.Equal(t, orig.Activities, got.Activities)
}

func TestRefineDay_WrongDayKeepsPriorState(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(3))
	p, _ := j.ActiveProposal()
	svc := NewProposalService(testutil.NewScriptedClient(testutil.DayResponse(1, "Wrong day")), ProposalOptions{})

	_, err := svc.RefineDay(context.Background(), j, p.Days[2].ID, "anything")

	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestRefineDay_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		journey *domain.Journey
		dayID   func(j *domain.Journey) string
		wantErr error
	}{
		{
			name:    "unknown day",
			journey: testutil.NewTestJourney(testutil.WithDays(2)),
			dayID:   func(*domain.Journey) string { return "missing" },
			wantErr: ErrDayNotFound,
		},
		{
			name:    "confirmed journey",
			journey: testutil.NewTestJourney(testutil.WithDays(2), testutil.WithConfirmed()),
			dayID: func(j *domain.Journey) string {
				p, _ := j.ActiveProposal()
				return p.Days[0].ID
			},
			wantErr: ErrNotEditable,
		},
		{
			name:    "no proposal",
			journey: testutil.NewTestJourney(),
			dayID:   func(*domain.Journey) string { return "any" },
			wantErr: ErrNotEditable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := testutil.NewScriptedClient("unused")
			svc := NewProposalService(client, ProposalOptions{})

			_, err := svc.RefineDay(context.Background(), tc.journey, tc.dayID(tc.journey), "x")

			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, client.Requests())
		})
	}
}

func TestFeelLucky_SynthesizesRequest(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(2))
	p, _ := j.ActiveProposal()
	client := testutil.NewScriptedClient(testutil.DayResponse(2, "Hidden Lisbon"))
	svc := NewProposalService(client, ProposalOptions{})

	got, err := svc.FeelLucky(context.Background(), j, p.Days[1].ID)
	require.NoError(t, err)

	assert.Equal(t, "Hidden Lisbon", got.Title)
	assert.Contains(t, client.LastPrompt(), prompt.LuckyRequest)
}

func TestRefineTimeSlot(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(2))
	p, _ := j.ActiveProposal()

	tests := []struct {
		name          string
		response      string
		want          string
		wantAnomalies int
	}{
		{
			name:     "plain text",
			response: "Seafood at [Ramiro](https://example.com/ramiro).",
			want:     "Seafood at [Ramiro](https://example.com/ramiro).",
		},
		{
			name:          "extra slot headers are cut",
			response:      "**Dinner:** Seafood at [Ramiro](https://example.com/ramiro).\n**Additional:** Late fado show.",
			want:          "Seafood at [Ramiro](https://example.com/ramiro).",
			wantAnomalies: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			client := testutil.NewScriptedClient(tc.response)
			svc := NewProposalService(client, ProposalOptions{Logger: zap.New(core)})

			got, err := svc.RefineTimeSlot(context.Background(), j, p.Days[0].ID, domain.SlotDinner, "seafood")
			require.NoError(t, err)

			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantAnomalies, logs.Len())
			assert.Equal(t, llm.TaskRefineSlot, client.Requests()[0].Task)
		})
	}
}

func TestRefineTimeSlot_EmptyResponse(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(1))
	p, _ := j.ActiveProposal()
	svc := NewProposalService(testutil.NewScriptedClient("   "), ProposalOptions{})

	_, err := svc.RefineTimeSlot(context.Background(), j, p.Days[0].ID, domain.SlotLunch, "x")

	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestInsertDay_IntoFourDayProposal(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(4))
	p, _ := j.ActiveProposal()
	client := testutil.NewScriptedClient(testutil.DayResponse(3, "Belem"))
	svc := NewProposalService(client, ProposalOptions{})

	day, index, err := svc.InsertDay(context.Background(), j, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, index)
	assert.NotEmpty(t, day.ID)
	assert.Equal(t, domain.PlaceholderDayTitle, day.Title)
	assert.Equal(t, "New Morning for Belem.", day.Activities[0].Description)
	assert.Contains(t, client.LastPrompt(), p.Days[1].Title)
	assert.Contains(t, client.LastPrompt(), p.Days[2].Title)

	next, changed := planner.InsertDayAt(j, day, index)
	require.True(t, changed)
	days := next.Proposals[0].Days
	require.Len(t, days, 5)
	assert.Equal(t, day.ID, days[2].ID)
	assert.True(t, days[2].IsPlaceholder())
	for i, d := range days {
		assert.Equal(t, i+1, d.Number)
	}
}

func TestInsertDay_AcceptsMisnumberedDay(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(2))
	svc := NewProposalService(testutil.NewScriptedClient(testutil.DayResponse(9, "Cascais")), ProposalOptions{})

	day, index, err := svc.InsertDay(context.Background(), j, -1)
	require.NoError(t, err)

	assert.Equal(t, 1, index)
	assert.Equal(t, "New Lunch for Cascais.", day.Activities[1].Description)
}

func TestInFlightGuard(t *testing.T) {
	j := testutil.NewTestJourney(testutil.WithDays(2))
	p, _ := j.ActiveProposal()
	client := testutil.NewScriptedClient(testutil.DayResponse(1, "First"))
	client.Block = make(chan struct{})
	svc := NewProposalService(client, ProposalOptions{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.RefineDay(context.Background(), j, p.Days[0].ID, "first")
		done <- err
	}()
	require.Eventually(t, func() bool { return svc.InFlight(j.ID) }, time.Second, 5*time.Millisecond)

	_, err := svc.RefineTimeSlot(context.Background(), j, p.Days[1].ID, domain.SlotMorning, "second")
	assert.ErrorIs(t, err, ErrRefinementInFlight)

	other := testutil.NewTestJourney(testutil.WithDays(1))
	assert.False(t, svc.InFlight(other.ID), "other journeys are not blocked")

	close(client.Block)
	require.NoError(t, <-done)
	assert.False(t, svc.InFlight(j.ID))
}

func TestMergeDay_KeepsOriginalTextWhenBlank(t *testing.T) {
	orig := testutil.NewTestDay(3)
	refined := domain.Day{ID: "model-id", Number: 7}

	got := MergeDay(orig, refined)

	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, 3, got.Number)
	assert.Equal(t, orig.Title, got.Title)
	assert.Equal(t, orig.Description, got.Description)
	assert.Equal(t, orig.Activities, got.Activities)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(oracleError(errors.New("boom"))))
	assert.True(t, IsRetryable(llm.ErrRateLimited))
	assert.False(t, IsRetryable(ErrParseFailure))
	assert.False(t, IsRetryable(ErrDayNotFound))
}
