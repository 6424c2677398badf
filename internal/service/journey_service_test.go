package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/planner"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupJourneyService(t *testing.T, client *testutil.ScriptedClient, observers ...UseCaseObserver) (JourneyService, repository.JourneyRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteJourneyRepo(database, testutil.NewTestUoW(database))
	proposals := NewProposalService(client, ProposalOptions{}, observers...)
	return NewJourneyService(repo, proposals, observers...), repo
}

func TestJourneyService_CreateAppliesDefaults(t *testing.T) {
	svc, _ := setupJourneyService(t, testutil.NewScriptedClient())
	ctx := context.Background()

	j := &domain.Journey{
		Destination:       "Kyoto",
		PreferredDuration: 4,
		Interests:         []string{" Food", "temples", "food", ""},
	}
	require.NoError(t, svc.Create(ctx, j, domain.Identity{UserID: "u-1"}))

	assert.NotEmpty(t, j.ID)
	assert.Equal(t, "Trip to Kyoto", j.Name)
	assert.Equal(t, "u-1", j.OwnerID)
	assert.Equal(t, 1, j.Travelers)
	assert.Equal(t, domain.BudgetModerate, j.Budget)
	assert.Equal(t, domain.StyleDestination, j.Style)
	assert.Equal(t, domain.JourneyPlanning, j.Status)
	assert.Equal(t, []string{"food", "temples"}, j.Interests)

	fetched, err := svc.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", fetched.Destination)
}

func TestJourneyService_CreateValidates(t *testing.T) {
	svc, _ := setupJourneyService(t, testutil.NewScriptedClient())

	tests := []struct {
		name    string
		journey *domain.Journey
	}{
		{"missing destination", &domain.Journey{}},
		{"road trip without origin", &domain.Journey{Destination: "Porto", Style: domain.StyleRVTrip}},
		{"unknown budget", &domain.Journey{Destination: "Porto", Budget: "infinite"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, svc.Create(context.Background(), tc.journey, domain.Identity{}))
		})
	}
}

func TestJourneyService_GeneratePersistsProposal(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc, repo := setupJourneyService(t, testutil.NewScriptedClient(threeDayResponse()), NewLogUseCaseObserver(zap.New(core)))
	ctx := context.Background()
	j := testutil.NewTestJourney(testutil.WithDuration(6))
	require.NoError(t, repo.Create(ctx, j))

	saved, err := svc.Generate(ctx, j.ID)
	require.NoError(t, err)

	require.Len(t, saved.Proposals, 1)
	assert.Equal(t, saved.Proposals[0].ID, saved.ActiveProposalID)
	assert.Equal(t, 2, saved.PreferredDuration)

	entries := logs.FilterMessage("service_use_case").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "generate-proposal", entries[0].ContextMap()["use_case"])
	assert.Equal(t, "generate-journey", entries[1].ContextMap()["use_case"])
	assert.Equal(t, true, entries[1].ContextMap()["success"])
}

func TestJourneyService_GenerateFailureKeepsStoredState(t *testing.T) {
	svc, repo := setupJourneyService(t, testutil.NewScriptedClient("no itinerary here"))
	ctx := context.Background()
	j := testutil.NewTestJourney(testutil.WithDays(2))
	require.NoError(t, repo.Create(ctx, j))

	_, err := svc.Generate(ctx, j.ID)
	require.ErrorIs(t, err, ErrParseFailure)

	stored, err := repo.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Proposals, 1)
	assert.Len(t, stored.Proposals[0].Days, 2)
}

func TestJourneyService_Apply(t *testing.T) {
	svc, repo := setupJourneyService(t, testutil.NewScriptedClient())
	ctx := context.Background()
	j := testutil.NewTestJourney(testutil.WithDays(3))
	require.NoError(t, repo.Create(ctx, j))

	saved, changed, err := svc.Apply(ctx, j.ID, planner.Confirm)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.JourneyConfirmed, saved.Status)

	_, changed, err = svc.Apply(ctx, j.ID, planner.AddDay)
	require.NoError(t, err)
	assert.False(t, changed, "confirmed journeys ignore structural edits")

	saved, changed, err = svc.Apply(ctx, j.ID, planner.Reopen)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.JourneyPlanning, saved.Status)
	assert.Nil(t, saved.ConfirmedItinerary)
}

func TestJourneyService_ListAndDelete(t *testing.T) {
	svc, _ := setupJourneyService(t, testutil.NewScriptedClient())
	ctx := context.Background()
	for _, dest := range []string{"Rome", "Oslo"} {
		require.NoError(t, svc.Create(ctx, &domain.Journey{Destination: dest}, domain.Identity{UserID: "me"}))
	}
	require.NoError(t, svc.Create(ctx, &domain.Journey{Destination: "Bern"}, domain.Identity{UserID: "you"}))

	mine, err := svc.List(ctx, "me")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	require.NoError(t, svc.Delete(ctx, mine[0].ID))
	_, err = svc.GetByID(ctx, mine[0].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
