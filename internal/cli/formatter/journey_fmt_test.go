package formatter

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/stretchr/testify/assert"
)

var fmtNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleJourney() *domain.Journey {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day := func(id string, n int, title string) domain.Day {
		return domain.Day{
			ID: id, Number: n, Title: title, Description: title + " summary.",
			Activities: domain.NormalizeActivities([]domain.Activity{
				{Time: domain.SlotMorning, Name: "Castle", Description: "Walk up to the castle."},
			}, nil),
		}
	}
	return &domain.Journey{
		ID:                "a1b2c3d4e5f6",
		Name:              "Lisbon getaway",
		Destination:       "Lisbon",
		Travelers:         2,
		Budget:            domain.BudgetModerate,
		Style:             domain.StyleDestination,
		Interests:         []string{"food", "history"},
		PreferredDuration: 1,
		StartDate:         &start,
		Status:            domain.JourneyPlanning,
		Proposals: []domain.Proposal{
			{ID: "p-1", Name: "Option 1: Lisbon", Days: []domain.Day{day("d-1", 1, "Alfama")}},
			{ID: "p-2", Name: "Option 2: Lisbon", Summary: "A relaxed pace.", Days: []domain.Day{day("d-2", 1, "Belem"), domain.NewPlaceholderDay("d-3")}},
		},
		ActiveProposalID: "p-2",
		UpdatedAt:        fmtNow.Add(-2 * time.Hour),
	}
}

func TestFormatJourneyList(t *testing.T) {
	out := FormatJourneyList([]*domain.Journey{sampleJourney()}, fmtNow)

	assert.Contains(t, out, "a1b2c3d4")
	assert.Contains(t, out, "Lisbon getaway")
	assert.Contains(t, out, "City break")
	assert.Contains(t, out, "Planning")
	assert.Contains(t, out, "2h ago")
	assert.Contains(t, FormatJourneyList(nil, fmtNow), "No journeys yet")
}

func TestFormatJourney_ShowsActiveProposal(t *testing.T) {
	out := FormatJourney(sampleJourney(), fmtNow)

	assert.Contains(t, out, "LISBON GETAWAY")
	assert.Contains(t, out, "Mar 10, 2026")
	assert.Contains(t, out, "in 9 days")
	assert.Contains(t, out, "food, history")
	assert.Contains(t, out, "▸ 2. Option 2: Lisbon")
	assert.Contains(t, out, "Day 1: Belem")
	assert.Contains(t, out, "(not planned)")
	assert.NotContains(t, out, "Day 1: Alfama")
}

func TestFormatJourney_WithoutItinerary(t *testing.T) {
	j := sampleJourney()
	j.Proposals = nil
	assert.Contains(t, FormatJourney(j, fmtNow), "itinera generate a1b2c3d4")
}

func TestFormatJourney_ConfirmedHidesProposals(t *testing.T) {
	j := sampleJourney()
	j.Status = domain.JourneyConfirmed
	confirmed := j.Proposals[0].Clone()
	j.ConfirmedItinerary = &confirmed

	out := FormatJourney(j, fmtNow)
	assert.Contains(t, out, "Day 1: Alfama")
	assert.NotContains(t, out, "PROPOSALS")
}

func TestFormatDay_ListsEverySlot(t *testing.T) {
	out := FormatDay(sampleJourney().Proposals[0].Days[0])
	for _, slot := range domain.CanonicalSlots {
		assert.Contains(t, out, string(slot))
	}
	assert.Contains(t, out, "Walk up to the castle.")
	assert.Contains(t, out, domain.PlaceholderActivity)
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func indexOf(line, sub string) int {
	i := strings.Index(line, sub)
	if i < 0 {
		return -1
	}
	return len([]rune(line[:i]))
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
