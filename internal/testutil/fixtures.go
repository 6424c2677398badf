package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/google/uuid"
)

// Journey options
type JourneyOption func(*domain.Journey)

func WithStyle(s domain.TravelStyle) JourneyOption {
	return func(j *domain.Journey) {
		j.Style = s
		if s.IsRoadTrip() && j.Origin == "" {
			j.Origin = "Madrid"
		}
	}
}

func WithOrigin(origin string) JourneyOption {
	return func(j *domain.Journey) {
		j.Origin = origin
	}
}

func WithOwner(id string) JourneyOption {
	return func(j *domain.Journey) {
		j.OwnerID = id
	}
}

func WithDuration(nights int) JourneyOption {
	return func(j *domain.Journey) {
		j.PreferredDuration = nights
	}
}

func WithStartDate(d time.Time) JourneyOption {
	return func(j *domain.Journey) {
		j.StartDate = &d
	}
}

func WithJourneyStatus(s domain.JourneyStatus) JourneyOption {
	return func(j *domain.Journey) {
		j.Status = s
	}
}

// WithDays gives the journey one active proposal of n fully planned days and
// syncs the duration to match.
func WithDays(n int) JourneyOption {
	return func(j *domain.Journey) {
		p := NewTestProposal(n)
		j.Proposals = append(j.Proposals, p)
		j.ActiveProposalID = p.ID
		j.PreferredDuration = max(n-1, 0)
	}
}

// WithConfirmed freezes the active proposal as the confirmed itinerary.
func WithConfirmed() JourneyOption {
	return func(j *domain.Journey) {
		if p, ok := j.ActiveProposal(); ok {
			c := p.Clone()
			j.ConfirmedItinerary = &c
		}
		j.Status = domain.JourneyConfirmed
	}
}

func NewTestJourney(opts ...JourneyOption) *domain.Journey {
	now := time.Now().UTC().Truncate(time.Second)
	j := &domain.Journey{
		ID:                uuid.New().String(),
		Name:              "Lisbon getaway",
		Destination:       "Lisbon",
		Travelers:         2,
		Budget:            domain.BudgetModerate,
		Style:             domain.StyleDestination,
		Interests:         []string{"food", "history"},
		PreferredDuration: 3,
		Status:            domain.JourneyPlanning,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// NewTestDay returns day n with all five slots filled with distinct text.
func NewTestDay(n int) domain.Day {
	acts := make([]domain.Activity, 0, len(domain.CanonicalSlots))
	for _, slot := range domain.CanonicalSlots {
		acts = append(acts, domain.Activity{
			Time:        slot,
			Name:        fmt.Sprintf("Day %d %s", n, slot),
			Description: fmt.Sprintf("Original %s plan for day %d.", slot, n),
		})
	}
	return domain.Day{
		ID:          uuid.New().String(),
		Number:      n,
		Title:       fmt.Sprintf("Day %d title", n),
		Description: fmt.Sprintf("Day %d summary.", n),
		Activities:  acts,
	}
}

func NewTestProposal(days int) domain.Proposal {
	p := domain.Proposal{
		ID:      uuid.New().String(),
		Name:    "Option 1: Lisbon",
		Summary: fmt.Sprintf("A %d-day test proposal.", days),
	}
	for i := 1; i <= days; i++ {
		p.Days = append(p.Days, NewTestDay(i))
	}
	return p
}

// DayResponse renders day n the way a well-behaved model answers. Only the
// listed slots are included; none means all five.
func DayResponse(n int, title string, slots ...domain.TimeSlot) string {
	if len(slots) == 0 {
		slots = domain.CanonicalSlots
	}
	s := fmt.Sprintf("**Day %d: %s**\n**Summary:** %s summary.\n", n, title, title)
	for _, slot := range slots {
		s += fmt.Sprintf("**%s:** New %s for %s.\n", slot, slot, title)
	}
	return s + "\n"
}
