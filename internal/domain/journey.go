package domain

import (
	"fmt"
	"time"
)

// Journey is the root planning document. Proposals, Days and Activities are
// owned exclusively by it.
type Journey struct {
	ID                 string
	OwnerID            string
	Name               string
	Destination        string
	Origin             string
	Travelers          int
	Budget             BudgetTier
	Style              TravelStyle
	Interests          []string
	Notes              string
	PreferredDuration  int // nights
	StartDate          *time.Time
	Status             JourneyStatus
	Proposals          []Proposal
	ActiveProposalID   string
	ConfirmedItinerary *Proposal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the attributes a journey needs before anything can be
// generated for it.
func (j *Journey) Validate() error {
	if j.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	if j.Travelers < 1 {
		return fmt.Errorf("traveler count must be at least 1, got %d", j.Travelers)
	}
	if j.PreferredDuration < 0 {
		return fmt.Errorf("preferred duration must not be negative, got %d", j.PreferredDuration)
	}
	if !ValidTravelStyles[string(j.Style)] {
		return fmt.Errorf("unknown travel style %q", j.Style)
	}
	if !ValidBudgetTiers[string(j.Budget)] {
		return fmt.Errorf("unknown budget tier %q", j.Budget)
	}
	if j.Style.IsRoadTrip() && j.Origin == "" {
		return fmt.Errorf("origin is required for %s trips", j.Style)
	}
	return nil
}

// ExpectedDayCount is the number of days a fresh generation should produce.
func (j *Journey) ExpectedDayCount() int {
	return j.PreferredDuration + 1
}

// ProposalIndex returns the array index of the proposal with id, or -1.
func (j *Journey) ProposalIndex(id string) int {
	for i, p := range j.Proposals {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ActiveProposal returns the proposal currently targeted by edits. It falls
// back to the most recent proposal when no explicit selection exists.
func (j *Journey) ActiveProposal() (*Proposal, bool) {
	if len(j.Proposals) == 0 {
		return nil, false
	}
	if i := j.ProposalIndex(j.ActiveProposalID); i >= 0 {
		return &j.Proposals[i], true
	}
	return &j.Proposals[len(j.Proposals)-1], true
}

// Itinerary returns the itinerary a reader should see: the confirmed one when
// confirmed, otherwise the active proposal.
func (j *Journey) Itinerary() (*Proposal, bool) {
	if j.Status == JourneyConfirmed && j.ConfirmedItinerary != nil {
		return j.ConfirmedItinerary, true
	}
	return j.ActiveProposal()
}

// IsEditable reports whether structural edits are allowed.
func (j *Journey) IsEditable() bool {
	return j.Status != JourneyConfirmed
}

// Clone returns a deep copy so callers can modify the result without touching
// the original document.
func (j *Journey) Clone() *Journey {
	c := *j
	c.Interests = append([]string(nil), j.Interests...)
	if j.StartDate != nil {
		d := *j.StartDate
		c.StartDate = &d
	}
	c.Proposals = make([]Proposal, len(j.Proposals))
	for i, p := range j.Proposals {
		c.Proposals[i] = p.Clone()
	}
	if j.ConfirmedItinerary != nil {
		ci := j.ConfirmedItinerary.Clone()
		c.ConfirmedItinerary = &ci
	}
	return &c
}
