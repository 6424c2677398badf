package service

import (
	"context"

	"github.com/alexanderramin/itinera/internal/domain"
)

// ProposalService turns oracle responses into itinerary content. Results are
// returned, never applied: callers splice them into the current document so
// a late answer cannot overwrite newer edits.
type ProposalService interface {
	GenerateProposal(ctx context.Context, j *domain.Journey) (domain.Proposal, error)
	RefineDay(ctx context.Context, j *domain.Journey, dayID, request string) (domain.Day, error)
	FeelLucky(ctx context.Context, j *domain.Journey, dayID string) (domain.Day, error)
	RefineTimeSlot(ctx context.Context, j *domain.Journey, dayID string, slot domain.TimeSlot, request string) (string, error)
	// InsertDay returns the new day and the index it belongs at in the
	// active proposal.
	InsertDay(ctx context.Context, j *domain.Journey, afterIndex int) (domain.Day, int, error)
	// InFlight reports whether an oracle call is outstanding for the journey.
	InFlight(journeyID string) bool
}

// JourneyOp is a planner operation: it returns the next document and whether
// anything changed.
type JourneyOp func(j *domain.Journey) (*domain.Journey, bool)

type JourneyService interface {
	Create(ctx context.Context, j *domain.Journey, who domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Journey, error)
	List(ctx context.Context, ownerID string) ([]*domain.Journey, error)
	Delete(ctx context.Context, id string) error
	// Save persists the editable subset of j.
	Save(ctx context.Context, j *domain.Journey) (*domain.Journey, error)
	// Generate asks the oracle for a new proposal and stores it as active.
	Generate(ctx context.Context, id string) (*domain.Journey, error)
	// Apply loads the journey, runs op and saves the result when it changed.
	Apply(ctx context.Context, id string, op JourneyOp) (*domain.Journey, bool, error)
}
