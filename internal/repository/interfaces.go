package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/itinera/internal/domain"
)

var (
	// ErrNotFound indicates no journey exists with the requested identifier.
	ErrNotFound = errors.New("journey not found")

	// ErrRateLimited indicates the store refused a write because writes are
	// arriving faster than allowed. The write may be retried later.
	ErrRateLimited = errors.New("journey store rate limited")
)

// JourneyPatch is the subset of a journey that editing sessions persist.
// Proposals are replaced wholesale.
type JourneyPatch struct {
	Proposals          []domain.Proposal
	ActiveProposalID   string
	ConfirmedItinerary *domain.Proposal
	Status             domain.JourneyStatus
	PreferredDuration  int
	// OwnerID is stamped only when the stored journey has no owner yet.
	OwnerID string
}

// PatchFrom extracts the persisted subset of j.
func PatchFrom(j *domain.Journey) JourneyPatch {
	return JourneyPatch{
		Proposals:          j.Proposals,
		ActiveProposalID:   j.ActiveProposalID,
		ConfirmedItinerary: j.ConfirmedItinerary,
		Status:             j.Status,
		PreferredDuration:  j.PreferredDuration,
		OwnerID:            j.OwnerID,
	}
}

type JourneyRepo interface {
	Create(ctx context.Context, j *domain.Journey) error
	GetByID(ctx context.Context, id string) (*domain.Journey, error)
	// List returns journeys ordered by creation time. An empty ownerID lists all.
	List(ctx context.Context, ownerID string) ([]*domain.Journey, error)
	// Update writes patch and returns the stored journey.
	Update(ctx context.Context, id string, patch JourneyPatch) (*domain.Journey, error)
	Delete(ctx context.Context, id string) error
}
