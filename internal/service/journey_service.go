package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/planner"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type journeyService struct {
	journeys  repository.JourneyRepo
	proposals ProposalService
	observer  UseCaseObserver
}

func NewJourneyService(journeys repository.JourneyRepo, proposals ProposalService, observers ...UseCaseObserver) JourneyService {
	return &journeyService{
		journeys:  journeys,
		proposals: proposals,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *journeyService) Create(ctx context.Context, j *domain.Journey, who domain.Identity) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.Name == "" {
		j.Name = fmt.Sprintf("Trip to %s", j.Destination)
	}
	if j.OwnerID == "" {
		j.OwnerID = who.UserID
	}
	if j.Travelers == 0 {
		j.Travelers = 1
	}
	if j.Budget == "" {
		j.Budget = domain.BudgetModerate
	}
	if j.Style == "" {
		j.Style = domain.StyleDestination
	}
	j.Interests = lo.Uniq(lo.Compact(lo.Map(j.Interests, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	})))
	j.Status = domain.JourneyPlanning

	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid journey: %w", err)
	}

	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	return s.journeys.Create(ctx, j)
}

func (s *journeyService) GetByID(ctx context.Context, id string) (*domain.Journey, error) {
	return s.journeys.GetByID(ctx, id)
}

func (s *journeyService) List(ctx context.Context, ownerID string) ([]*domain.Journey, error) {
	return s.journeys.List(ctx, ownerID)
}

func (s *journeyService) Delete(ctx context.Context, id string) error {
	return s.journeys.Delete(ctx, id)
}

func (s *journeyService) Save(ctx context.Context, j *domain.Journey) (*domain.Journey, error) {
	return s.journeys.Update(ctx, j.ID, repository.PatchFrom(j))
}

func (s *journeyService) Generate(ctx context.Context, id string) (saved *domain.Journey, err error) {
	fields := map[string]any{"journey_id": id}
	defer observe(ctx, s.observer, "generate-journey", fields, &err)()

	j, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.proposals.GenerateProposal(ctx, j)
	if err != nil {
		return nil, err
	}
	fields["days"] = len(p.Days)

	next, changed := planner.AddProposal(j, p)
	if !changed {
		err = ErrNotEditable
		return nil, err
	}
	return s.Save(ctx, next)
}

func (s *journeyService) Apply(ctx context.Context, id string, op JourneyOp) (*domain.Journey, bool, error) {
	j, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	next, changed := op(j)
	if !changed {
		return j, false, nil
	}
	saved, err := s.Save(ctx, next)
	if err != nil {
		return nil, false, err
	}
	return saved, true, nil
}
