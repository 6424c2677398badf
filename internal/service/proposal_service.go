package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/llm"
	"github.com/alexanderramin/itinera/internal/parser"
	"github.com/alexanderramin/itinera/internal/planner"
	"github.com/alexanderramin/itinera/internal/prompt"
	"github.com/alexanderramin/itinera/internal/routing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalOptions configures NewProposalService.
type ProposalOptions struct {
	// Router is optional. Without it road-trip prompts use generic pacing.
	Router        routing.RouteService
	Logger        *zap.Logger
	UseWebContext bool
}

type proposalService struct {
	client     llm.LLMClient
	router     routing.RouteService
	log        *zap.Logger
	webContext bool
	observer   UseCaseObserver

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewProposalService(client llm.LLMClient, opts ProposalOptions, observers ...UseCaseObserver) ProposalService {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &proposalService{
		client:     client,
		router:     opts.Router,
		log:        log,
		webContext: opts.UseWebContext,
		observer:   useCaseObserverOrNoop(observers),
		inFlight:   make(map[string]struct{}),
	}
}

func (s *proposalService) InFlight(journeyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[journeyID]
	return ok
}

// acquire claims the journey's single oracle slot.
func (s *proposalService) acquire(journeyID string) (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[journeyID]; busy {
		return nil, fmt.Errorf("%w: %s", ErrRefinementInFlight, journeyID)
	}
	s.inFlight[journeyID] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, journeyID)
		s.mu.Unlock()
	}, nil
}

func (s *proposalService) call(ctx context.Context, task llm.TaskType, userPrompt string) (string, error) {
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:          task,
		SystemPrompt:  prompt.SystemPrompt,
		UserPrompt:    userPrompt,
		UseWebContext: s.webContext,
	})
	if err != nil {
		return "", oracleError(err)
	}
	return resp.Text, nil
}

// route looks up driving time for road trips. Any failure is logged and
// ignored.
func (s *proposalService) route(ctx context.Context, j *domain.Journey) *routing.Route {
	if s.router == nil || !j.Style.IsRoadTrip() || j.Origin == "" {
		return nil
	}
	r, err := s.router.GetDrivingRoute(ctx, j.Origin, j.Destination, j.Style)
	if err != nil {
		s.log.Warn("route lookup failed, using generic pacing",
			zap.String("journey_id", j.ID), zap.Error(err))
		return nil
	}
	return r
}

func (s *proposalService) GenerateProposal(ctx context.Context, j *domain.Journey) (p domain.Proposal, err error) {
	fields := map[string]any{"journey_id": j.ID, "expected_days": j.ExpectedDayCount()}
	defer observe(ctx, s.observer, "generate-proposal", fields, &err)()

	if err = j.Validate(); err != nil {
		return domain.Proposal{}, fmt.Errorf("invalid journey: %w", err)
	}
	if !j.IsEditable() {
		return domain.Proposal{}, ErrNotEditable
	}
	release, err := s.acquire(j.ID)
	if err != nil {
		return domain.Proposal{}, err
	}
	defer release()

	text, err := s.call(ctx, llm.TaskGenerate, prompt.Build(j, prompt.ModeGenerate, prompt.Context{Route: s.route(ctx, j)}))
	if err != nil {
		return domain.Proposal{}, err
	}

	days := parser.ParseMultiDay(text, j.ExpectedDayCount())
	fields["parsed_days"] = len(days)
	if len(days) == 0 {
		err = ErrParseFailure
		return domain.Proposal{}, err
	}
	if len(days) < j.ExpectedDayCount() {
		s.log.Warn("model returned fewer days than requested",
			zap.String("journey_id", j.ID),
			zap.Int("expected", j.ExpectedDayCount()),
			zap.Int("parsed", len(days)))
	}
	return planner.NewProposal(j, days), nil
}

// target returns a copy of the day being refined from the active proposal.
func target(j *domain.Journey, dayID string) (domain.Day, error) {
	if !j.IsEditable() {
		return domain.Day{}, ErrNotEditable
	}
	p, ok := j.ActiveProposal()
	if !ok {
		return domain.Day{}, ErrNotEditable
	}
	i := p.DayIndex(dayID)
	if i < 0 {
		return domain.Day{}, fmt.Errorf("%w: %s", ErrDayNotFound, dayID)
	}
	d := p.Days[i].Clone()
	d.Number = i + 1
	return d, nil
}

func (s *proposalService) RefineDay(ctx context.Context, j *domain.Journey, dayID, request string) (domain.Day, error) {
	return s.refine(ctx, j, dayID, prompt.ModeRefineDay, request)
}

func (s *proposalService) FeelLucky(ctx context.Context, j *domain.Journey, dayID string) (domain.Day, error) {
	return s.refine(ctx, j, dayID, prompt.ModeFeelLucky, "")
}

func (s *proposalService) refine(ctx context.Context, j *domain.Journey, dayID string, mode prompt.Mode, request string) (day domain.Day, err error) {
	fields := map[string]any{"journey_id": j.ID, "day_id": dayID, "mode": string(mode)}
	defer observe(ctx, s.observer, "refine-day", fields, &err)()

	orig, err := target(j, dayID)
	if err != nil {
		return domain.Day{}, err
	}
	release, err := s.acquire(j.ID)
	if err != nil {
		return domain.Day{}, err
	}
	defer release()

	userPrompt := prompt.Build(j, mode, prompt.Context{Day: &orig, UserRequest: request})
	text, err := s.call(ctx, llm.TaskRefineDay, userPrompt)
	if err != nil {
		return domain.Day{}, err
	}

	parsed, ok := parser.ParseSingleDay(text, orig.Number)
	if !ok {
		s.log.Warn("refinement response had no matching day, keeping prior content",
			zap.String("journey_id", j.ID), zap.String("day_id", dayID), zap.Int("day", orig.Number))
		err = fmt.Errorf("%w: day %d", ErrParseFailure, orig.Number)
		return domain.Day{}, err
	}
	return MergeDay(orig, parsed), nil
}

// MergeDay folds a parsed refinement into the original day. Slots the
// refinement left blank keep their original content, and the identifier and
// number always come from orig.
func MergeDay(orig, refined domain.Day) domain.Day {
	out := domain.Day{
		ID:          orig.ID,
		Number:      orig.Number,
		Title:       refined.Title,
		Description: refined.Description,
		Activities:  domain.NormalizeActivities(refined.Activities, orig.Activities),
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = orig.Title
	}
	if strings.TrimSpace(out.Description) == "" {
		out.Description = orig.Description
	}
	return out
}

func (s *proposalService) RefineTimeSlot(ctx context.Context, j *domain.Journey, dayID string, slot domain.TimeSlot, request string) (text string, err error) {
	fields := map[string]any{"journey_id": j.ID, "day_id": dayID, "slot": string(slot)}
	defer observe(ctx, s.observer, "refine-slot", fields, &err)()

	if domain.SlotIndex(slot) < 0 {
		return "", fmt.Errorf("unknown time slot %q", slot)
	}
	orig, err := target(j, dayID)
	if err != nil {
		return "", err
	}
	release, err := s.acquire(j.ID)
	if err != nil {
		return "", err
	}
	defer release()

	userPrompt := prompt.Build(j, prompt.ModeRefineSlot, prompt.Context{Day: &orig, Slot: slot, UserRequest: request})
	raw, err := s.call(ctx, llm.TaskRefineSlot, userPrompt)
	if err != nil {
		return "", err
	}

	content, extraneous := parser.ExtractSlot(raw, slot)
	if extraneous {
		s.log.Warn("slot response contained other slot headers, keeping only the target slot",
			zap.String("journey_id", j.ID), zap.String("day_id", dayID), zap.String("slot", string(slot)))
	}
	if content == "" {
		err = fmt.Errorf("%w: empty %s text", ErrParseFailure, slot)
		return "", err
	}
	return content, nil
}

func (s *proposalService) InsertDay(ctx context.Context, j *domain.Journey, afterIndex int) (day domain.Day, index int, err error) {
	fields := map[string]any{"journey_id": j.ID, "after_index": afterIndex}
	defer observe(ctx, s.observer, "insert-day", fields, &err)()

	if !j.IsEditable() {
		return domain.Day{}, 0, ErrNotEditable
	}
	p, ok := j.ActiveProposal()
	if !ok {
		return domain.Day{}, 0, ErrNotEditable
	}
	index = planner.InsertIndex(j.Style, afterIndex, len(p.Days))
	fields["index"] = index

	release, err := s.acquire(j.ID)
	if err != nil {
		return domain.Day{}, 0, err
	}
	defer release()

	pc := prompt.Context{Number: index + 1}
	if index > 0 {
		pc.Before = &p.Days[index-1]
	}
	if index < len(p.Days) {
		pc.After = &p.Days[index]
	}
	text, err := s.call(ctx, llm.TaskInsertDay, prompt.Build(j, prompt.ModeInsertDay, pc))
	if err != nil {
		return domain.Day{}, 0, err
	}

	parsed, ok := parser.ParseSingleDay(text, index+1)
	if !ok {
		// Accept a single day the model numbered differently.
		days := parser.ParseMultiDay(text, 1)
		if len(days) == 0 {
			err = ErrParseFailure
			return domain.Day{}, 0, err
		}
		parsed = days[0]
	}

	day = domain.Day{
		ID:          uuid.NewString(),
		Number:      index + 1,
		Title:       domain.PlaceholderDayTitle,
		Description: domain.PlaceholderDayDescription,
		Activities:  domain.NormalizeActivities(parsed.Activities, nil),
	}
	return day, index, nil
}
