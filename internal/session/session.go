// Package session holds the state of one interactive editing session: the
// current journey document, its autosave coordinator and the orchestrator.
// The document is only ever replaced, never mutated in place.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/itinera/internal/autosave"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/parser"
	"github.com/alexanderramin/itinera/internal/planner"
	"github.com/alexanderramin/itinera/internal/service"
	"go.uber.org/zap"
)

var (
	// ErrClosed indicates the session has ended.
	ErrClosed = errors.New("edit session is closed")

	// ErrStaleResult indicates an oracle result arrived for a journey or day
	// that is no longer the one being edited. The result is discarded.
	ErrStaleResult = errors.New("result no longer applies to the current itinerary")
)

// Deps are the collaborators of an EditSession.
type Deps struct {
	Proposals service.ProposalService
	// Save persists a document. Ownership is stamped before it is called.
	Save     autosave.SaveFunc
	Identity domain.Identity
	Autosave autosave.Options
	Logger   *zap.Logger
}

type EditSession struct {
	proposals service.ProposalService
	who       domain.Identity
	log       *zap.Logger
	saver     *autosave.Coordinator

	mu     sync.Mutex
	doc    *domain.Journey
	closed bool
}

func New(j *domain.Journey, deps Deps) *EditSession {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &EditSession{
		proposals: deps.Proposals,
		who:       deps.Identity,
		log:       log,
		doc:       j.Clone(),
	}
	opts := deps.Autosave
	if opts.Logger == nil {
		opts.Logger = log
	}
	s.saver = autosave.New(s.stampOwner(deps.Save), opts)
	return s
}

// stampOwner sets the owner on the first save of an unowned journey.
func (s *EditSession) stampOwner(save autosave.SaveFunc) autosave.SaveFunc {
	return func(ctx context.Context, j *domain.Journey) error {
		if j.OwnerID == "" && s.who.UserID != "" {
			j = j.Clone()
			j.OwnerID = s.who.UserID
		}
		return save(ctx, j)
	}
}

// Journey returns a copy of the current document.
func (s *EditSession) Journey() *domain.Journey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

func (s *EditSession) snapshot() (*domain.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.doc.Clone(), nil
}

// apply runs op against the current document and schedules a save when it
// changed something.
func (s *EditSession) apply(op service.JourneyOp) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	next, changed := op(s.doc)
	if changed {
		s.doc = next
	}
	s.mu.Unlock()

	if changed {
		s.saver.Notify(next)
	}
	return changed
}

// applyErr is apply for operations that report failures.
func (s *EditSession) applyErr(op func(*domain.Journey) (*domain.Journey, error)) error {
	var opErr error
	s.apply(func(j *domain.Journey) (*domain.Journey, bool) {
		next, err := op(j)
		if err != nil {
			opErr = err
			return j, false
		}
		return next, true
	})
	if opErr != nil {
		return opErr
	}
	if s.isClosed() {
		return ErrClosed
	}
	return nil
}

func (s *EditSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *EditSession) AddDay() bool { return s.apply(planner.AddDay) }

func (s *EditSession) Confirm() bool { return s.apply(planner.Confirm) }

func (s *EditSession) Reopen() bool { return s.apply(planner.Reopen) }

func (s *EditSession) DeleteDay(dayID string) bool {
	return s.apply(func(j *domain.Journey) (*domain.Journey, bool) { return planner.DeleteDay(j, dayID) })
}

func (s *EditSession) ReorderDay(from, to int) bool {
	return s.apply(func(j *domain.Journey) (*domain.Journey, bool) { return planner.ReorderDay(j, from, to) })
}

func (s *EditSession) SelectProposal(id string) bool {
	return s.apply(func(j *domain.Journey) (*domain.Journey, bool) { return planner.SelectProposal(j, id) })
}

// Generate adds a freshly generated proposal and makes it active.
func (s *EditSession) Generate(ctx context.Context) error {
	j, err := s.snapshot()
	if err != nil {
		return err
	}
	p, err := s.proposals.GenerateProposal(ctx, j)
	if err != nil {
		return err
	}
	err = s.applyErr(func(cur *domain.Journey) (*domain.Journey, error) {
		if cur.ID != j.ID {
			return nil, staleFor(j.ID, "proposal")
		}
		next, ok := planner.AddProposal(cur, p)
		if !ok {
			return nil, service.ErrNotEditable
		}
		return next, nil
	})
	if errors.Is(err, ErrStaleResult) {
		s.log.Info("discarding late proposal", zap.String("journey_id", j.ID))
	}
	return err
}

func (s *EditSession) RefineDay(ctx context.Context, dayID, request string) error {
	j, err := s.snapshot()
	if err != nil {
		return err
	}
	day, err := s.proposals.RefineDay(ctx, j, dayID, request)
	if err != nil {
		return err
	}
	return s.replaceDay(j.ID, day)
}

func (s *EditSession) FeelLucky(ctx context.Context, dayID string) error {
	j, err := s.snapshot()
	if err != nil {
		return err
	}
	day, err := s.proposals.FeelLucky(ctx, j, dayID)
	if err != nil {
		return err
	}
	return s.replaceDay(j.ID, day)
}

// replaceDay applies a refinement to the current document by day identifier.
func (s *EditSession) replaceDay(journeyID string, day domain.Day) error {
	err := s.applyErr(func(cur *domain.Journey) (*domain.Journey, error) {
		if cur.ID != journeyID {
			return nil, staleFor(journeyID, "day")
		}
		return planner.ReplaceDay(cur, day)
	})
	return s.stale(err, day.ID)
}

func (s *EditSession) RefineSlot(ctx context.Context, dayID string, slot domain.TimeSlot, request string) error {
	j, err := s.snapshot()
	if err != nil {
		return err
	}
	text, err := s.proposals.RefineTimeSlot(ctx, j, dayID, slot, request)
	if err != nil {
		return err
	}
	err = s.applyErr(func(cur *domain.Journey) (*domain.Journey, error) {
		if cur.ID != j.ID {
			return nil, staleFor(j.ID, "time slot")
		}
		return planner.SetSlot(cur, dayID, slot, parser.ActivityName(text), text)
	})
	return s.stale(err, dayID)
}

// InsertDay generates a day after afterIndex (negative means the middle)
// and splices it into the current document.
func (s *EditSession) InsertDay(ctx context.Context, afterIndex int) (domain.Day, error) {
	j, err := s.snapshot()
	if err != nil {
		return domain.Day{}, err
	}
	day, index, err := s.proposals.InsertDay(ctx, j, afterIndex)
	if err != nil {
		return domain.Day{}, err
	}

	// The day was written to fit between two specific neighbours. Find them
	// again in the current document instead of trusting the old index.
	var before, after string
	if p, ok := j.ActiveProposal(); ok {
		before, after = neighbours(p.Days, index)
	}
	err = s.applyErr(func(cur *domain.Journey) (*domain.Journey, error) {
		if cur.ID != j.ID {
			return nil, staleFor(j.ID, "day")
		}
		p, ok := cur.ActiveProposal()
		if !ok {
			return nil, errNeighboursMoved
		}
		at, ok := resolveInsert(p.Days, before, after)
		if !ok {
			return nil, errNeighboursMoved
		}
		next, ok := planner.InsertDayAt(cur, day, at)
		if !ok {
			return nil, errNeighboursMoved
		}
		return next, nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleResult) {
			s.log.Info("discarding late day", zap.String("journey_id", j.ID), zap.Int("index", index))
		}
		return domain.Day{}, err
	}
	return day, nil
}

var errNeighboursMoved = fmt.Errorf("%w: itinerary changed while the day was generated", ErrStaleResult)

func staleFor(journeyID, what string) error {
	return fmt.Errorf("%w: %s was generated for journey %s", ErrStaleResult, what, journeyID)
}

// neighbours returns the identifiers of the days either side of index.
func neighbours(days []domain.Day, index int) (before, after string) {
	if index > 0 && index <= len(days) {
		before = days[index-1].ID
	}
	if index >= 0 && index < len(days) {
		after = days[index].ID
	}
	return before, after
}

// resolveInsert finds where a day generated between before and after goes
// in days. Both neighbours must still exist and still be adjacent.
func resolveInsert(days []domain.Day, before, after string) (int, bool) {
	pos := func(id string) int {
		for i, d := range days {
			if d.ID == id {
				return i
			}
		}
		return -1
	}
	switch {
	case before != "":
		b := pos(before)
		if b < 0 {
			return 0, false
		}
		if after != "" && pos(after) != b+1 {
			return 0, false
		}
		return b + 1, true
	case after != "":
		a := pos(after)
		return a, a >= 0
	default:
		return len(days), true
	}
}

func (s *EditSession) stale(err error, dayID string) error {
	if errors.Is(err, planner.ErrDayNotFound) || errors.Is(err, planner.ErrNotEditable) {
		s.log.Info("discarding late result", zap.String("day_id", dayID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStaleResult, err)
	}
	return err
}

// SaveStatus reports the autosave indicator.
func (s *EditSession) SaveStatus() (autosave.Status, error) {
	return s.saver.Status()
}

// Busy reports whether an oracle call is running for this journey.
func (s *EditSession) Busy() bool {
	s.mu.Lock()
	id := s.doc.ID
	s.mu.Unlock()
	return s.proposals.InFlight(id)
}

func (s *EditSession) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Switch moves the session to another journey. Pending edits of the current
// one are written first.
func (s *EditSession) Switch(ctx context.Context, j *domain.Journey) error {
	if err := s.saver.Flush(ctx); err != nil {
		return fmt.Errorf("saving %s before switching: %w", s.Journey().ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.doc = j.Clone()
	return nil
}

// Close writes pending edits and ends the session.
func (s *EditSession) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.saver.Close(ctx)
}
