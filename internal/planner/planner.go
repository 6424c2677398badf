// Package planner is the itinerary mutation state machine. Every operation
// takes a journey, leaves it untouched, and returns a new journey together
// with whether anything changed. Guarded operations that would break an
// invariant (moving a fixed day, editing a confirmed itinerary) return the
// input unchanged instead of an error.
package planner

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrDayNotFound indicates the target day identifier is not in the active proposal.
	ErrDayNotFound = errors.New("day not found in active proposal")

	// ErrNotEditable indicates the journey is confirmed or has no proposal to edit.
	ErrNotEditable = errors.New("itinerary is not editable")
)

// NewProposal wraps parsed days in a named proposal for j.
func NewProposal(j *domain.Journey, days []domain.Day) domain.Proposal {
	p := domain.Proposal{
		ID:   uuid.NewString(),
		Name: fmt.Sprintf("Option %d: %s", len(j.Proposals)+1, title(j.Destination)),
		Days: days,
	}
	p.Renumber()
	p.Summary = Summary(j, &p)
	return p
}

// Summary describes a proposal by its current day count.
func Summary(j *domain.Journey, p *domain.Proposal) string {
	travelers := "1 traveler"
	if j.Travelers != 1 {
		travelers = fmt.Sprintf("%d travelers", j.Travelers)
	}
	route := "in " + title(j.Destination)
	if j.Style.IsRoadTrip() && j.Origin != "" {
		route = fmt.Sprintf("from %s to %s", title(j.Origin), title(j.Destination))
	}
	return fmt.Sprintf("A %d-day %s %s for %s on a %s budget (%d nights).",
		len(p.Days), j.Style.Label(), route, travelers, j.Budget, p.Nights())
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

// sync restores the derived fields of the active proposal after a structural
// change: day numbers, the journey duration and the summary text.
func sync(j *domain.Journey, p *domain.Proposal) {
	p.Renumber()
	j.PreferredDuration = p.Nights()
	p.Summary = Summary(j, p)
}

// editable clones j and returns the clone's active proposal, or false when
// structural edits are not allowed.
func editable(j *domain.Journey) (*domain.Journey, *domain.Proposal, bool) {
	if !j.IsEditable() {
		return nil, nil, false
	}
	next := j.Clone()
	p, ok := next.ActiveProposal()
	if !ok {
		return nil, nil, false
	}
	next.ActiveProposalID = p.ID
	return next, p, true
}

// isFixed reports whether index i anchors route continuity in p.
func isFixed(j *domain.Journey, p *domain.Proposal, i int) bool {
	return j.Style.IsFixedStyle() && (i == 0 || i == len(p.Days)-1)
}

// AddProposal appends p and makes it the active proposal.
func AddProposal(j *domain.Journey, p domain.Proposal) (*domain.Journey, bool) {
	if !j.IsEditable() {
		return j, false
	}
	next := j.Clone()
	next.Proposals = append(next.Proposals, p.Clone())
	added := &next.Proposals[len(next.Proposals)-1]
	next.ActiveProposalID = added.ID
	sync(next, added)
	return next, true
}

// SelectProposal makes the proposal with id the editing target.
func SelectProposal(j *domain.Journey, id string) (*domain.Journey, bool) {
	if !j.IsEditable() || j.ActiveProposalID == id {
		return j, false
	}
	i := j.ProposalIndex(id)
	if i < 0 {
		return j, false
	}
	next := j.Clone()
	next.ActiveProposalID = id
	sync(next, &next.Proposals[i])
	return next, true
}

// AddDay appends a placeholder day. For fixed styles it lands before the
// final day so the arrival stays last.
func AddDay(j *domain.Journey) (*domain.Journey, bool) {
	next, p, ok := editable(j)
	if !ok {
		return j, false
	}
	at := len(p.Days)
	if j.Style.IsFixedStyle() && at >= 2 {
		at--
	}
	p.Days = insertAt(p.Days, at, domain.NewPlaceholderDay(uuid.NewString()))
	sync(next, p)
	return next, true
}

// DeleteDay removes the day with dayID. Fixed days and the last remaining
// day are kept.
func DeleteDay(j *domain.Journey, dayID string) (*domain.Journey, bool) {
	next, p, ok := editable(j)
	if !ok {
		return j, false
	}
	i := p.DayIndex(dayID)
	if i < 0 || len(p.Days) <= 1 || isFixed(next, p, i) {
		return j, false
	}
	p.Days = append(p.Days[:i], p.Days[i+1:]...)
	sync(next, p)
	return next, true
}

// ReorderDay moves the day at from to position to by removal and
// reinsertion. For fixed styles both positions must be interior.
func ReorderDay(j *domain.Journey, from, to int) (*domain.Journey, bool) {
	next, p, ok := editable(j)
	if !ok {
		return j, false
	}
	n := len(p.Days)
	if from == to || from < 0 || from >= n || to < 0 || to >= n {
		return j, false
	}
	if isFixed(next, p, from) || isFixed(next, p, to) {
		return j, false
	}
	day := p.Days[from]
	rest := append(p.Days[:from:from], p.Days[from+1:]...)
	p.Days = insertAt(rest, to, day)
	sync(next, p)
	return next, true
}

// InsertIndex resolves where a day inserted after afterIndex goes in a
// proposal of n days. A negative afterIndex means the midpoint.
func InsertIndex(style domain.TravelStyle, afterIndex, n int) int {
	if afterIndex < 0 {
		return clampInsert(style, n/2, n)
	}
	return clampInsert(style, afterIndex+1, n)
}

// clampInsert keeps at within [0, n]. Fixed styles never insert before the
// first or after the last day.
func clampInsert(style domain.TravelStyle, at, n int) int {
	at = max(0, min(at, n))
	if style.IsFixedStyle() && n >= 2 {
		at = max(1, min(at, n-1))
	}
	return at
}

// InsertDayAt splices day into the active proposal at index, clamped to the
// valid range for the journey's style. A negative index means the midpoint.
func InsertDayAt(j *domain.Journey, day domain.Day, index int) (*domain.Journey, bool) {
	next, p, ok := editable(j)
	if !ok {
		return j, false
	}
	at := clampInsert(next.Style, index, len(p.Days))
	if index < 0 {
		at = clampInsert(next.Style, len(p.Days)/2, len(p.Days))
	}
	day = day.Clone()
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	day.Activities = domain.NormalizeActivities(day.Activities, nil)
	p.Days = insertAt(p.Days, at, day)
	sync(next, p)
	return next, true
}

// ReplaceDay swaps in a refined version of the day with the same identifier.
// The position and number of the day are kept.
func ReplaceDay(j *domain.Journey, day domain.Day) (*domain.Journey, error) {
	next, p, ok := editable(j)
	if !ok {
		return j, ErrNotEditable
	}
	i := p.DayIndex(day.ID)
	if i < 0 {
		return j, fmt.Errorf("%w: %s", ErrDayNotFound, day.ID)
	}
	day = day.Clone()
	day.Activities = domain.NormalizeActivities(day.Activities, p.Days[i].Activities)
	p.Days[i] = day
	sync(next, p)
	return next, nil
}

// SetSlot replaces the description of one activity of a day, leaving the
// other slots untouched.
func SetSlot(j *domain.Journey, dayID string, slot domain.TimeSlot, name, description string) (*domain.Journey, error) {
	next, p, ok := editable(j)
	if !ok {
		return j, ErrNotEditable
	}
	i := p.DayIndex(dayID)
	if i < 0 {
		return j, fmt.Errorf("%w: %s", ErrDayNotFound, dayID)
	}
	si := domain.SlotIndex(slot)
	if si < 0 {
		return j, fmt.Errorf("unknown time slot %q", slot)
	}
	d := &p.Days[i]
	d.Activities = domain.NormalizeActivities(d.Activities, nil)
	d.Activities[si] = domain.Activity{Time: slot, Name: name, Description: description}
	return next, nil
}

// Confirm freezes a copy of the active proposal as the confirmed itinerary.
func Confirm(j *domain.Journey) (*domain.Journey, bool) {
	next, p, ok := editable(j)
	if !ok || len(p.Days) == 0 {
		return j, false
	}
	sync(next, p)
	snapshot := p.Clone()
	next.ConfirmedItinerary = &snapshot
	next.Status = domain.JourneyConfirmed
	return next, true
}

// Reopen returns a confirmed journey to planning. The confirmed snapshot
// becomes the active proposal, replacing the proposal it was taken from.
func Reopen(j *domain.Journey) (*domain.Journey, bool) {
	if j.Status != domain.JourneyConfirmed {
		return j, false
	}
	next := j.Clone()
	next.Status = domain.JourneyPlanning
	if next.ConfirmedItinerary == nil {
		return next, true
	}

	snapshot := next.ConfirmedItinerary.Clone()
	next.ConfirmedItinerary = nil
	if i := next.ProposalIndex(snapshot.ID); i >= 0 {
		next.Proposals[i] = snapshot
	} else {
		next.Proposals = append(next.Proposals, snapshot)
	}
	next.ActiveProposalID = snapshot.ID
	p, _ := next.ActiveProposal()
	sync(next, p)
	return next, true
}

func insertAt(days []domain.Day, at int, d domain.Day) []domain.Day {
	out := make([]domain.Day, 0, len(days)+1)
	out = append(out, days[:at]...)
	out = append(out, d)
	return append(out, days[at:]...)
}
