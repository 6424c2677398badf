package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const maxNameWords = 8

// ParseMultiDay builds the days of an initial generation. It returns at most
// expected days (expected <= 0 means no limit), silently dropping any excess.
// A short response yields fewer days; nothing is padded. Every day gets a
// fresh identifier, a position-based number and five canonical activities,
// with placeholder text for slots the model left out.
func ParseMultiDay(text string, expected int) []domain.Day {
	segments := Segment(text)
	if expected > 0 && len(segments) > expected {
		segments = segments[:expected]
	}

	days := make([]domain.Day, 0, len(segments))
	for i, seg := range segments {
		d := buildDay(seg)
		d.ID = uuid.NewString()
		d.Number = i + 1
		d.Activities = domain.NormalizeActivities(d.Activities, nil)
		days = append(days, d)
	}
	return days
}

// ParseSingleDay extracts the day addressed to target from a refinement
// response. The returned day has no identifier and keeps all five slots in
// canonical order; slots the model omitted are blank so the caller can
// backfill them. ok is false when no segment carries the target number.
func ParseSingleDay(text string, target int) (day domain.Day, ok bool) {
	for _, seg := range Segment(text) {
		if seg.Number != target {
			continue
		}
		d := buildDay(seg)
		d.Number = target
		return d, true
	}
	return domain.Day{}, false
}

// ExtractSlot pulls the content meant for one slot out of a slot-scoped
// response. If the model echoed the slot's own header, only the text after it
// is kept. Text belonging to any other slot header is cut off; extraneous
// reports whether that happened.
func ExtractSlot(text string, slot domain.TimeSlot) (content string, extraneous bool) {
	text = strings.ReplaceAll(text, `\n`, "\n")
	if loc := dayHeaderPattern.FindStringIndex(text); loc != nil && strings.TrimSpace(text[:loc[0]]) == "" {
		text = text[loc[1]:]
	}

	hits := slotHeaderHits(text)
	start, end := 0, len(text)
	own := -1
	for i, h := range hits {
		if h.section == Section(slot) {
			own = i
			break
		}
	}
	if own >= 0 {
		start = hits[own].end
		if own+1 < len(hits) {
			end = hits[own+1].start
		}
		extraneous = len(hits) > 1
	} else if len(hits) > 0 {
		end = hits[0].start
		extraneous = true
	}
	return Clean(text[start:end]), extraneous
}

func buildDay(seg DaySegment) domain.Day {
	secs := ExtractSections(seg.Body)

	acts := make([]domain.Activity, len(domain.CanonicalSlots))
	for i, slot := range domain.CanonicalSlots {
		desc := Clean(secs.Slots[slot])
		acts[i] = domain.Activity{Time: slot, Name: ActivityName(desc), Description: desc}
	}

	return domain.Day{
		Title:       Clean(seg.Title),
		Description: lo.CoalesceOrEmpty(Clean(secs.Summary), Clean(secs.Lead)),
		Activities:  acts,
	}
}

// ActivityName derives a short display name from cleaned slot text: the
// label of a leading link, an explicit "Name - detail" or "Name: detail"
// prefix, or the first words of the first sentence.
func ActivityName(desc string) string {
	if desc == "" {
		return ""
	}
	if m := linkPattern.FindStringSubmatchIndex(desc); m != nil && m[0] == 0 {
		return desc[m[2]:m[3]]
	}

	first := stripLinks(desc)
	if i := strings.IndexAny(first, ".!?"); i > 0 {
		first = first[:i]
	}
	for _, sep := range []string{" - ", " – ", ": "} {
		if i := strings.Index(first, sep); i > 0 && utf8.RuneCountInString(first[:i]) <= 60 {
			return strings.TrimSpace(first[:i])
		}
	}

	words := strings.Fields(first)
	if len(words) > maxNameWords {
		return strings.Join(words[:maxNameWords], " ") + "..."
	}
	return strings.Join(words, " ")
}

func stripLinks(s string) string {
	return linkPattern.ReplaceAllString(s, "$1")
}
