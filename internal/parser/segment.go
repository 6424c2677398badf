package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/itinera/internal/domain"
)

// DaySegment is the slice of a response belonging to one day header.
type DaySegment struct {
	Number int
	Title  string
	Body   string
}

// Two accepted header shapes: "**Day 2: Sintra**" and "**Day 2:** Sintra".
var dayHeaderPattern = regexp.MustCompile(
	`(?m)\*\*[ \t]*Day[ \t]+(\d+)[ \t]*[:\-–—][ \t]*([^*\n]+?)[ \t]*:?[ \t]*\*\*` +
		`|\*\*[ \t]*Day[ \t]+(\d+)[ \t]*[:\-–—]?[ \t]*\*\*[ \t]*:?[ \t]*([^\n]*)`)

// Segment splits a full response into per-day segments. Text before the first
// header is discarded, and headers without a usable number or title are
// dropped together with their body. Fewer headers than expected simply yield
// fewer segments.
func Segment(text string) []DaySegment {
	text = strings.ReplaceAll(text, `\n`, "\n")
	matches := dayHeaderPattern.FindAllStringSubmatchIndex(text, -1)

	var segments []DaySegment
	for i, m := range matches {
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}

		numStr, title := submatch(text, m, 1), submatch(text, m, 2)
		if numStr == "" {
			numStr, title = submatch(text, m, 3), submatch(text, m, 4)
		}
		n, err := strconv.Atoi(numStr)
		title = strings.Trim(strings.TrimSpace(title), "*_: ")
		if err != nil || n < 1 || title == "" {
			continue
		}

		segments = append(segments, DaySegment{
			Number: n,
			Title:  title,
			Body:   text[m[1]:bodyEnd],
		})
	}
	return segments
}

func submatch(s string, m []int, group int) string {
	if 2*group+1 >= len(m) || m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

// Section names a block inside a day body.
type Section string

const SectionSummary Section = "Summary"

// sectionOrder is the canonical order of sections inside a day body.
var sectionOrder = []Section{
	SectionSummary,
	Section(domain.SlotMorning),
	Section(domain.SlotLunch),
	Section(domain.SlotAfternoon),
	Section(domain.SlotDinner),
	Section(domain.SlotAdditional),
}

var sectionAliases = map[Section]string{
	SectionSummary:                 `(?:Day[ \t]+)?(?:Summary|Overview)`,
	Section(domain.SlotMorning):    `Morning`,
	Section(domain.SlotLunch):      `Lunch`,
	Section(domain.SlotAfternoon):  `Afternoon`,
	Section(domain.SlotDinner):     `Dinner`,
	Section(domain.SlotAdditional): `(?:Additional(?:[ \t]+(?:Notes|Tips|Info|Activities|Options))?|Evening)`,
}

var sectionPatterns = buildSectionPatterns()

func buildSectionPatterns() map[Section]*regexp.Regexp {
	const (
		lead  = `^[ \t]*(?:[-*•+][ \t]+)?(?:#{1,6}[ \t]+)?`
		bold  = `(?:\*\*|__)`
		qual  = `(?:[ \t]*\([^)\n]*\))?`
		colon = `[ \t]*:[ \t]*`
		// Words a heading may add after the slot name, as in "### Lunch Break".
		suffix = `(?:[ \t]+(?:Activities|Activity|Plans?|Options|Break))?`
		sep    = `(?:[ \t]*[:\-–—])?[ \t]*`
	)
	out := make(map[Section]*regexp.Regexp, len(sectionAliases))
	for sec, alias := range sectionAliases {
		colonForm := lead + bold + `?[ \t]*` + alias + qual + `[ \t]*` + bold + `?` + colon + bold + `?`
		boldForm := lead + bold + `[ \t]*` + alias + qual + `[ \t]*` + bold + `[ \t]*`
		// The rest of a heading line belongs to the section.
		headingForm := `^[ \t]*#{1,6}[ \t]+` + alias + `\b` + suffix + qual + sep
		// "**Lunch:**" or "**Lunch**:" after other text on the same line.
		inlineForm := bold + `[ \t]*` + alias + qual + `[ \t]*(?::[ \t]*` + bold + `|` + bold + `[ \t]*:)[ \t]*`
		out[sec] = regexp.MustCompile(`(?im)(?:` + colonForm + `|` + boldForm + `|` + headingForm + `|` + inlineForm + `)`)
	}
	return out
}

// Sections holds the raw text extracted for each named block of a day body.
// Missing blocks are simply absent from Slots and leave Summary empty.
type Sections struct {
	Summary string
	Slots   map[domain.TimeSlot]string
	// Lead is any prose between the day header and the first section header.
	Lead string
}

type headerHit struct {
	section    Section
	start, end int
}

// ExtractSections locates each named block of body. A block runs from its
// header to the next section header of any kind, or to the end of the body.
// Only the first occurrence of each header counts.
func ExtractSections(body string) Sections {
	var hits []headerHit
	for _, sec := range sectionOrder {
		if loc := sectionPatterns[sec].FindStringIndex(body); loc != nil {
			hits = append(hits, headerHit{section: sec, start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].start < hits[b].start })

	out := Sections{Slots: make(map[domain.TimeSlot]string)}
	if len(hits) == 0 {
		out.Lead = strings.TrimSpace(body)
		return out
	}
	out.Lead = strings.TrimSpace(body[:hits[0].start])

	for i, h := range hits {
		end := len(body)
		for _, next := range hits[i+1:] {
			if next.start >= h.end {
				end = next.start
				break
			}
		}
		content := strings.TrimSpace(body[h.end:end])
		if h.section == SectionSummary {
			out.Summary = content
			continue
		}
		out.Slots[domain.TimeSlot(h.section)] = content
	}
	return out
}

// slotHeaderHits returns every slot header in text ordered by position.
func slotHeaderHits(text string) []headerHit {
	var hits []headerHit
	for _, sec := range sectionOrder[1:] {
		for _, loc := range sectionPatterns[sec].FindAllStringIndex(text, -1) {
			hits = append(hits, headerHit{section: sec, start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].start < hits[b].start })
	return hits
}
