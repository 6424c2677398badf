// Package export renders a journey's itinerary for use outside the app.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	ics "github.com/arran4/golang-ical"
)

// ErrNothingToExport indicates the journey has no itinerary yet.
var ErrNothingToExport = errors.New("journey has no itinerary to export")

// slotWindow is the local start and length of each slot's calendar event.
type slotWindow struct {
	hour, minute int
	length       time.Duration
}

var slotWindows = map[domain.TimeSlot]slotWindow{
	domain.SlotMorning:    {9, 0, 3 * time.Hour},
	domain.SlotLunch:      {12, 30, 90 * time.Minute},
	domain.SlotAfternoon:  {14, 30, 3*time.Hour + 30*time.Minute},
	domain.SlotDinner:     {19, 0, 2 * time.Hour},
	domain.SlotAdditional: {21, 0, 90 * time.Minute},
}

// FirstDay is the calendar date of Day 1: the journey start date, or the day
// after now when none is set.
func FirstDay(j *domain.Journey, now time.Time) time.Time {
	if j.StartDate != nil {
		d := *j.StartDate
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	}
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// ICS renders the itinerary as an iCalendar document with one event per
// planned activity. Slots still holding placeholder text are skipped. Slot
// times are wall-clock times in loc, the destination's zone; nil keeps the
// zone of the start date.
func ICS(j *domain.Journey, now time.Time, loc *time.Location) (string, error) {
	p, ok := j.Itinerary()
	if !ok || len(p.Days) == 0 {
		return "", ErrNothingToExport
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//itinera//itinerary export//EN")
	cal.SetXWRCalName(p.Name)

	first := FirstDay(j, now)
	if loc != nil {
		first = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
		cal.SetXWRTimezone(loc.String())
	}
	stamp := now.UTC()
	for i, d := range p.Days {
		date := first.AddDate(0, 0, i)
		for _, a := range d.Activities {
			w, known := slotWindows[a.Time]
			if !known || a.Description == domain.PlaceholderActivity || a.IsBlank() {
				continue
			}
			start := date.Add(time.Duration(w.hour)*time.Hour + time.Duration(w.minute)*time.Minute)

			ev := cal.AddEvent(fmt.Sprintf("%s-%s@itinera", d.ID, strings.ToLower(string(a.Time))))
			ev.SetDtStampTime(stamp)
			ev.SetStartAt(start)
			ev.SetEndAt(start.Add(w.length))
			ev.SetSummary(fmt.Sprintf("Day %d %s: %s", d.Number, a.Time, a.Name))
			ev.SetDescription(a.Description)
			ev.SetLocation(j.Destination)
		}
	}
	return cal.Serialize(), nil
}

// Markdown renders the itinerary as a markdown document. Links in activity
// text are kept as written.
func Markdown(j *domain.Journey) (string, error) {
	p, ok := j.Itinerary()
	if !ok || len(p.Days) == 0 {
		return "", ErrNothingToExport
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", j.Name)
	if j.Status == domain.JourneyConfirmed {
		b.WriteString("_Confirmed itinerary_\n\n")
	}
	fmt.Fprintf(&b, "**%s**\n\n", p.Name)
	if p.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Summary)
	}
	for _, d := range p.Days {
		fmt.Fprintf(&b, "## Day %d: %s\n\n", d.Number, d.Title)
		if d.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", d.Description)
		}
		for _, a := range d.Activities {
			fmt.Fprintf(&b, "- **%s:** %s\n", a.Time, a.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}
