// Package prompt assembles the text sent to the model for each itinerary
// operation. Build is a pure function of the journey and its context.
package prompt

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/routing"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode selects the prompt shape.
type Mode string

const (
	ModeGenerate   Mode = "generate"
	ModeRefineDay  Mode = "refine_day"
	ModeFeelLucky  Mode = "feel_lucky"
	ModeRefineSlot Mode = "refine_slot"
	ModeInsertDay  Mode = "insert_day"
)

// LongTripDays is the day count above which responses are asked to be terse.
const LongTripDays = 10

// LuckyRequest is the enhancement request synthesized for feel-lucky refinement.
const LuckyRequest = "Surprise us. Keep the overall theme and location of this day, but swap the " +
	"predictable choices for lesser-known local favorites, add one memorable food experience " +
	"and one activity most visitors miss."

// Context carries the per-call inputs a mode needs beyond the journey itself.
type Context struct {
	// Route is the optional driving estimate for road trips.
	Route *routing.Route
	// Day is the day being refined.
	Day *domain.Day
	// Before and After are the neighbors of an inserted day; either may be nil.
	Before, After *domain.Day
	// Number is the 1-based position of an inserted day.
	Number      int
	Slot        domain.TimeSlot
	UserRequest string
}

// SystemPrompt frames every request.
const SystemPrompt = `You are an expert travel planner. You write practical, specific day-by-day
itineraries with real place names. Where you recommend a specific place, you may link it with
markdown like [Place Name](https://example.com). Never add commentary outside the requested format.`

// title capitalizes place names. Casers are stateful, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Build returns the user prompt for mode.
func Build(j *domain.Journey, mode Mode, pc Context) string {
	switch mode {
	case ModeRefineDay:
		return buildRefineDay(j, pc, pc.UserRequest)
	case ModeFeelLucky:
		return buildRefineDay(j, pc, LuckyRequest)
	case ModeRefineSlot:
		return buildRefineSlot(j, pc)
	case ModeInsertDay:
		return buildInsertDay(j, pc)
	default:
		return buildGenerate(j, pc)
	}
}

func buildGenerate(j *domain.Journey, pc Context) string {
	days := j.ExpectedDayCount()
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %d-day itinerary (%s) for %s.\n\n",
		days, pluralize(j.PreferredDuration, "night"), tripSubject(j))
	writeTripFacts(&b, j)
	writeStyleRules(&b, j, pc.Route)
	b.WriteString(seasonLine(j.StartDate))
	b.WriteString("\n")
	if days > LongTripDays {
		fmt.Fprintf(&b, "This trip is longer than %d days. Keep every section to one or two short, "+
			"bullet-style sentences so the complete itinerary fits in a single response. Do not skip days.\n",
			LongTripDays)
	}

	fmt.Fprintf(&b, "\nReturn exactly %d days, numbered 1 to %d, each in this format:\n\n", days, days)
	b.WriteString(dayFormat("N"))
	return b.String()
}

func buildRefineDay(j *domain.Journey, pc Context, request string) string {
	var b strings.Builder
	n := dayNumber(pc.Day)

	fmt.Fprintf(&b, "You are revising one day of a trip to %s.\n\n", title(j.Destination))
	writeTripFacts(&b, j)
	writeStyleRules(&b, j, pc.Route)
	b.WriteString(seasonLine(j.StartDate))
	b.WriteString("\n\nThe current plan for this day is:\n\n")
	if pc.Day != nil {
		b.WriteString(RenderDay(*pc.Day))
	}
	fmt.Fprintf(&b, "\nChange request: %s\n\n", strings.TrimSpace(request))
	fmt.Fprintf(&b, "Return only Day %d, rewritten to satisfy the request, in this format:\n\n", n)
	b.WriteString(dayFormat(fmt.Sprint(n)))
	return b.String()
}

func buildRefineSlot(j *domain.Journey, pc Context) string {
	var b strings.Builder
	n := dayNumber(pc.Day)

	fmt.Fprintf(&b, "You are revising a single activity on Day %d of a trip to %s.\n\n",
		n, title(j.Destination))
	writeTripFacts(&b, j)
	b.WriteString(seasonLine(j.StartDate))
	b.WriteString("\n\nThe full day currently reads:\n\n")
	if pc.Day != nil {
		b.WriteString(RenderDay(*pc.Day))
	}
	fmt.Fprintf(&b, "\nRewrite only the %s activity. Change request: %s\n\n", pc.Slot, strings.TrimSpace(pc.UserRequest))
	fmt.Fprintf(&b, "Return only the new %s text as one short paragraph. Do not include a day header, "+
		"a %s label or any other time slot (%s).\n",
		pc.Slot, pc.Slot, strings.Join(otherSlots(pc.Slot), ", "))
	return b.String()
}

func buildInsertDay(j *domain.Journey, pc Context) string {
	var b strings.Builder
	n := pc.Number
	if n < 1 {
		n = 1
	}

	fmt.Fprintf(&b, "Add one new day to a trip to %s.\n\n", title(j.Destination))
	writeTripFacts(&b, j)
	writeStyleRules(&b, j, nil)
	b.WriteString(seasonLine(j.StartDate))
	b.WriteString("\n\n")
	switch {
	case pc.Before != nil && pc.After != nil:
		fmt.Fprintf(&b, "The new day goes between \"%s\" and \"%s\". Keep it geographically and "+
			"thematically continuous with both.\n", pc.Before.Title, pc.After.Title)
	case pc.Before != nil:
		fmt.Fprintf(&b, "The new day follows \"%s\". Keep it continuous with that day.\n", pc.Before.Title)
	case pc.After != nil:
		fmt.Fprintf(&b, "The new day comes before \"%s\". Keep it continuous with that day.\n", pc.After.Title)
	}
	b.WriteString("Do not repeat activities from the neighboring days.\n\n")
	fmt.Fprintf(&b, "Return only this one day as Day %d in this format:\n\n", n)
	b.WriteString(dayFormat(fmt.Sprint(n)))
	return b.String()
}

func tripSubject(j *domain.Journey) string {
	who := pluralize(j.Travelers, "traveler")
	if j.Style.IsRoadTrip() {
		return fmt.Sprintf("%s driving from %s to %s", who, title(j.Origin), title(j.Destination))
	}
	return fmt.Sprintf("%s visiting %s", who, title(j.Destination))
}

func writeTripFacts(b *strings.Builder, j *domain.Journey) {
	fmt.Fprintf(b, "Travelers: %d\n", j.Travelers)
	fmt.Fprintf(b, "Budget: %s. %s\n", j.Budget, budgetHint(j.Budget))
	fmt.Fprintf(b, "Travel style: %s\n", j.Style.Label())
	if len(j.Interests) > 0 {
		interests := lo.Map(j.Interests, func(s string, _ int) string { return strings.TrimSpace(s) })
		fmt.Fprintf(b, "Interests: %s\n", strings.Join(lo.Compact(interests), ", "))
	}
	if j.Notes != "" {
		fmt.Fprintf(b, "Notes from the travelers: %s\n", j.Notes)
	}
}

func budgetHint(t domain.BudgetTier) string {
	switch t {
	case domain.BudgetEconomy:
		return "Prefer free sights, street food and public transport."
	case domain.BudgetLuxury:
		return "Favor premium restaurants, private tours and upscale stays."
	default:
		return "Mix well-reviewed mid-range options with a few treats."
	}
}

// MaxDailyDriveHours is the daily driving budget per vehicle type.
func MaxDailyDriveHours(s domain.TravelStyle) float64 {
	switch s {
	case domain.StyleMotorcycle:
		return 4
	case domain.StyleRVTrip:
		return 5
	case domain.StyleDriving:
		return 6
	default:
		return 0
	}
}

func writeStyleRules(b *strings.Builder, j *domain.Journey, route *routing.Route) {
	switch {
	case j.Style.IsRoadTrip():
		b.WriteString(pacingRule(j, route))
	case j.Style == domain.StyleSki:
		b.WriteString(skiRule(j.ExpectedDayCount()))
	case j.Style == domain.StyleBackpacking:
		b.WriteString("Favor trains, buses and walkable neighborhoods. Suggest hostels or guesthouses.\n")
	case j.Style == domain.StyleCruise:
		b.WriteString("Structure days around port calls and sea days. Keep shore activities within reach of the port.\n")
	}
}

func pacingRule(j *domain.Journey, route *routing.Route) string {
	maxHours := MaxDailyDriveHours(j.Style)
	days := j.ExpectedDayCount()
	if route == nil || route.Duration <= 0 {
		return fmt.Sprintf("Pacing: never plan more than %.0f hours of driving in a day. Plan overnight stops "+
			"so each leg stays within that limit. Day 1 departs from %s and Day %d arrives in %s.\n",
			maxHours, title(j.Origin), days, title(j.Destination))
	}
	hours := route.Hours()
	legs := int(math.Ceil(hours / maxHours))
	return fmt.Sprintf("Pacing: the drive from %s to %s is about %.0f km (%.1f hours). Never plan more than "+
		"%.0f hours of driving in a day, which means at least %s of driving. Day 1 departs from %s and "+
		"Day %d arrives in %s.\n",
		title(j.Origin), title(j.Destination), route.DistanceKm, hours,
		maxHours, pluralize(legs, "day"), title(j.Origin), days, title(j.Destination))
}

// SkiPlan splits a ski trip into arrival, ski, rest and departure days.
// RestDay is the 1-based rest day number, or 0 when the trip is too short.
type SkiPlan struct {
	SkiDays int
	RestDay int
}

// PlanSki keeps the first and last day free of skiing and, when at least four
// days remain between them, turns the midpoint day into a rest day.
func PlanSki(totalDays int) SkiPlan {
	middle := totalDays - 2
	if middle <= 0 {
		return SkiPlan{}
	}
	if middle < 4 {
		return SkiPlan{SkiDays: middle}
	}
	return SkiPlan{SkiDays: middle - 1, RestDay: totalDays/2 + 1}
}

func skiRule(totalDays int) string {
	plan := PlanSki(totalDays)
	if plan.SkiDays == 0 {
		return "This is a short ski trip: focus on arrival, equipment rental and one easy session on the slopes.\n"
	}
	s := fmt.Sprintf("Plan exactly %s on the slopes. Day 1 is arrival and equipment rental; Day %d is departure.",
		pluralize(plan.SkiDays, "ski day"), totalDays)
	if plan.RestDay > 0 {
		s += fmt.Sprintf(" Make Day %d a rest day with no skiing (spa, village, scenic lift).", plan.RestDay)
	}
	return s + "\n"
}

// Season names the northern-hemisphere season of t.
func Season(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

func seasonLine(start *time.Time) string {
	if start == nil {
		return "No start date is set; assume the current season when choosing activities."
	}
	return fmt.Sprintf("The trip starts on %s, in %s. Choose activities, opening hours and clothing advice for that season.",
		start.Format("Monday, 2 January 2006"), Season(*start))
}

func dayFormat(n string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Day %s: Title**\n", n)
	b.WriteString("**Summary:** one or two sentences\n")
	for _, slot := range domain.CanonicalSlots {
		fmt.Fprintf(&b, "**%s:** ...\n", slot)
	}
	return b.String()
}

// RenderDay writes a day back in the format the parser reads.
func RenderDay(d domain.Day) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Day %d: %s**\n", d.Number, d.Title)
	if d.Description != "" {
		fmt.Fprintf(&b, "**Summary:** %s\n", d.Description)
	}
	for _, a := range d.Activities {
		fmt.Fprintf(&b, "**%s:** %s\n", a.Time, a.Description)
	}
	return b.String()
}

func otherSlots(slot domain.TimeSlot) []string {
	others := lo.Filter(domain.CanonicalSlots, func(s domain.TimeSlot, _ int) bool { return s != slot })
	return lo.Map(others, func(s domain.TimeSlot, _ int) string { return string(s) })
}

func dayNumber(d *domain.Day) int {
	if d == nil || d.Number < 1 {
		return 1
	}
	return d.Number
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
