package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
)

// FormatJourneyList renders journeys as a table, or a hint when there are none.
func FormatJourneyList(journeys []*domain.Journey, now time.Time) string {
	if len(journeys) == 0 {
		return Dim("No journeys yet. Create one with: itinera new --destination <place>") + "\n"
	}

	headers := []string{"ID", "NAME", "DESTINATION", "STYLE", "DAYS", "STATUS", "UPDATED"}
	rows := make([][]string, 0, len(journeys))
	for _, j := range journeys {
		days := Dim("--")
		if p, ok := j.Itinerary(); ok {
			days = strconv.Itoa(len(p.Days))
		}
		rows = append(rows, []string{
			TruncID(j.ID),
			Bold(j.Name),
			j.Destination,
			StyleBadge(j.Style),
			days,
			StatusPill(j.Status),
			Dim(HumanTimestamp(j.UpdatedAt, now)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatJourney renders the journey attributes and its current itinerary.
func FormatJourney(j *domain.Journey, now time.Time) string {
	var b strings.Builder

	var info strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&info, "%s %s\n", StyleDim.Width(12).Render(label), value)
	}
	row("Destination", j.Destination)
	if j.Origin != "" {
		row("From", j.Origin)
	}
	row("Style", StyleBadge(j.Style))
	row("Travelers", strconv.Itoa(j.Travelers))
	row("Budget", string(j.Budget))
	row("Length", Nights(j.PreferredDuration))
	if j.StartDate != nil {
		row("Starts", fmt.Sprintf("%s %s", j.StartDate.Format("Jan 2, 2006"), Dim("("+Countdown(*j.StartDate, now)+")")))
	}
	if len(j.Interests) > 0 {
		row("Interests", strings.Join(j.Interests, ", "))
	}
	if j.Notes != "" {
		row("Notes", j.Notes)
	}
	row("Status", StatusPill(j.Status))
	row("ID", TruncID(j.ID))

	b.WriteString(RenderBox(j.Name, strings.TrimRight(info.String(), "\n")))
	b.WriteString("\n")

	p, ok := j.Itinerary()
	if !ok {
		b.WriteString("\n" + Dim("No itinerary yet. Run: itinera generate "+shortID(j.ID)) + "\n")
		return b.String()
	}
	if len(j.Proposals) > 1 && j.Status == domain.JourneyPlanning {
		b.WriteString("\n" + FormatProposals(j))
	}
	b.WriteString("\n" + FormatProposal(p))
	return b.String()
}

// FormatProposals lists the proposals of a journey, marking the active one.
func FormatProposals(j *domain.Journey) string {
	var b strings.Builder
	b.WriteString(Header("Proposals") + "\n")
	for i, p := range j.Proposals {
		marker := "  "
		if p.ID == j.ActiveProposalID {
			marker = StyleGreen.Render("▸") + " "
		}
		fmt.Fprintf(&b, "%s%d. %s %s\n", marker, i+1, p.Name, Dim(fmt.Sprintf("(%d days, %s)", len(p.Days), TruncID(p.ID))))
	}
	return b.String()
}

// FormatProposal renders every day of a proposal.
func FormatProposal(p *domain.Proposal) string {
	var b strings.Builder
	b.WriteString(Header(p.Name) + "\n")
	if p.Summary != "" {
		b.WriteString(Dim(p.Summary) + "\n")
	}
	for _, d := range p.Days {
		b.WriteString("\n" + FormatDay(d))
	}
	return b.String()
}

// FormatDay renders a day with one line per slot.
func FormatDay(d domain.Day) string {
	var b strings.Builder
	title := fmt.Sprintf("Day %d: %s", d.Number, d.Title)
	if d.IsPlaceholder() {
		title += " " + StyleYellow.Render("(not planned)")
	}
	fmt.Fprintf(&b, "%s %s\n", Bold(title), TruncID(d.ID))
	if d.Description != "" {
		b.WriteString("  " + Dim(d.Description) + "\n")
	}
	for _, a := range d.Activities {
		desc := a.Description
		if a.IsBlank() {
			desc = Dim(domain.PlaceholderActivity)
		}
		fmt.Fprintf(&b, "  %s %s\n", SlotLabel(a.Time), desc)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
