package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorDim).
	Padding(1, 2)

// RenderBox frames content, with title as an uppercased heading when set.
func RenderBox(title, content string) string {
	if title == "" {
		return boxStyle.Render(content)
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		StyleHeader.Render(strings.ToUpper(title)), "", content))
}

// Countdown describes a trip start date in calendar days from now, in
// start's time zone.
func Countdown(start, now time.Time) string {
	days := calendarDays(now.In(start.Location()), start)
	switch {
	case days == 0:
		return "starts today"
	case days == 1:
		return "starts tomorrow"
	case days == -1:
		return "started yesterday"
	case days < 0:
		return fmt.Sprintf("started %d days ago", -days)
	case days < 14:
		return fmt.Sprintf("in %d days", days)
	case days < 60:
		return fmt.Sprintf("in %d weeks", days/7)
	default:
		return fmt.Sprintf("in %d months", days/30)
	}
}

func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// HumanTimestamp describes when t happened relative to now.
func HumanTimestamp(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// StatusPill returns a colored indicator for a journey status.
func StatusPill(status domain.JourneyStatus) string {
	switch status {
	case domain.JourneyPlanning:
		return StyleYellow.Render("○ Planning")
	case domain.JourneyConfirmed:
		return StyleGreen.Render("✔ Confirmed")
	default:
		return StyleDim.Render(string(status))
	}
}

// StyleBadge returns a purple label for the travel style.
func StyleBadge(s domain.TravelStyle) string {
	if s == "" {
		return StyleDim.Render("--")
	}
	label := s.Label()
	return StylePurple.Render(strings.ToUpper(label[:1]) + label[1:])
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Nights renders a night count, "1 night" or "4 nights".
func Nights(n int) string {
	if n == 1 {
		return "1 night"
	}
	return fmt.Sprintf("%d nights", n)
}
