package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/autosave"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorAqua   = lipgloss.Color("#689d6a")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// Slots follow the day: warm in the morning, cooler towards the evening.
var slotColors = map[domain.TimeSlot]lipgloss.Color{
	domain.SlotMorning:    ColorYellow,
	domain.SlotLunch:      ColorHeader,
	domain.SlotAfternoon:  ColorGreen,
	domain.SlotDinner:     ColorBlue,
	domain.SlotAdditional: ColorPurple,
}

const slotLabelWidth = 12

// SlotLabel renders a time slot name padded to a fixed column.
func SlotLabel(slot domain.TimeSlot) string {
	color, ok := slotColors[slot]
	if !ok {
		color = ColorAqua
	}
	return lipgloss.NewStyle().Foreground(color).Width(slotLabelWidth).Render(string(slot))
}

type indicator struct {
	style lipgloss.Style
	text  string
}

var saveIndicators = map[autosave.Status]indicator{
	autosave.StatusPending:  {StyleYellow, "● unsaved"},
	autosave.StatusSaving:   {StyleBlue, "◌ saving"},
	autosave.StatusSaved:    {StyleGreen, "✔ saved"},
	autosave.StatusRetrying: {StyleYellow, "↻ rate limited, retrying"},
	autosave.StatusError:    {StyleRed, "✖ save failed"},
}

// SaveIndicator renders the autosave state shown next to the edit prompt.
func SaveIndicator(status autosave.Status, err error) string {
	ind, ok := saveIndicators[status]
	if !ok {
		return StyleDim.Render("○ no changes")
	}
	if status == autosave.StatusError && err != nil {
		return ind.style.Render(ind.text + ": " + err.Error())
	}
	return ind.style.Render(ind.text)
}

// Header renders an uppercased section title over a rule of the same width.
func Header(text string) string {
	upper := strings.ToUpper(text)
	rule := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(rule))
}

func Dim(text string) string { return StyleDim.Render(text) }

func Bold(text string) string { return StyleBold.Render(text) }
