package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/cli/formatter"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

var (
	travelStyles = []domain.TravelStyle{
		domain.StyleDestination, domain.StyleDriving, domain.StyleMotorcycle,
		domain.StyleRVTrip, domain.StyleSki, domain.StyleBackpacking, domain.StyleCruise,
	}
	budgetTiers = []domain.BudgetTier{domain.BudgetEconomy, domain.BudgetModerate, domain.BudgetLuxury}
)

// itineraHuhTheme matches huh forms to the formatter palette.
func itineraHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// journeyInput collects the attributes of a new journey from flags or a form.
type journeyInput struct {
	Name        string
	Destination string
	Origin      string
	Style       string
	Budget      string
	Interests   string
	Notes       string
	Start       string
	Travelers   int
	Nights      int
}

// journeyFlagSet binds the journey attribute flags to in.
func journeyFlagSet(in *journeyInput) *pflag.FlagSet {
	fs := pflag.NewFlagSet("journey", pflag.ContinueOnError)
	fs.StringVar(&in.Destination, "destination", "", "Where the trip goes")
	fs.StringVar(&in.Origin, "origin", "", "Starting point (required for driving, motorcycle and rv_trip)")
	fs.StringVar(&in.Name, "name", "", "Journey name (default \"Trip to <destination>\")")
	fs.StringVar(&in.Style, "style", string(domain.StyleDestination), "Travel style ("+joinStyles()+")")
	fs.StringVar(&in.Budget, "budget", string(domain.BudgetModerate), "Budget tier (budget|moderate|luxury)")
	fs.StringVar(&in.Interests, "interests", "", "Comma-separated interests")
	fs.StringVar(&in.Notes, "notes", "", "Free-form notes for the planner")
	fs.StringVar(&in.Start, "start", "", "Start date (YYYY-MM-DD)")
	fs.IntVar(&in.Travelers, "travelers", 1, "Number of travelers")
	fs.IntVarP(&in.Nights, "nights", "n", 3, "Trip length in nights")
	return fs
}

func joinStyles() string {
	return strings.Join(lo.Map(travelStyles, func(s domain.TravelStyle, _ int) string { return string(s) }), "|")
}

// toJourney converts the input into an unsaved journey.
func (in journeyInput) toJourney() (*domain.Journey, error) {
	j := &domain.Journey{
		Name:              strings.TrimSpace(in.Name),
		Destination:       strings.TrimSpace(in.Destination),
		Origin:            strings.TrimSpace(in.Origin),
		Style:             domain.TravelStyle(strings.ToLower(strings.TrimSpace(in.Style))),
		Budget:            domain.BudgetTier(strings.ToLower(strings.TrimSpace(in.Budget))),
		Notes:             strings.TrimSpace(in.Notes),
		Travelers:         in.Travelers,
		PreferredDuration: in.Nights,
	}
	if in.Interests != "" {
		j.Interests = strings.Split(in.Interests, ",")
	}
	if in.Start != "" {
		start, err := time.Parse(dateLayout, in.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: use YYYY-MM-DD", in.Start)
		}
		j.StartDate = &start
	}
	return j, nil
}

// journeyForm asks for the attributes of a new journey. Numeric fields are
// collected as text and copied into in by the caller.
func journeyForm(in *journeyInput, travelers, nights *string) *huh.Form {
	styleOptions := lo.Map(travelStyles, func(s domain.TravelStyle, _ int) huh.Option[string] {
		return huh.NewOption(s.Label(), string(s))
	})
	budgetOptions := lo.Map(budgetTiers, func(b domain.BudgetTier, _ int) huh.Option[string] {
		return huh.NewOption(string(b), string(b))
	})

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Destination").
				Placeholder("Lisbon").
				Value(&in.Destination).
				Validate(validateRequired("destination")),
			huh.NewSelect[string]().
				Title("Travel Style").
				Options(styleOptions...).
				Value(&in.Style),
			huh.NewInput().
				Title("Starting From").
				Description("Required for road trips").
				Value(&in.Origin),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Travelers").
				Value(travelers).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Nights").
				Value(nights).
				Validate(validateNonNegativeInt),
			huh.NewSelect[string]().
				Title("Budget").
				Options(budgetOptions...).
				Value(&in.Budget),
			dateInput("Start Date (YYYY-MM-DD, blank for none)", &in.Start),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Interests").
				Placeholder("food, history, hiking").
				Value(&in.Interests),
			huh.NewText().
				Title("Notes").
				Value(&in.Notes),
			huh.NewInput().
				Title("Name").
				Description("Blank for \"Trip to <destination>\"").
				Value(&in.Name),
		),
	).WithTheme(itineraHuhTheme()).WithShowHelp(false)
}

// dateInput returns a huh.Input for an optional date field with YYYY-MM-DD validation.
func dateInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("2026-06-30").
		Value(value).
		Validate(validateOptionalDate)
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// validatePositiveInt accepts empty or a positive integer.
func validatePositiveInt(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

// validateNonNegativeInt accepts empty or a non-negative integer.
func validateNonNegativeInt(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// parseIntOr parses s, returning fallback when s is empty or invalid. Form
// validation has already run, so fallback only covers blank fields.
func parseIntOr(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}
