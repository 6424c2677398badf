package domain

// PlaceholderActivity is the description used when a slot has no content yet.
const PlaceholderActivity = "To be planned. Refine this day to fill in details."

// Placeholder text for a day that exists structurally but has not been
// planned in detail yet.
const (
	PlaceholderDayTitle       = "New Day"
	PlaceholderDayDescription = "Newly added day. Refine it to fill in the details."
)

// Activity is one time-slot entry of a Day.
type Activity struct {
	Time        TimeSlot `json:"time"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

// Day is one calendar day of a Proposal. ID is assigned once and survives
// every refinement of the day; Number always mirrors the array position.
type Day struct {
	ID          string     `json:"id"`
	Number      int        `json:"day"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Activities  []Activity `json:"activities"`
}

// Proposal is one candidate itinerary of a Journey.
type Proposal struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Days    []Day  `json:"daily_itinerary"`
}

// Activity returns the activity for slot and whether it was present.
func (d *Day) Activity(slot TimeSlot) (Activity, bool) {
	for _, a := range d.Activities {
		if a.Time == slot {
			return a, true
		}
	}
	return Activity{}, false
}

// IsBlank reports whether an activity carries no usable content.
func (a Activity) IsBlank() bool {
	return a.Name == "" && a.Description == ""
}

// NormalizeActivities returns exactly five activities in canonical order.
// The first non-blank entry for each slot in acts wins; missing slots are
// taken from fallback, and only then from placeholder text.
func NormalizeActivities(acts []Activity, fallback []Activity) []Activity {
	out := make([]Activity, len(CanonicalSlots))
	for i, slot := range CanonicalSlots {
		if a, ok := findSlot(acts, slot); ok {
			out[i] = a
			continue
		}
		if a, ok := findSlot(fallback, slot); ok {
			out[i] = a
			continue
		}
		out[i] = Activity{Time: slot, Name: string(slot), Description: PlaceholderActivity}
	}
	return out
}

func findSlot(acts []Activity, slot TimeSlot) (Activity, bool) {
	for _, a := range acts {
		if a.Time == slot && !a.IsBlank() {
			return a, true
		}
	}
	return Activity{}, false
}

// HasCanonicalSlots reports whether the day holds exactly the five canonical
// slots in order.
func (d *Day) HasCanonicalSlots() bool {
	if len(d.Activities) != len(CanonicalSlots) {
		return false
	}
	for i, slot := range CanonicalSlots {
		if d.Activities[i].Time != slot {
			return false
		}
	}
	return true
}

// NewPlaceholderDay returns an unplanned day with a fresh identifier.
func NewPlaceholderDay(id string) Day {
	return Day{
		ID:          id,
		Title:       PlaceholderDayTitle,
		Description: PlaceholderDayDescription,
		Activities:  NormalizeActivities(nil, nil),
	}
}

// IsPlaceholder reports whether the day still carries the placeholder title.
func (d *Day) IsPlaceholder() bool {
	return d.Title == PlaceholderDayTitle
}

// Clone returns a deep copy of the day.
func (d Day) Clone() Day {
	c := d
	c.Activities = append([]Activity(nil), d.Activities...)
	return c
}

// Clone returns a deep copy of the proposal.
func (p Proposal) Clone() Proposal {
	c := p
	c.Days = make([]Day, len(p.Days))
	for i, d := range p.Days {
		c.Days[i] = d.Clone()
	}
	return c
}

// Renumber rewrites every Day.Number to match its 1-based array position.
func (p *Proposal) Renumber() {
	for i := range p.Days {
		p.Days[i].Number = i + 1
	}
}

// DayIndex returns the array index of the day with the given identifier, or -1.
func (p *Proposal) DayIndex(dayID string) int {
	for i, d := range p.Days {
		if d.ID == dayID {
			return i
		}
	}
	return -1
}

// Nights is the canonical trip length: one fewer than the number of days.
func (p *Proposal) Nights() int {
	if len(p.Days) == 0 {
		return 0
	}
	return len(p.Days) - 1
}
