package domain

import "strings"

type JourneyStatus string

const (
	JourneyPlanning  JourneyStatus = "planning"
	JourneyConfirmed JourneyStatus = "confirmed"
)

type TravelStyle string

const (
	StyleDestination TravelStyle = "destination"
	StyleDriving     TravelStyle = "driving"
	StyleMotorcycle  TravelStyle = "motorcycle"
	StyleRVTrip      TravelStyle = "rv_trip"
	StyleSki         TravelStyle = "ski"
	StyleBackpacking TravelStyle = "backpacking"
	StyleCruise      TravelStyle = "cruise"
)

// ValidTravelStyles is the canonical set of accepted travel style strings.
var ValidTravelStyles = map[string]bool{
	"destination": true, "driving": true, "motorcycle": true,
	"rv_trip": true, "ski": true, "backpacking": true, "cruise": true,
}

// IsFixedStyle reports whether itineraries of this style anchor their first
// and last day to origin/destination continuity. Fixed days cannot be deleted
// or moved.
func (s TravelStyle) IsFixedStyle() bool {
	switch s {
	case StyleDriving, StyleMotorcycle, StyleRVTrip:
		return true
	default:
		return false
	}
}

// Label is the human-readable style name.
func (s TravelStyle) Label() string {
	switch s {
	case StyleRVTrip:
		return "RV trip"
	case StyleDriving:
		return "road trip"
	case StyleMotorcycle:
		return "motorcycle trip"
	case StyleSki:
		return "ski trip"
	case StyleBackpacking:
		return "backpacking trip"
	case StyleCruise:
		return "cruise"
	default:
		return "city break"
	}
}

// IsRoadTrip is an alias for IsFixedStyle used by prompt pacing rules.
func (s TravelStyle) IsRoadTrip() bool { return s.IsFixedStyle() }

type BudgetTier string

const (
	BudgetEconomy  BudgetTier = "budget"
	BudgetModerate BudgetTier = "moderate"
	BudgetLuxury   BudgetTier = "luxury"
)

// ValidBudgetTiers is the canonical set of accepted budget tier strings.
var ValidBudgetTiers = map[string]bool{
	"budget": true, "moderate": true, "luxury": true,
}

// TimeSlot is one of the five canonical activity categories every Day carries.
type TimeSlot string

const (
	SlotMorning    TimeSlot = "Morning"
	SlotLunch      TimeSlot = "Lunch"
	SlotAfternoon  TimeSlot = "Afternoon"
	SlotDinner     TimeSlot = "Dinner"
	SlotAdditional TimeSlot = "Additional"
)

// CanonicalSlots lists the time slots in their fixed display order.
var CanonicalSlots = []TimeSlot{SlotMorning, SlotLunch, SlotAfternoon, SlotDinner, SlotAdditional}

// SlotIndex returns the canonical position of slot, or -1 if it is not canonical.
func SlotIndex(slot TimeSlot) int {
	for i, s := range CanonicalSlots {
		if s == slot {
			return i
		}
	}
	return -1
}

// ParseTimeSlot matches a slot name case-insensitively.
func ParseTimeSlot(s string) (TimeSlot, bool) {
	for _, slot := range CanonicalSlots {
		if strings.EqualFold(string(slot), strings.TrimSpace(s)) {
			return slot, true
		}
	}
	return "", false
}
