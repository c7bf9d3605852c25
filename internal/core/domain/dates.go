package domain

import "time"

// DaysOfWeek is Monday-first, matching the analytics aggregation order.
var DaysOfWeek = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
	SlotNight     = "night"
)

// TimeSlots in fixed enumeration order; comparisons over slots must iterate
// this slice so that ties resolve deterministically.
var TimeSlots = []string{SlotMorning, SlotAfternoon, SlotEvening, SlotNight}

// StartOfDay truncates a timestamp to its UTC calendar-day boundary.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth truncates a timestamp to the first day of its month, UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// DayName returns the English weekday name of t.
func DayName(t time.Time) string {
	// time.Weekday is Sunday-based; shift to the Monday-first table.
	return DaysOfWeek[(int(t.UTC().Weekday())+6)%7]
}

// TimeSlotForHour maps an hour of day to one of the four analysis slots.
// Night wraps past midnight: [22,24) and [0,6).
func TimeSlotForHour(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return SlotMorning
	case hour >= 12 && hour < 18:
		return SlotAfternoon
	case hour >= 18 && hour < 22:
		return SlotEvening
	default:
		return SlotNight
	}
}
