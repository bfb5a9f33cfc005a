package temporal

import "time"

// fixedHoliday is a national holiday that falls on the same date every year.
type fixedHoliday struct {
	Month time.Month
	Day   int
}

// Spanish national fixed-date holidays. Moving holidays (Easter) are not
// modeled; only these dates matter for the park's attendance spikes.
var nationalHolidays = []fixedHoliday{
	{time.January, 1},   // Año Nuevo
	{time.January, 6},   // Reyes
	{time.May, 1},       // Día del Trabajo
	{time.October, 12},  // Día de la Hispanidad
	{time.November, 1},  // Todos los Santos
	{time.December, 6},  // Constitución
	{time.December, 8},  // Inmaculada
	{time.December, 25}, // Navidad
}

// IsHoliday reports whether the date is a fixed-date national holiday.
func IsHoliday(date time.Time) bool {
	for _, h := range nationalHolidays {
		if date.Month() == h.Month && date.Day() == h.Day {
			return true
		}
	}
	return false
}

// IsBridgeDay reports whether the date is a holiday or sits next to one in a
// way that extends a weekend: a Friday before a holiday, a Monday after one,
// or a Sunday following a Saturday holiday.
func IsBridgeDay(date time.Time) bool {
	if IsHoliday(date) {
		return true
	}
	prev := date.AddDate(0, 0, -1)
	next := date.AddDate(0, 0, 1)
	switch WeekdayIndex(date) {
	case 4: // Friday
		return IsHoliday(next)
	case 0: // Monday
		return IsHoliday(prev)
	case 6: // Sunday
		return IsHoliday(prev)
	}
	return false
}
