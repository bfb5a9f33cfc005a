package temporal

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultHour is substituted when a clock time cannot be parsed.
const DefaultHour = 12.0

// Season tiers, highest demand first.
const (
	SeasonLow      = 0
	SeasonMedium   = 1
	SeasonHigh     = 2
	SeasonVeryHigh = 3
)

// Features holds every calendar-derived value the regressor consumes.
// It is a pure function of date and clock time and is recomputed per request.
type Features struct {
	Hour       float64
	Month      int
	DayOfMonth int
	Weekday    int // Monday=0 .. Sunday=6
	WeekOfYear int
	Quarter    int
	Year       int

	IsMonday    bool
	IsTuesday   bool
	IsWednesday bool
	IsThursday  bool
	IsFriday    bool
	IsSaturday  bool
	IsSunday    bool
	IsWeekend   bool
	IsWorkday   bool

	MonthFlags [12]bool // MonthFlags[0] == January

	Season int

	HourSin       float64
	HourCos       float64
	MonthSin      float64
	MonthCos      float64
	WeekdaySin    float64
	WeekdayCos    float64
	DayOfMonthSin float64
	DayOfMonthCos float64
	WeekSin       float64
	WeekCos       float64

	HourMonth     float64
	HourWeekday   float64
	MonthWeekday  float64
	WeekendMonth  float64
	SeasonWeekday float64
}

// ParseClock parses "HH:MM[:SS]" or a bare numeric hour into a fractional
// hour (12:15 -> 12.25). It never fails: unparsable input yields DefaultHour
// with fallback=true so callers can observe that the default fired.
func ParseClock(s string) (hour float64, fallback bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultHour, true
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		h, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return DefaultHour, true
		}
		minute := 0.0
		if len(parts) > 1 && parts[1] != "" {
			m, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return DefaultHour, true
			}
			minute = m
		}
		h = float64(int(h)) + float64(int(minute))/60.0
		if h < 0 || h >= 24 {
			return DefaultHour, true
		}
		return h, false
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h < 0 || h >= 24 {
		return DefaultHour, true
	}
	return float64(int(h)), false
}

// ParseDate parses "YYYY-MM-DD". Unparsable dates fall back to the current
// day, mirroring the best-effort contract of the prediction pipeline.
func ParseDate(s string) (date time.Time, fallback bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Now(), true
	}
	return t, false
}

// WeekdayIndex maps a date to the ISO weekday index, Monday=0.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Season returns the demand tier for a month. July/August and October are the
// park's strongest months (summer and the Halloween season).
func Season(month int) int {
	switch {
	case month == 7 || month == 8:
		return SeasonVeryHigh
	case month == 10:
		return SeasonVeryHigh
	case month == 4 || month == 5 || month == 6 || month == 12:
		return SeasonHigh
	case month == 3 || month == 9 || month == 11:
		return SeasonMedium
	default:
		return SeasonLow
	}
}

// Hour-of-day classification. The 16-18 window intentionally falls into none
// of the three classes; downstream rules treat it as the plain weekday case.
func IsOpeningHour(hourInt int) bool { return hourInt >= 10 && hourInt < 11 }
func IsPeakHour(hourInt int) bool    { return hourInt >= 11 && hourInt <= 16 }
func IsValleyHour(hourInt int) bool  { return hourInt < 10 || hourInt > 18 }

func cyclical(value, period float64) (sin, cos float64) {
	return math.Sin(2 * math.Pi * value / period), math.Cos(2 * math.Pi * value / period)
}

// Derive computes the full temporal feature set for a date and fractional hour.
func Derive(date time.Time, hour float64) Features {
	weekday := WeekdayIndex(date)
	_, week := date.ISOWeek()
	month := int(date.Month())
	season := Season(month)

	f := Features{
		Hour:       hour,
		Month:      month,
		DayOfMonth: date.Day(),
		Weekday:    weekday,
		WeekOfYear: week,
		Quarter:    (month-1)/3 + 1,
		Year:       date.Year(),

		IsMonday:    weekday == 0,
		IsTuesday:   weekday == 1,
		IsWednesday: weekday == 2,
		IsThursday:  weekday == 3,
		IsFriday:    weekday == 4,
		IsSaturday:  weekday == 5,
		IsSunday:    weekday == 6,
		IsWeekend:   weekday == 5 || weekday == 6,
		IsWorkday:   weekday <= 4,

		Season: season,
	}
	f.MonthFlags[month-1] = true

	f.HourSin, f.HourCos = cyclical(hour, 24)
	f.MonthSin, f.MonthCos = cyclical(float64(month), 12)
	f.WeekdaySin, f.WeekdayCos = cyclical(float64(weekday), 7)
	f.DayOfMonthSin, f.DayOfMonthCos = cyclical(float64(f.DayOfMonth), 31)
	f.WeekSin, f.WeekCos = cyclical(float64(week), 52)

	weekend := 0.0
	if f.IsWeekend {
		weekend = 1.0
	}
	f.HourMonth = hour * float64(month)
	f.HourWeekday = hour * float64(weekday)
	f.MonthWeekday = float64(month) * float64(weekday)
	f.WeekendMonth = weekend * float64(month)
	f.SeasonWeekday = float64(season) * float64(weekday)

	return f
}
