package predictor

import (
	"github.com/parkmetrics/queuecast/internal/artifacts"
	"github.com/parkmetrics/queuecast/internal/histstats"
)

// Resolution is the outcome of the specificity cascade: the most specific
// non-empty historical subset for a query, its summary statistics, and the
// tag naming which grouping supplied them.
type Resolution struct {
	Tag     string
	Subset  []histstats.Observation
	P75     float64
	Median  float64
	P90     float64
	Count   int
	HourInt int // may differ from the query hour after the +/-1h retry
}

// resolve walks the fixed priority cascade for (attraction, month, hour,
// weekday). Groupings that include the hour dimension are preferred; each
// step strictly loosens the previous criteria, terminating at the global
// dataset. The resolver never fails: an empty subset yields the global
// median for every statistic.
func resolve(b *artifacts.Bundle, attraction string, month, hourInt, weekday int) Resolution {
	idx := b.Index

	hasMonthHour := idx.MonthHour.Has(histstats.Key{Attraction: attraction, Month: month, Hour: hourInt})
	hasMonthHourDay := hasMonthHour &&
		idx.MonthWeekday.Has(histstats.Key{Attraction: attraction, Month: month, Weekday: weekday})
	hasHourDay := idx.HourWeekday.Has(histstats.Key{Attraction: attraction, Hour: hourInt, Weekday: weekday})

	// The hour-only lookup retries at +/-1h before giving up on hourly data.
	hourInt, hasHour := idx.NearestHourWithData(attraction, hourInt)

	var subset []histstats.Observation
	var tag string

	switch {
	case hasMonthHourDay:
		subset = histstats.Filter(b.Observations, func(o histstats.Observation) bool {
			return o.Attraction == attraction && o.Month == month && o.HourInt == hourInt && o.Weekday == weekday
		})
		tag = SpecMonthHourDay
	case hasHourDay:
		subset = histstats.Filter(b.Observations, func(o histstats.Observation) bool {
			return o.Attraction == attraction && o.HourInt == hourInt && o.Weekday == weekday
		})
		tag = SpecHourDay
	case hasMonthHour:
		subset = histstats.Filter(b.Observations, func(o histstats.Observation) bool {
			return o.Attraction == attraction && o.Month == month && o.HourInt == hourInt
		})
		tag = SpecMonthHour
	case hasHour:
		subset = histstats.Filter(b.Observations, func(o histstats.Observation) bool {
			return o.Attraction == attraction && o.HourInt == hourInt
		})
		tag = SpecHour
	default:
		// No hour-level data anywhere: fall back through the date-only groupings.
		monthDay := histstats.Filter(b.Observations, func(o histstats.Observation) bool {
			return o.Attraction == attraction && o.Month == month && o.Weekday == weekday
		})
		day := histstats.Filter(b.Observations, func(o histstats.Observation) bool {
			return o.Attraction == attraction && o.Weekday == weekday
		})
		monthOnly := histstats.Filter(b.Observations, func(o histstats.Observation) bool {
			return o.Attraction == attraction && o.Month == month
		})

		switch {
		case len(monthDay) > 0:
			subset, tag = monthDay, SpecMonthDay
		case len(day) > 0:
			subset, tag = day, SpecDay
		case len(monthOnly) > 0:
			subset, tag = monthOnly, SpecMonth
		default:
			subset, tag = nil, SpecGlobal
		}
	}

	res := Resolution{Tag: tag, Subset: subset, HourInt: hourInt}
	if len(subset) > 0 {
		waits := histstats.WaitTimes(subset)
		res.P75 = histstats.Quantile(waits, 0.75)
		res.Median = histstats.Quantile(waits, 0.50)
		res.P90 = histstats.Quantile(waits, 0.90)
		res.Count = len(subset)
	} else {
		globalMedian := idx.Global.Median
		res.P75 = globalMedian
		res.Median = globalMedian
		res.P90 = globalMedian
		res.Count = 0
	}
	return res
}
