package predictor

import (
	"math"

	"github.com/parkmetrics/queuecast/internal/histstats"
)

// Blend weights by context: how much the historical reference counts versus
// the regressor output.
const (
	weightHistOpening  = 0.80
	weightHistPeak     = 0.70
	weightHistValley   = 0.75
	weightHistNoSubset = 0.60 // hour-aware tag but empty reference subset
	weightHistNoHour   = 0.40 // no hour-aware reference available

	// Suspicious-peak overrides: weights used after re-resolution when the
	// hour-level reference looks too low for a peak hour.
	weightHistSuspicious = 0.30
	weightHistRecovered  = 0.50
)

// Empirically tuned thresholds from the production model. Calibrated against
// real data rather than derived; treat as configuration, not invariants.
const (
	suspiciousP75      = 15.0 // a peak-hour p75 below this is suspect
	suspiciousCount    = 20   // ...when backed by fewer samples than this
	openingQuantileMin = 10   // subset size needed to trust the p25 at opening
)

// Contextual adjustment multipliers.
const (
	openingWeekendFactor = 0.50
	openingWeekdayFactor = 0.60

	bridgeWeekendFactor = 1.15
	bridgeWeekdayFactor = 1.10

	octoberSundayPeakFactor  = 1.10
	novemberSundayPeakFactor = 1.08

	peakFactor   = 1.05
	valleyFactor = 0.90
)

// Franchise-event (Batman October) boost constants.
const (
	batmanPeakWeekendBaseBoost     = 1.50
	batmanPeakWeekendCombinedBoost = 1.40
	batmanPeakWeekendFloor         = 25.0
	batmanOffPeakWeekendFloor      = 15.0
	batmanPeakWeekdayFloor         = 20.0
)

// Final output bounds in minutes.
const (
	minMinutes = 5.0
	maxMinutes = 180.0
)

// blendContext carries everything the weighting step and the adjustment
// cascade read and (for the re-resolution tag) write.
type blendContext struct {
	attraction string
	month      int
	weekday    int
	weekend    bool
	bridge     bool

	opening bool
	peak    bool
	valley  bool

	base     float64 // raw regressor output
	histBase float64
	combined float64

	res Resolution

	// obs is the full observation set, consulted by the suspicious-peak
	// override when it re-resolves against a coarser grouping.
	obs []histstats.Observation
}

// blend picks the historical base and weights from the hour class and the
// specificity of the resolved reference, applies the suspicious-low override
// for peak hours, and combines model and historical estimates.
func blend(ctx *blendContext) {
	if hourAwareSpecificity(ctx.res.Tag) {
		if len(ctx.res.Subset) > 0 {
			switch {
			case ctx.opening:
				// The park just opened: lean on the low end of the reference.
				if len(ctx.res.Subset) > openingQuantileMin {
					ctx.histBase = histstats.Quantile(histstats.WaitTimes(ctx.res.Subset), 0.25)
				} else {
					ctx.histBase = ctx.res.Median
				}
				ctx.combine(weightHistOpening)
			case ctx.peak:
				ctx.histBase = ctx.res.P75
				if ctx.res.P75 < suspiciousP75 && ctx.res.Count < suspiciousCount {
					blendSuspiciousPeak(ctx)
				} else {
					ctx.combine(weightHistPeak)
				}
			default:
				ctx.histBase = ctx.res.Median
				ctx.combine(weightHistValley)
			}
		} else {
			ctx.histBase = ctx.res.Median
			ctx.combine(weightHistNoSubset)
		}
		return
	}

	// No hour-aware reference: trust the model more, nudge with the general
	// historical statistic.
	if ctx.peak {
		ctx.histBase = ctx.res.P75
	} else {
		ctx.histBase = ctx.res.Median
	}
	ctx.combine(weightHistNoHour)
}

// blendSuspiciousPeak re-resolves a suspiciously low peak-hour reference
// against a less specific but larger grouping before deciding how much to
// trust the historical side.
func blendSuspiciousPeak(ctx *blendContext) {
	monthDay := histstats.Filter(ctx.obs, func(o histstats.Observation) bool {
		return o.Attraction == ctx.attraction && o.Month == ctx.month && o.Weekday == ctx.weekday
	})
	monthOnly := histstats.Filter(ctx.obs, func(o histstats.Observation) bool {
		return o.Attraction == ctx.attraction && o.Month == ctx.month
	})

	if len(monthDay) > 0 {
		p75Alt := histstats.Quantile(histstats.WaitTimes(monthDay), 0.75)
		if p75Alt > ctx.res.P75 {
			ctx.histBase = p75Alt
			ctx.res.Tag = SpecMonthDayFallback
		}
	} else if len(monthOnly) > 0 {
		p75Alt := histstats.Quantile(histstats.WaitTimes(monthOnly), 0.75)
		if p75Alt > ctx.res.P75 {
			ctx.histBase = p75Alt
			ctx.res.Tag = SpecMonthFallback
		}
	}

	if ctx.histBase < suspiciousP75 {
		ctx.combine(weightHistSuspicious)
	} else {
		ctx.combine(weightHistRecovered)
	}
}

func (ctx *blendContext) combine(histWeight float64) {
	ctx.combined = ctx.base*(1-histWeight) + ctx.histBase*histWeight
}

// adjustmentRule is one branch of the contextual correction cascade. Rules
// are evaluated in order; the first match wins and exactly one always fires.
type adjustmentRule struct {
	matches func(*blendContext) bool
	apply   func(*blendContext) (minutes float64, tag string)
}

// adjustmentRules is the fixed-priority cascade: opening-hour dampening,
// franchise-event boosts, bridge days, special month/Sunday combos, general
// peak/valley nudges, then the weekend and weekday identity branches.
var adjustmentRules = []adjustmentRule{
	{
		matches: func(c *blendContext) bool { return c.opening },
		apply: func(c *blendContext) (float64, string) {
			factor := openingWeekdayFactor
			if c.weekend {
				factor = openingWeekendFactor
			}
			return c.combined * factor, "apertura_" + c.res.Tag
		},
	},
	{
		matches: func(c *blendContext) bool { return isBatmanOctober(c.attraction, c.month) },
		apply:   applyBatmanOctober,
	},
	{
		matches: func(c *blendContext) bool { return c.bridge },
		apply: func(c *blendContext) (float64, string) {
			factor := bridgeWeekdayFactor
			if c.weekend {
				factor = bridgeWeekendFactor
			}
			return c.combined * factor, "puente_" + c.res.Tag
		},
	},
	{
		matches: func(c *blendContext) bool { return c.month == 10 && c.weekday == 6 },
		apply: func(c *blendContext) (float64, string) {
			minutes := c.combined
			if c.peak {
				minutes = c.combined * octoberSundayPeakFactor
			}
			return minutes, "octubre_domingo_" + c.res.Tag
		},
	},
	{
		matches: func(c *blendContext) bool { return c.month == 11 && c.weekday == 6 },
		apply: func(c *blendContext) (float64, string) {
			minutes := c.combined
			if c.peak {
				minutes = c.combined * novemberSundayPeakFactor
			}
			return minutes, "noviembre_domingo_" + c.res.Tag
		},
	},
	{
		matches: func(c *blendContext) bool { return c.peak },
		apply: func(c *blendContext) (float64, string) {
			return c.combined * peakFactor, "hora_pico_" + c.res.Tag
		},
	},
	{
		matches: func(c *blendContext) bool { return c.valley },
		apply: func(c *blendContext) (float64, string) {
			return c.combined * valleyFactor, "hora_valle_" + c.res.Tag
		},
	},
	{
		matches: func(c *blendContext) bool { return c.weekend },
		apply: func(c *blendContext) (float64, string) {
			return c.combined, "fin_semana_" + c.res.Tag
		},
	},
	{
		matches: func(c *blendContext) bool { return true },
		apply: func(c *blendContext) (float64, string) {
			return c.combined, "laborable_" + c.res.Tag
		},
	},
}

// applyBatmanOctober implements the franchise special-event boosts. When the
// historical reference itself looks implausibly low the model output gets an
// aggressive boost with an absolute floor; otherwise a gentler blend of
// boosted candidates is taken.
func applyBatmanOctober(c *blendContext) (float64, string) {
	var minutes float64
	if c.weekend {
		if c.peak {
			if c.res.P75 < suspiciousP75 || c.histBase < suspiciousP75 {
				minutes = max3(c.base*batmanPeakWeekendBaseBoost, c.combined*batmanPeakWeekendCombinedBoost, batmanPeakWeekendFloor)
			} else {
				minutes = max4(c.combined*1.30, c.res.P75*1.25, c.histBase*1.35, c.base*1.25)
			}
		} else {
			if c.histBase < 10 {
				minutes = max3(c.base*1.30, c.combined*1.20, batmanOffPeakWeekendFloor)
			} else {
				minutes = math.Max(c.combined*1.20, c.histBase*1.25)
			}
		}
		return minutes, "batman_octubre_fin_semana_" + c.res.Tag
	}

	if c.peak {
		if c.histBase < suspiciousP75 {
			minutes = max3(c.base*1.35, c.combined*1.25, batmanPeakWeekdayFloor)
		} else {
			minutes = math.Max(c.combined*1.15, c.histBase*1.20)
		}
	} else {
		minutes = math.Max(c.combined*1.10, c.histBase*1.15)
	}
	return minutes, "batman_octubre_laborable_" + c.res.Tag
}

// finalize clamps to the valid range and rounds to one decimal.
func finalize(minutes float64) float64 {
	minutes = math.Max(minMinutes, math.Min(maxMinutes, minutes))
	return math.Round(minutes*10) / 10
}

// adjust runs the cascade and returns the final minutes plus the audit tag.
func adjust(ctx *blendContext) (float64, string) {
	for _, rule := range adjustmentRules {
		if rule.matches(ctx) {
			minutes, tag := rule.apply(ctx)
			return finalize(minutes), tag
		}
	}
	// Unreachable: the last rule always matches.
	return finalize(ctx.combined), "laborable_" + ctx.res.Tag
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func max4(a, b, c, d float64) float64 {
	return math.Max(math.Max(a, b), math.Max(c, d))
}
