package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parkmetrics/queuecast/internal/histstats"
)

// subsetOf builds a subset whose wait times are exactly the given values.
func subsetOf(waits ...float64) []histstats.Observation {
	out := make([]histstats.Observation, len(waits))
	for i, w := range waits {
		out[i] = histstats.Observation{WaitTime: w}
	}
	return out
}

// ========================================
// BLEND WEIGHT TESTS
// ========================================

func TestBlendOpeningLargeSubsetUsesP25(t *testing.T) {
	waits := make([]float64, 12)
	for i := range waits {
		waits[i] = 20 + float64(i)*2 // 20..42
	}
	ctx := &blendContext{
		opening: true,
		base:    30,
		res:     Resolution{Tag: SpecMonthHourDay, Subset: subsetOf(waits...), Median: 31, Count: 12},
	}

	blend(ctx)

	// p25 of 20..42 step 2 sits at position 2.75.
	assert.InDelta(t, 25.5, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.20+25.5*0.80, ctx.combined, 1e-9)
}

func TestBlendOpeningSmallSubsetUsesMedian(t *testing.T) {
	ctx := &blendContext{
		opening: true,
		base:    30,
		res:     Resolution{Tag: SpecMonthHour, Subset: subsetOf(20, 25, 30), Median: 25, Count: 3},
	}

	blend(ctx)

	assert.InDelta(t, 25, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.20+25*0.80, ctx.combined, 1e-9)
}

func TestBlendPeakUsesP75(t *testing.T) {
	ctx := &blendContext{
		peak: true,
		base: 30,
		res:  Resolution{Tag: SpecMonthHourDay, Subset: subsetOf(40, 50, 60), P75: 55, Count: 30},
	}

	blend(ctx)

	assert.InDelta(t, 55, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.30+55*0.70, ctx.combined, 1e-9)
	assert.Equal(t, SpecMonthHourDay, ctx.res.Tag)
}

func TestBlendValleyUsesMedian(t *testing.T) {
	ctx := &blendContext{
		valley: true,
		base:   30,
		res:    Resolution{Tag: SpecHour, Subset: subsetOf(10, 15, 20), Median: 15, Count: 3},
	}

	blend(ctx)

	assert.InDelta(t, 15, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.25+15*0.75, ctx.combined, 1e-9)
}

func TestBlendEmptySubsetHourAware(t *testing.T) {
	ctx := &blendContext{
		peak: true,
		base: 30,
		res:  Resolution{Tag: SpecMonthHour, Median: 40, P75: 40},
	}

	blend(ctx)

	assert.InDelta(t, 40, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.40+40*0.60, ctx.combined, 1e-9)
}

func TestBlendNoHourAwareReference(t *testing.T) {
	peak := &blendContext{
		peak: true,
		base: 30,
		res:  Resolution{Tag: SpecMonthDay, Subset: subsetOf(40, 50), P75: 47.5, Median: 45, Count: 2},
	}
	blend(peak)
	assert.InDelta(t, 47.5, peak.histBase, 1e-9)
	assert.InDelta(t, 30*0.60+47.5*0.40, peak.combined, 1e-9)

	offPeak := &blendContext{
		base: 30,
		res:  Resolution{Tag: SpecGlobal, Median: 45},
	}
	blend(offPeak)
	assert.InDelta(t, 45, offPeak.histBase, 1e-9)
	assert.InDelta(t, 30*0.60+45*0.40, offPeak.combined, 1e-9)
}

// ========================================
// SUSPICIOUS PEAK OVERRIDE TESTS
// ========================================

func suspiciousCtx(obs []histstats.Observation) *blendContext {
	return &blendContext{
		attraction: "Shambhala",
		month:      10,
		weekday:    5,
		peak:       true,
		base:       30,
		res:        Resolution{Tag: SpecMonthHour, Subset: subsetOf(8, 10, 12), P75: 11, Median: 10, Count: 3},
		obs:        obs,
	}
}

func TestBlendSuspiciousPeakRecoversFromMonthDay(t *testing.T) {
	obs := repeatObs(histstats.Observation{Attraction: "Shambhala", Month: 10, Weekday: 5}, 10, 30, 4)
	ctx := suspiciousCtx(obs)

	blend(ctx)

	// p75 of 30..66 step 4 is 57 at position 6.75.
	assert.Equal(t, SpecMonthDayFallback, ctx.res.Tag)
	assert.InDelta(t, 57, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.50+57*0.50, ctx.combined, 1e-9)
}

func TestBlendSuspiciousPeakFallsToMonthOnly(t *testing.T) {
	// Month data exists but never on the query weekday.
	obs := repeatObs(histstats.Observation{Attraction: "Shambhala", Month: 10, Weekday: 2}, 10, 30, 4)
	ctx := suspiciousCtx(obs)

	blend(ctx)

	assert.Equal(t, SpecMonthFallback, ctx.res.Tag)
	assert.InDelta(t, 57, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.50+57*0.50, ctx.combined, 1e-9)
}

func TestBlendSuspiciousPeakStaysLow(t *testing.T) {
	// The coarser grouping is just as low: keep the original reference and
	// trust the model side.
	obs := repeatObs(histstats.Observation{Attraction: "Shambhala", Month: 10, Weekday: 5}, 10, 5, 0.5)
	ctx := suspiciousCtx(obs)

	blend(ctx)

	assert.Equal(t, SpecMonthHour, ctx.res.Tag)
	assert.InDelta(t, 11, ctx.histBase, 1e-9)
	assert.InDelta(t, 30*0.70+11*0.30, ctx.combined, 1e-9)
}

func TestBlendSuspiciousPeakNotTriggeredByLargeCount(t *testing.T) {
	ctx := &blendContext{
		peak: true,
		base: 30,
		res:  Resolution{Tag: SpecMonthHour, Subset: subsetOf(8, 10, 12), P75: 11, Median: 10, Count: 40},
	}

	blend(ctx)

	// Plenty of samples back the low reference, so the normal peak weights apply.
	assert.Equal(t, SpecMonthHour, ctx.res.Tag)
	assert.InDelta(t, 30*0.30+11*0.70, ctx.combined, 1e-9)
}

// ========================================
// ADJUSTMENT CASCADE TESTS
// ========================================

func TestAdjustOpening(t *testing.T) {
	weekend := &blendContext{opening: true, weekend: true, combined: 40, res: Resolution{Tag: SpecMonthHour}}
	minutes, tag := adjust(weekend)
	assert.InDelta(t, 20, minutes, 1e-9)
	assert.Equal(t, "apertura_mes_hora", tag)

	weekday := &blendContext{opening: true, combined: 40, res: Resolution{Tag: SpecMonthHour}}
	minutes, tag = adjust(weekday)
	assert.InDelta(t, 24, minutes, 1e-9)
	assert.Equal(t, "apertura_mes_hora", tag)
}

func TestAdjustOpeningBeatsBatman(t *testing.T) {
	ctx := &blendContext{
		attraction: "Batman Gotham City Escape",
		month:      10,
		opening:    true,
		weekend:    true,
		combined:   40,
		res:        Resolution{Tag: SpecMonthHourDay},
	}

	_, tag := adjust(ctx)
	assert.Equal(t, "apertura_mes_hora_dia", tag)
}

func TestAdjustBridgeDay(t *testing.T) {
	weekend := &blendContext{bridge: true, weekend: true, combined: 40, res: Resolution{Tag: SpecHour}}
	minutes, tag := adjust(weekend)
	assert.InDelta(t, 46, minutes, 1e-9)
	assert.Equal(t, "puente_hora", tag)

	weekday := &blendContext{bridge: true, combined: 40, res: Resolution{Tag: SpecHour}}
	minutes, tag = adjust(weekday)
	assert.InDelta(t, 44, minutes, 1e-9)
	assert.Equal(t, "puente_hora", tag)
}

func TestAdjustOctoberSunday(t *testing.T) {
	peak := &blendContext{month: 10, weekday: 6, weekend: true, peak: true, combined: 40, res: Resolution{Tag: SpecMonthHour}}
	minutes, tag := adjust(peak)
	assert.InDelta(t, 44, minutes, 1e-9)
	assert.Equal(t, "octubre_domingo_mes_hora", tag)

	offPeak := &blendContext{month: 10, weekday: 6, weekend: true, combined: 40, res: Resolution{Tag: SpecMonthHour}}
	minutes, tag = adjust(offPeak)
	assert.InDelta(t, 40, minutes, 1e-9)
	assert.Equal(t, "octubre_domingo_mes_hora", tag)
}

func TestAdjustNovemberSunday(t *testing.T) {
	ctx := &blendContext{month: 11, weekday: 6, weekend: true, peak: true, combined: 40, res: Resolution{Tag: SpecHourDay}}
	minutes, tag := adjust(ctx)
	assert.InDelta(t, 43.2, minutes, 1e-9)
	assert.Equal(t, "noviembre_domingo_hora_dia", tag)
}

func TestAdjustPeakAndValley(t *testing.T) {
	peak := &blendContext{month: 5, peak: true, combined: 40, res: Resolution{Tag: SpecHour}}
	minutes, tag := adjust(peak)
	assert.InDelta(t, 42, minutes, 1e-9)
	assert.Equal(t, "hora_pico_hora", tag)

	valley := &blendContext{month: 5, valley: true, combined: 40, res: Resolution{Tag: SpecHour}}
	minutes, tag = adjust(valley)
	assert.InDelta(t, 36, minutes, 1e-9)
	assert.Equal(t, "hora_valle_hora", tag)
}

func TestAdjustIdentityBranches(t *testing.T) {
	weekend := &blendContext{month: 5, weekend: true, combined: 40, res: Resolution{Tag: SpecMonthDay}}
	minutes, tag := adjust(weekend)
	assert.InDelta(t, 40, minutes, 1e-9)
	assert.Equal(t, "fin_semana_mes_dia", tag)

	workday := &blendContext{month: 5, combined: 40, res: Resolution{Tag: SpecGlobal}}
	minutes, tag = adjust(workday)
	assert.InDelta(t, 40, minutes, 1e-9)
	assert.Equal(t, "laborable_global", tag)
}

// ========================================
// BATMAN OCTOBER TESTS
// ========================================

func batmanCtx() *blendContext {
	return &blendContext{attraction: "Batman Gotham City Escape", month: 10, res: Resolution{Tag: SpecMonthHourDay}}
}

func TestAdjustBatmanOctoberWeekendPeak(t *testing.T) {
	// Healthy reference: the strongest of four boosted candidates wins.
	ctx := batmanCtx()
	ctx.weekend, ctx.peak = true, true
	ctx.base, ctx.histBase, ctx.combined = 20, 40, 40
	ctx.res.P75 = 40

	minutes, tag := adjust(ctx)
	assert.InDelta(t, 54, minutes, 1e-9) // histBase*1.35
	assert.Equal(t, "batman_octubre_fin_semana_mes_hora_dia", tag)

	// Suspiciously low reference: boost the raw model with a floor.
	ctx = batmanCtx()
	ctx.weekend, ctx.peak = true, true
	ctx.base, ctx.histBase, ctx.combined = 20, 10, 30
	ctx.res.P75 = 10

	minutes, _ = adjust(ctx)
	assert.InDelta(t, 42, minutes, 1e-9) // combined*1.40

	// The floor applies when even the boosts stay tiny.
	ctx = batmanCtx()
	ctx.weekend, ctx.peak = true, true
	ctx.base, ctx.histBase, ctx.combined = 5, 6, 8
	ctx.res.P75 = 6

	minutes, _ = adjust(ctx)
	assert.InDelta(t, 25, minutes, 1e-9)
}

func TestAdjustBatmanOctoberWeekendOffPeak(t *testing.T) {
	ctx := batmanCtx()
	ctx.weekend = true
	ctx.base, ctx.histBase, ctx.combined = 20, 20, 30

	minutes, tag := adjust(ctx)
	assert.InDelta(t, 36, minutes, 1e-9) // combined*1.20
	assert.Equal(t, "batman_octubre_fin_semana_mes_hora_dia", tag)

	// Low reference gets the off-peak floor treatment.
	ctx = batmanCtx()
	ctx.weekend = true
	ctx.base, ctx.histBase, ctx.combined = 8, 5, 9

	minutes, _ = adjust(ctx)
	assert.InDelta(t, 15, minutes, 1e-9)
}

func TestAdjustBatmanOctoberWeekday(t *testing.T) {
	ctx := batmanCtx()
	ctx.peak = true
	ctx.base, ctx.histBase, ctx.combined = 20, 20, 30

	minutes, tag := adjust(ctx)
	assert.InDelta(t, 34.5, minutes, 1e-9) // combined*1.15
	assert.Equal(t, "batman_octubre_laborable_mes_hora_dia", tag)

	// Suspicious weekday peak.
	ctx = batmanCtx()
	ctx.peak = true
	ctx.base, ctx.histBase, ctx.combined = 20, 10, 30

	minutes, _ = adjust(ctx)
	assert.InDelta(t, 37.5, minutes, 1e-9) // combined*1.25

	// Off-peak weekday.
	ctx = batmanCtx()
	ctx.base, ctx.histBase, ctx.combined = 20, 20, 30

	minutes, _ = adjust(ctx)
	assert.InDelta(t, 33, minutes, 1e-9) // combined*1.10
}

func TestAdjustBatmanRequiresOctober(t *testing.T) {
	ctx := batmanCtx()
	ctx.month = 9
	ctx.weekend = true
	ctx.combined = 40

	_, tag := adjust(ctx)
	assert.Equal(t, "fin_semana_mes_hora_dia", tag)
}

// ========================================
// CLAMP AND ROUNDING TESTS
// ========================================

func TestAdjustClampsToRange(t *testing.T) {
	high := &blendContext{month: 5, combined: 1000, res: Resolution{Tag: SpecGlobal}}
	minutes, _ := adjust(high)
	assert.InDelta(t, 180, minutes, 1e-9)

	low := &blendContext{month: 5, combined: -10, res: Resolution{Tag: SpecGlobal}}
	minutes, _ = adjust(low)
	assert.InDelta(t, 5, minutes, 1e-9)
}

func TestAdjustRoundsToOneDecimal(t *testing.T) {
	ctx := &blendContext{month: 5, valley: true, combined: 39.37, res: Resolution{Tag: SpecHour}}
	minutes, _ := adjust(ctx)
	assert.InDelta(t, 35.4, minutes, 1e-9) // 39.37*0.90 = 35.433
}
