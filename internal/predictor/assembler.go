package predictor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/parkmetrics/queuecast/internal/artifacts"
	"github.com/parkmetrics/queuecast/internal/histstats"
	"github.com/parkmetrics/queuecast/internal/temporal"
)

// weatherDefaultCode is assumed when the request omits the weather code.
const weatherDefaultCode = 3

// assembleInput is everything the assembler needs beyond the bundle: the
// already-parsed temporal context and the (possibly defaulted) weather.
type assembleInput struct {
	Attraction string
	Zone       string
	Date       time.Time
	Hour       float64

	Temperature float64
	Humidity    float64
	FeelsLike   float64
	WeatherCode int
}

// assemble builds the named feature map, projects it onto the exact column
// order recorded at training time (missing engineered columns zero-filled)
// and applies the fitted scaler. The feature names must match the training
// pipeline's column names byte for byte, which is why they stay in the
// training job's vocabulary.
func assemble(b *artifacts.Bundle, in assembleInput) ([]float64, error) {
	f := temporal.Derive(in.Date, in.Hour)
	hourInt := int(in.Hour)

	opening := temporal.IsOpeningHour(hourInt)
	peak := temporal.IsPeakHour(hourInt)
	valleyMorning := hourInt < 10
	valleyEvening := hourInt > 18

	holiday := temporal.IsHoliday(in.Date)
	bridge := temporal.IsBridgeDay(in.Date)

	goodWeather := in.WeatherCode >= 1 && in.WeatherCode <= 3
	badWeather := in.WeatherCode > 3

	global := b.Index.Global
	features := map[string]float64{
		"hora":           in.Hour,
		"mes":            float64(f.Month),
		"dia_mes":        float64(f.DayOfMonth),
		"dia_semana_num": float64(f.Weekday),
		"semana_año":     float64(f.WeekOfYear),
		"trimestre":      float64(f.Quarter),
		"año":            float64(f.Year),

		"es_lunes":         b2f(f.IsMonday),
		"es_martes":        b2f(f.IsTuesday),
		"es_miercoles":     b2f(f.IsWednesday),
		"es_jueves":        b2f(f.IsThursday),
		"es_viernes":       b2f(f.IsFriday),
		"es_sabado":        b2f(f.IsSaturday),
		"es_domingo":       b2f(f.IsSunday),
		"es_fin_de_semana": b2f(f.IsWeekend),
		"es_dia_laborable": b2f(f.IsWorkday),

		"temporada": float64(f.Season),

		"hora_sin":       f.HourSin,
		"hora_cos":       f.HourCos,
		"mes_sin":        f.MonthSin,
		"mes_cos":        f.MonthCos,
		"dia_semana_sin": f.WeekdaySin,
		"dia_semana_cos": f.WeekdayCos,
		"dia_mes_sin":    f.DayOfMonthSin,
		"dia_mes_cos":    f.DayOfMonthCos,
		"semana_año_sin": f.WeekSin,
		"semana_año_cos": f.WeekCos,

		"hora_mes":             f.HourMonth,
		"hora_dia_semana":      f.HourWeekday,
		"mes_dia_semana":       f.MonthWeekday,
		"fin_semana_mes":       f.WeekendMonth,
		"temporada_dia_semana": f.SeasonWeekday,

		"temperatura":       in.Temperature,
		"humedad":           in.Humidity,
		"sensacion_termica": in.FeelsLike,
		"codigo_clima":      float64(in.WeatherCode),
		"es_buen_clima":     b2f(goodWeather),
		"es_mal_clima":      b2f(badWeather),

		"is_batman_octubre":       b2f(isBatmanOctober(in.Attraction, f.Month)),
		"is_octubre":              b2f(f.Month == 10),
		"is_noviembre":            b2f(f.Month == 11),
		"is_octubre_fin_semana":   b2f(f.Month == 10 && f.IsWeekend),
		"is_noviembre_fin_semana": b2f(f.Month == 11 && f.IsWeekend),

		"hora_int":             float64(hourInt),
		"es_hora_apertura":     b2f(opening),
		"es_hora_pico":         b2f(peak),
		"es_hora_valle_manana": b2f(valleyMorning),
		"es_hora_valle_tarde":  b2f(valleyEvening),
		"es_hora_valle":        b2f(valleyMorning || valleyEvening),

		"es_festivo": b2f(holiday),
		"es_puente":  b2f(bridge),

		"hora_apertura_fin_semana": b2f(opening) * b2f(f.IsWeekend),
		"hora_pico_puente":         b2f(peak) * b2f(bridge),
		"puente_fin_semana":        b2f(bridge) * b2f(f.IsWeekend),

		"zona_enc":      b.Encodings.TargetValue("zona", in.Zone, global.Mean),
		"atraccion_enc": b.Encodings.TargetValue("atraccion", in.Attraction, global.Mean),
	}

	for m := 1; m <= 12; m++ {
		features["es_mes_"+strconv.Itoa(m)] = b2f(f.Month == m)
	}

	addHistFeatures(features, b, in.Attraction, f.Month, hourInt, f.Weekday)

	// Frequency encodings only exist when the training run produced them.
	if columnPresent(b.Columns, "zona_freq") {
		features["zona_freq"] = float64(b.Encodings.FreqValue("zona", in.Zone))
	}
	if columnPresent(b.Columns, "atraccion_freq") {
		features["atraccion_freq"] = float64(b.Encodings.FreqValue("atraccion", in.Attraction))
	}

	// Replay the training column order verbatim; anything the map does not
	// carry is zero-filled, matching the training pipeline's convention.
	vector := make([]float64, len(b.Columns))
	for i, col := range b.Columns {
		vector[i] = features[col]
	}

	scaled, err := b.Scaler.Transform(vector)
	if err != nil {
		return nil, fmt.Errorf("scale feature vector: %w", err)
	}
	return scaled, nil
}

// addHistFeatures fills the six groups of historical aggregate columns,
// substituting dataset-wide statistics per column when a grouping has no row
// for the key.
func addHistFeatures(features map[string]float64, b *artifacts.Bundle, attraction string, month, hourInt, weekday int) {
	idx := b.Index
	global := idx.Global

	put := func(suffix string, s histstats.Stats, ok, withP95 bool) {
		if !ok {
			s = histstats.Stats{
				Mean:   global.Mean,
				Median: global.Median,
				Std:    global.Std,
				P75:    global.P75,
				P90:    global.P90,
				P95:    global.P95,
			}
		}
		features["count_"+suffix] = float64(s.Count)
		features["mean_"+suffix] = s.Mean
		features["median_"+suffix] = s.Median
		features["std_"+suffix] = s.Std
		features["p75_"+suffix] = s.P75
		features["p90_"+suffix] = s.P90
		if withP95 {
			features["p95_"+suffix] = s.P95
		}
	}

	s, ok := idx.Month.Lookup(histstats.Key{Attraction: attraction, Month: month})
	put("mes", s, ok, true)

	s, ok = idx.Hour.Lookup(histstats.Key{Attraction: attraction, Hour: hourInt})
	put("hora", s, ok, false)

	s, ok = idx.Weekday.Lookup(histstats.Key{Attraction: attraction, Weekday: weekday})
	put("dia", s, ok, false)

	s, ok = idx.MonthWeekday.Lookup(histstats.Key{Attraction: attraction, Month: month, Weekday: weekday})
	put("mes_dia", s, ok, false)

	s, ok = idx.HourWeekday.Lookup(histstats.Key{Attraction: attraction, Hour: hourInt, Weekday: weekday})
	put("hora_dia", s, ok, false)

	s, ok = idx.MonthHour.Lookup(histstats.Key{Attraction: attraction, Month: month, Hour: hourInt})
	put("mes_hora", s, ok, false)
}

// isBatmanOctober reports the franchise special-event month: the Batman
// coaster during the park's October Halloween season.
func isBatmanOctober(attraction string, month int) bool {
	return strings.Contains(attraction, "Batman") && month == 10
}

func columnPresent(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
