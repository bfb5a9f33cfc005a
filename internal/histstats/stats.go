package histstats

import (
	"math"
	"sort"
)

// Observation is one historical wait-time measurement from the processed
// training dataset. The slice of observations is loaded once and read-only.
type Observation struct {
	Attraction  string  `json:"atraccion"`
	Zone        string  `json:"zona"`
	Month       int     `json:"mes"`
	Hour        float64 `json:"hora"`
	HourInt     int     `json:"hora_int"`
	Weekday     int     `json:"dia_semana_num"` // Monday=0
	WaitTime    float64 `json:"tiempo_espera"`
	Temperature float64 `json:"temperatura"`
	Humidity    float64 `json:"humedad"`
}

// Stats are the pre-aggregated wait-time statistics for one grouping key.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
}

// Quantile returns the linearly interpolated q-quantile (0..1) of values.
// Values need not be sorted. Returns 0 for an empty slice.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Mean returns the arithmetic mean of values, 0 if empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std returns the sample standard deviation (n-1 denominator), 0 if fewer
// than two values.
func Std(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// Summarize computes the full statistic set over a group of wait times.
func Summarize(values []float64) Stats {
	return Stats{
		Count:  len(values),
		Mean:   Mean(values),
		Median: Quantile(values, 0.50),
		Std:    Std(values),
		P75:    Quantile(values, 0.75),
		P90:    Quantile(values, 0.90),
		P95:    Quantile(values, 0.95),
	}
}

// WaitTimes extracts the wait-time column from a set of observations.
func WaitTimes(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.WaitTime
	}
	return out
}

// Filter returns the observations matching pred. The result shares no state
// with the input beyond the (immutable) observation values.
func Filter(obs []Observation, pred func(Observation) bool) []Observation {
	var out []Observation
	for _, o := range obs {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}
