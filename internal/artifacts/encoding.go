package artifacts

// Encodings holds the categorical target encodings fitted at training time:
// for each categorical column, a map from value to its smoothed target mean
// (smoothed with factor 10 towards the global mean), plus raw frequency
// counts. Unseen categories fall back to the global mean and zero frequency.
type Encodings struct {
	Target map[string]map[string]float64 `json:"target"`
	Freq   map[string]map[string]int     `json:"freq"`
}

// TargetValue returns the target encoding for column/value, or fallback when
// the column or the value was never seen in training.
func (e Encodings) TargetValue(column, value string, fallback float64) float64 {
	m, ok := e.Target[column]
	if !ok {
		return fallback
	}
	v, ok := m[value]
	if !ok {
		return fallback
	}
	return v
}

// FreqValue returns the training-set frequency for column/value, zero when
// unseen.
func (e Encodings) FreqValue(column, value string) int {
	m, ok := e.Freq[column]
	if !ok {
		return 0
	}
	return m[value]
}
