package artifacts

import "fmt"

// Scaler is a fitted standardization transform. Mean and Scale are aligned
// index-for-index with the training column order; applying any other layout
// silently corrupts predictions, which is why Transform checks lengths.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes a feature vector with the training-time mean and
// variance. Zero scale entries pass the centered value through unscaled, the
// same convention scikit-learn uses for constant columns.
func (s *Scaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) || len(features) != len(s.Scale) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(features))
	}
	out := make([]float64, len(features))
	for i, v := range features {
		if s.Scale[i] == 0 {
			out[i] = v - s.Mean[i]
			continue
		}
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
