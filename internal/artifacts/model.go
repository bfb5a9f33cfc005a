package artifacts

import (
	"encoding/json"
	"fmt"
)

// Model is the trained regressor contract: an ordered numeric feature vector
// in, a wait-time estimate in minutes out. Implementations are immutable and
// safe for concurrent use.
type Model interface {
	Predict(features []float64) float64
}

// TreeNode is one node of a regression tree in the exported ensemble dump.
// Leaves carry Value; internal nodes split on Feature < Threshold, with the
// left child taken when the condition holds.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree stored as a flat node array rooted at 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (t *Tree) score(features []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if n.Feature < len(features) && features[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// TreeEnsemble is an additive gradient-boosted tree regressor exported from
// the offline training job.
type TreeEnsemble struct {
	BaseScore float64 `json:"base_score"`
	Trees     []Tree  `json:"trees"`
}

// Predict sums the base score and every tree's leaf value for the vector.
func (e *TreeEnsemble) Predict(features []float64) float64 {
	sum := e.BaseScore
	for i := range e.Trees {
		sum += e.Trees[i].score(features)
	}
	return sum
}

// LinearModel is a plain linear regressor, kept as a lightweight alternative
// model format for tests and small deployments.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Predict computes intercept + dot(coefficients, features). Extra features
// beyond the coefficient vector are ignored.
func (m *LinearModel) Predict(features []float64) float64 {
	sum := m.Intercept
	for i, c := range m.Coefficients {
		if i >= len(features) {
			break
		}
		sum += c * features[i]
	}
	return sum
}

// modelFile is the on-disk envelope that selects the model kind.
type modelFile struct {
	Kind     string          `json:"kind"`
	Ensemble json.RawMessage `json:"ensemble,omitempty"`
	Linear   json.RawMessage `json:"linear,omitempty"`
}

// UnmarshalModel decodes a model artifact from its JSON envelope.
func UnmarshalModel(data []byte) (Model, error) {
	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode model envelope: %w", err)
	}
	switch f.Kind {
	case "tree_ensemble":
		var e TreeEnsemble
		if err := json.Unmarshal(f.Ensemble, &e); err != nil {
			return nil, fmt.Errorf("decode tree ensemble: %w", err)
		}
		if len(e.Trees) == 0 {
			return nil, fmt.Errorf("tree ensemble has no trees")
		}
		return &e, nil
	case "linear":
		var m LinearModel
		if err := json.Unmarshal(f.Linear, &m); err != nil {
			return nil, fmt.Errorf("decode linear model: %w", err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", f.Kind)
	}
}
