package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parkmetrics/queuecast/internal/histstats"
)

// Artifact file names produced by the offline training job.
const (
	ModelFile        = "model.json"
	ScalerFile       = "scaler.json"
	ColumnsFile      = "columns.json"
	EncodingsFile    = "encodings.json"
	ObservationsFile = "observations.json"
)

// Bundle is the immutable set of trained artifacts every prediction call
// reads from. It is constructed once at startup and passed by handle into
// the pipeline; nothing mutates it afterwards, so it is safe to share across
// concurrent requests without locking.
type Bundle struct {
	Model     Model
	Scaler    *Scaler
	Encodings Encodings

	// Columns is the exact feature column order recorded at training time.
	// The assembler replays this list verbatim; it is never re-derived.
	Columns []string

	// Observations is the processed training dataset, used by the
	// specificity resolver and for dataset-level fallbacks.
	Observations []histstats.Observation

	// Index holds the six grouped-statistics tables plus global stats.
	Index *histstats.Index

	// Training-set medians used to default missing weather inputs.
	TemperatureMedian float64
	HumidityMedian    float64
}

// Load reads a bundle from a directory of JSON artifacts. A missing or
// corrupt model, scaler or column list is a hard failure: the pipeline
// cannot run without them.
func Load(dir string) (*Bundle, error) {
	modelRaw, err := os.ReadFile(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	model, err := UnmarshalModel(modelRaw)
	if err != nil {
		return nil, err
	}

	var scaler Scaler
	if err := readJSON(filepath.Join(dir, ScalerFile), &scaler); err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}

	var columns []string
	if err := readJSON(filepath.Join(dir, ColumnsFile), &columns); err != nil {
		return nil, fmt.Errorf("read column order artifact: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("column order artifact is empty")
	}
	if len(scaler.Mean) != len(columns) || len(scaler.Scale) != len(columns) {
		return nil, fmt.Errorf("scaler dimension %d does not match %d training columns",
			len(scaler.Mean), len(columns))
	}

	var encodings Encodings
	if err := readJSON(filepath.Join(dir, EncodingsFile), &encodings); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read encodings artifact: %w", err)
		}
		encodings = Encodings{}
	}

	var observations []histstats.Observation
	if err := readJSON(filepath.Join(dir, ObservationsFile), &observations); err != nil {
		return nil, fmt.Errorf("read observations artifact: %w", err)
	}

	return New(model, &scaler, encodings, columns, observations), nil
}

// New assembles a bundle from already-loaded artifacts, building the
// statistics index and dataset-level defaults. Shared by the file and
// Postgres loaders and by tests.
func New(model Model, scaler *Scaler, encodings Encodings, columns []string, observations []histstats.Observation) *Bundle {
	b := &Bundle{
		Model:        model,
		Scaler:       scaler,
		Encodings:    encodings,
		Columns:      columns,
		Observations: observations,
		Index:        histstats.NewIndex(observations),
	}

	temps := make([]float64, 0, len(observations))
	hums := make([]float64, 0, len(observations))
	for _, o := range observations {
		temps = append(temps, o.Temperature)
		hums = append(hums, o.Humidity)
	}
	b.TemperatureMedian = histstats.Quantile(temps, 0.50)
	b.HumidityMedian = histstats.Quantile(hums, 0.50)
	if len(temps) == 0 {
		b.TemperatureMedian = 20
	}
	if len(hums) == 0 {
		b.HumidityMedian = 60
	}
	return b
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
