package artifacts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkmetrics/queuecast/internal/histstats"
)

// PostgresStore loads trained artifacts from the tables the offline training
// job writes to, as an alternative to the JSON file layout. The model, scaler
// and column order live in model_artifacts as JSON documents; the processed
// observation set lives in wait_observations.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates an artifact store over a pgx connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load fetches all artifacts and assembles a bundle. Like the file loader,
// a missing model, scaler or column list is a hard failure.
func (s *PostgresStore) Load(ctx context.Context) (*Bundle, error) {
	modelRaw, err := s.artifactDocument(ctx, "model")
	if err != nil {
		return nil, fmt.Errorf("load model artifact: %w", err)
	}
	model, err := UnmarshalModel(modelRaw)
	if err != nil {
		return nil, err
	}

	scalerRaw, err := s.artifactDocument(ctx, "scaler")
	if err != nil {
		return nil, fmt.Errorf("load scaler artifact: %w", err)
	}
	var scaler Scaler
	if err := json.Unmarshal(scalerRaw, &scaler); err != nil {
		return nil, fmt.Errorf("decode scaler artifact: %w", err)
	}

	columnsRaw, err := s.artifactDocument(ctx, "columns")
	if err != nil {
		return nil, fmt.Errorf("load column order artifact: %w", err)
	}
	var columns []string
	if err := json.Unmarshal(columnsRaw, &columns); err != nil {
		return nil, fmt.Errorf("decode column order artifact: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("column order artifact is empty")
	}

	var encodings Encodings
	if encRaw, err := s.artifactDocument(ctx, "encodings"); err == nil {
		if err := json.Unmarshal(encRaw, &encodings); err != nil {
			return nil, fmt.Errorf("decode encodings artifact: %w", err)
		}
	}

	observations, err := s.observations(ctx)
	if err != nil {
		return nil, err
	}

	return New(model, &scaler, encodings, columns, observations), nil
}

func (s *PostgresStore) artifactDocument(ctx context.Context, name string) ([]byte, error) {
	query := `
		SELECT document
		FROM model_artifacts
		WHERE name = $1
		ORDER BY trained_at DESC
		LIMIT 1
	`

	var doc []byte
	if err := s.db.QueryRow(ctx, query, name).Scan(&doc); err != nil {
		return nil, fmt.Errorf("failed to get artifact %q: %w", name, err)
	}
	return doc, nil
}

func (s *PostgresStore) observations(ctx context.Context) ([]histstats.Observation, error) {
	query := `
		SELECT attraction, zone, month, hour, hour_int, weekday,
		       wait_time, temperature, humidity
		FROM wait_observations
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}
	defer rows.Close()

	observations := make([]histstats.Observation, 0)
	for rows.Next() {
		var o histstats.Observation
		err := rows.Scan(&o.Attraction, &o.Zone, &o.Month, &o.Hour, &o.HourInt,
			&o.Weekday, &o.WaitTime, &o.Temperature, &o.Humidity)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	return observations, nil
}
