package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rahul/planbench/internal/experiment"
)

func (s *SQLiteStore) CreateExperiment(ctx context.Context, dataset, name string) (experiment.Experiment, error) {
	ds, err := s.findDataset(ctx, dataset)
	if err != nil {
		return experiment.Experiment{}, err
	}

	exp := experiment.Experiment{
		ID:          uuid.NewString(),
		Name:        name,
		DatasetID:   ds.ID,
		DatasetName: ds.Name,
	}
	created := now()
	query := `INSERT INTO experiments (id, name, dataset_id, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.DB.ExecContext(ctx, query, exp.ID, exp.Name, exp.DatasetID, created); err != nil {
		return experiment.Experiment{}, err
	}
	exp.CreatedAt = parseTime(created)
	return exp, nil
}

func (s *SQLiteStore) RecordResult(ctx context.Context, exp experiment.Experiment, result experiment.ExampleResult) error {
	outputs, err := json.Marshal(result.Run.Outputs)
	if err != nil {
		return fmt.Errorf("encoding outputs: %w", err)
	}
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("encoding scores: %w", err)
	}

	id := result.Run.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `INSERT INTO results (id, experiment_id, example_id, task, outputs, scores, degraded, error, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.DB.ExecContext(ctx, query,
		id, exp.ID, result.Example.ID, result.Task, string(outputs), string(scores),
		result.Degraded, result.Error,
		formatTime(result.Run.StartedAt), formatTime(result.Run.EndedAt),
	)
	return err
}

// ListExperiments returns experiments newest first.
func (s *SQLiteStore) ListExperiments(ctx context.Context) ([]experiment.Experiment, error) {
	query := `
		SELECT e.id, e.name, e.dataset_id, d.name, e.created_at
		FROM experiments e JOIN datasets d ON d.id = e.dataset_id
		ORDER BY e.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []experiment.Experiment
	for rows.Next() {
		var exp experiment.Experiment
		var created string
		if err := rows.Scan(&exp.ID, &exp.Name, &exp.DatasetID, &exp.DatasetName, &created); err != nil {
			return nil, err
		}
		exp.CreatedAt = parseTime(created)
		out = append(out, exp)
	}
	return out, rows.Err()
}

// Results returns what was recorded for an experiment in recording order.
func (s *SQLiteStore) Results(ctx context.Context, experimentID string) ([]experiment.ExampleResult, error) {
	query := `
		SELECT id, example_id, task, outputs, scores, degraded, error, started_at, ended_at
		FROM results WHERE experiment_id = ? ORDER BY rowid`
	rows, err := s.DB.QueryContext(ctx, query, experimentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []experiment.ExampleResult
	for rows.Next() {
		var r experiment.ExampleResult
		var task, outputs, scores, errText, started, ended sql.NullString
		if err := rows.Scan(&r.Run.ID, &r.Example.ID, &task, &outputs, &scores, &r.Degraded, &errText, &started, &ended); err != nil {
			return nil, err
		}
		r.Task = task.String
		r.Error = errText.String
		r.Run.ExampleID = r.Example.ID
		r.Run.StartedAt = parseTime(started.String)
		r.Run.EndedAt = parseTime(ended.String)
		if outputs.String != "" {
			if err := json.Unmarshal([]byte(outputs.String), &r.Run.Outputs); err != nil {
				return nil, fmt.Errorf("result %s: decoding outputs: %w", r.Run.ID, err)
			}
		}
		if scores.String != "" {
			if err := json.Unmarshal([]byte(scores.String), &r.Scores); err != nil {
				return nil, fmt.Errorf("result %s: decoding scores: %w", r.Run.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
