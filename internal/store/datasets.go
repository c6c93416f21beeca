package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rahul/planbench/internal/experiment"
)

func (s *SQLiteStore) CreateDataset(ctx context.Context, name string) (experiment.Dataset, error) {
	if _, err := s.findDataset(ctx, name); err == nil {
		return experiment.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetExists, name)
	} else if !errors.Is(err, ErrDatasetNotFound) {
		return experiment.Dataset{}, err
	}

	ds := experiment.Dataset{ID: uuid.NewString(), Name: name}
	created := now()
	query := `INSERT INTO datasets (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := s.DB.ExecContext(ctx, query, ds.ID, ds.Name, created); err != nil {
		return experiment.Dataset{}, err
	}
	ds.CreatedAt = parseTime(created)
	return ds, nil
}

func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]experiment.Dataset, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, created_at FROM datasets ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []experiment.Dataset
	for rows.Next() {
		var ds experiment.Dataset
		var created string
		if err := rows.Scan(&ds.ID, &ds.Name, &created); err != nil {
			return nil, err
		}
		ds.CreatedAt = parseTime(created)
		out = append(out, ds)
	}
	return out, rows.Err()
}

// findDataset resolves a dataset by name, then by id.
func (s *SQLiteStore) findDataset(ctx context.Context, ref string) (experiment.Dataset, error) {
	var ds experiment.Dataset
	var created string
	query := `SELECT id, name, created_at FROM datasets WHERE name = ? OR id = ? ORDER BY name = ? DESC LIMIT 1`
	err := s.DB.QueryRowContext(ctx, query, ref, ref, ref).Scan(&ds.ID, &ds.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return ds, fmt.Errorf("%w: %s", ErrDatasetNotFound, ref)
	}
	if err != nil {
		return ds, err
	}
	ds.CreatedAt = parseTime(created)
	return ds, nil
}

// AddExample appends an example to the dataset named by ref.
func (s *SQLiteStore) AddExample(ctx context.Context, ref string, inputs, outputs map[string]any) (experiment.Example, error) {
	ds, err := s.findDataset(ctx, ref)
	if err != nil {
		return experiment.Example{}, err
	}
	return s.insertExample(ctx, s.DB, ds.ID, inputs, outputs)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insertExample(ctx context.Context, db execer, datasetID string, inputs, outputs map[string]any) (experiment.Example, error) {
	if inputs == nil {
		inputs = map[string]any{}
	}
	in, err := json.Marshal(inputs)
	if err != nil {
		return experiment.Example{}, fmt.Errorf("encoding inputs: %w", err)
	}
	var out []byte
	if outputs != nil {
		if out, err = json.Marshal(outputs); err != nil {
			return experiment.Example{}, fmt.Errorf("encoding outputs: %w", err)
		}
	}

	ex := experiment.Example{ID: uuid.NewString(), DatasetID: datasetID, Inputs: inputs, Outputs: outputs}
	query := `INSERT INTO examples (id, dataset_id, inputs, outputs, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, query, ex.ID, datasetID, string(in), nullable(out), now()); err != nil {
		return experiment.Example{}, err
	}
	return ex, nil
}

// ListExamples returns the examples of a dataset in insertion order.
func (s *SQLiteStore) ListExamples(ctx context.Context, dataset string) ([]experiment.Example, error) {
	ds, err := s.findDataset(ctx, dataset)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, inputs, outputs FROM examples WHERE dataset_id = ? ORDER BY rowid`, ds.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []experiment.Example
	for rows.Next() {
		var id, in string
		var outputs sql.NullString
		if err := rows.Scan(&id, &in, &outputs); err != nil {
			return nil, err
		}
		ex := experiment.Example{ID: id, DatasetID: ds.ID}
		if err := json.Unmarshal([]byte(in), &ex.Inputs); err != nil {
			return nil, fmt.Errorf("example %s: decoding inputs: %w", id, err)
		}
		if outputs.Valid && outputs.String != "" {
			if err := json.Unmarshal([]byte(outputs.String), &ex.Outputs); err != nil {
				return nil, fmt.Errorf("example %s: decoding outputs: %w", id, err)
			}
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateExample(ctx context.Context, id string, inputs map[string]any) error {
	in, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE examples SET inputs = ? WHERE id = ?`, string(in), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrExampleNotFound, id)
	}
	return nil
}

func nullable(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
