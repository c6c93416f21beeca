// Package langsmith implements experiment.Tracker against the LangSmith
// REST API. Experiments are LangSmith sessions (projects), example runs are
// chain runs and scores are feedback entries.
package langsmith

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahul/planbench/internal/experiment"
)

const (
	DefaultTimeout = 30 * time.Second

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024

	pageSize = 100
)

var ErrNotConfigured = errors.New("LANGSMITH_API_KEY is not set")

// APIError is a non-2xx response from LangSmith.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("langsmith %s %s (HTTP %d): %s", e.Method, e.Path, e.Status, e.Message)
}

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// New returns a client for endpoint, e.g. https://api.smith.langchain.com.
func New(endpoint, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.endpoint + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("langsmith %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		return fmt.Sprint(payload.Detail)
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// apiTime accepts the naive UTC timestamps LangSmith returns as well as RFC 3339.
type apiTime time.Time

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = apiTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t apiTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t))
}

type datasetDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt apiTime `json:"created_at"`
}

func (d datasetDTO) dataset() experiment.Dataset {
	return experiment.Dataset{ID: d.ID, Name: d.Name, CreatedAt: time.Time(d.CreatedAt)}
}

func (c *Client) ListDatasets(ctx context.Context) ([]experiment.Dataset, error) {
	var out []experiment.Dataset
	for offset := 0; ; offset += pageSize {
		var page []datasetDTO
		q := url.Values{"limit": {strconv.Itoa(pageSize)}, "offset": {strconv.Itoa(offset)}}
		if err := c.do(ctx, http.MethodGet, "/datasets", q, nil, &page); err != nil {
			return nil, err
		}
		for _, d := range page {
			out = append(out, d.dataset())
		}
		if len(page) < pageSize {
			return out, nil
		}
	}
}

func (c *Client) CreateDataset(ctx context.Context, name string) (experiment.Dataset, error) {
	var created datasetDTO
	body := map[string]any{"name": name, "description": "Task planning examples"}
	if err := c.do(ctx, http.MethodPost, "/datasets", nil, body, &created); err != nil {
		return experiment.Dataset{}, err
	}
	return created.dataset(), nil
}

// resolveDataset accepts a dataset name or id.
func (c *Client) resolveDataset(ctx context.Context, ref string) (experiment.Dataset, error) {
	var page []datasetDTO
	if err := c.do(ctx, http.MethodGet, "/datasets", url.Values{"name": {ref}}, nil, &page); err != nil {
		return experiment.Dataset{}, err
	}
	for _, d := range page {
		if d.Name == ref {
			return d.dataset(), nil
		}
	}
	if _, err := uuid.Parse(ref); err == nil {
		var d datasetDTO
		if err := c.do(ctx, http.MethodGet, "/datasets/"+ref, nil, nil, &d); err != nil {
			return experiment.Dataset{}, err
		}
		return d.dataset(), nil
	}
	return experiment.Dataset{}, fmt.Errorf("dataset %q not found", ref)
}

type exampleDTO struct {
	ID        string         `json:"id"`
	DatasetID string         `json:"dataset_id"`
	Inputs    map[string]any `json:"inputs"`
	Outputs   map[string]any `json:"outputs"`
}

// ListExamples pages through every example of the dataset.
func (c *Client) ListExamples(ctx context.Context, dataset string) ([]experiment.Example, error) {
	ds, err := c.resolveDataset(ctx, dataset)
	if err != nil {
		return nil, err
	}

	var out []experiment.Example
	for offset := 0; ; offset += pageSize {
		var page []exampleDTO
		q := url.Values{
			"dataset": {ds.ID},
			"limit":   {strconv.Itoa(pageSize)},
			"offset":  {strconv.Itoa(offset)},
		}
		if err := c.do(ctx, http.MethodGet, "/examples", q, nil, &page); err != nil {
			return nil, err
		}
		for _, e := range page {
			out = append(out, experiment.Example{ID: e.ID, DatasetID: e.DatasetID, Inputs: e.Inputs, Outputs: e.Outputs})
		}
		if len(page) < pageSize {
			return out, nil
		}
	}
}

func (c *Client) UpdateExample(ctx context.Context, id string, inputs map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/examples/"+url.PathEscape(id), nil, map[string]any{"inputs": inputs}, nil)
}

type sessionDTO struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	ReferenceDatasetID string  `json:"reference_dataset_id"`
	StartTime          apiTime `json:"start_time"`
}

// CreateExperiment opens a session bound to the dataset so LangSmith lists
// it as an experiment.
func (c *Client) CreateExperiment(ctx context.Context, dataset, name string) (experiment.Experiment, error) {
	ds, err := c.resolveDataset(ctx, dataset)
	if err != nil {
		return experiment.Experiment{}, err
	}

	body := map[string]any{
		"name":                 name,
		"reference_dataset_id": ds.ID,
		"start_time":           time.Now().UTC().Format(time.RFC3339Nano),
	}
	var sess sessionDTO
	if err := c.do(ctx, http.MethodPost, "/sessions", nil, body, &sess); err != nil {
		return experiment.Experiment{}, err
	}
	return experiment.Experiment{
		ID:          sess.ID,
		Name:        sess.Name,
		DatasetID:   ds.ID,
		DatasetName: ds.Name,
		CreatedAt:   time.Time(sess.StartTime),
	}, nil
}

// RecordResult posts the run, then one feedback entry per score.
func (c *Client) RecordResult(ctx context.Context, exp experiment.Experiment, result experiment.ExampleResult) error {
	runID := result.Run.ID
	if runID == "" {
		runID = uuid.NewString()
	}

	run := map[string]any{
		"id":                   runID,
		"name":                 "task_planner",
		"run_type":             "chain",
		"inputs":               result.Run.Inputs,
		"outputs":              result.Run.Outputs,
		"session_id":           exp.ID,
		"reference_example_id": result.Example.ID,
		"start_time":           timeOrNow(result.Run.StartedAt),
		"end_time":             timeOrNow(result.Run.EndedAt),
	}
	if result.Run.Error != "" {
		run["error"] = result.Run.Error
	}
	if err := c.do(ctx, http.MethodPost, "/runs", nil, run, nil); err != nil {
		return fmt.Errorf("posting run: %w", err)
	}

	for _, s := range result.Scores {
		feedback := map[string]any{
			"run_id":  runID,
			"key":     s.Key,
			"score":   s.Score,
			"comment": s.Comment,
		}
		if err := c.do(ctx, http.MethodPost, "/feedback", nil, feedback, nil); err != nil {
			return fmt.Errorf("posting feedback %s: %w", s.Key, err)
		}
	}
	return nil
}

func timeOrNow(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}
