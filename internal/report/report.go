// Package report renders an experiment report as a standalone HTML page.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rahul/planbench/internal/experiment"
)

//go:embed templates/report.html
var content embed.FS

var (
	tmpl   = template.Must(template.ParseFS(content, "templates/report.html"))
	policy = bluemonday.StrictPolicy()
)

type row struct {
	Index    int
	Task     template.HTML
	Steps    []template.HTML
	Score    float64
	HasScore bool
	Degraded bool
	Notes    template.HTML
}

type page struct {
	Name      string
	ID        string
	Dataset   string
	Generated string
	OK        int
	Degraded  int
	MeanScore float64
	Rows      []row
}

// clean strips all markup from model or dataset text. StrictPolicy output
// is already escaped, so it is passed to the template as-is.
func clean(s string) template.HTML {
	return template.HTML(policy.Sanitize(s)) //nolint:gosec // sanitized above
}

func build(r *experiment.Report) page {
	p := page{
		Name:      r.Experiment.Name,
		ID:        r.Experiment.ID,
		Dataset:   r.Experiment.DatasetName,
		Generated: time.Now().Format("2006-01-02 15:04:05"),
		OK:        r.OK,
		Degraded:  r.Degraded,
		MeanScore: r.MeanScore,
	}
	for i, res := range r.Results {
		rw := row{
			Index:    i + 1,
			Task:     clean(res.Task),
			Degraded: res.Degraded,
		}
		for _, step := range experiment.PlanFromOutputs(res.Run.Outputs) {
			rw.Steps = append(rw.Steps, clean(step))
		}
		rw.Score, rw.HasScore = res.Score(experiment.KeyScore)

		notes := res.Error
		for _, s := range res.Scores {
			if s.Key == experiment.KeyScore && s.Comment != "" {
				if notes != "" {
					notes += "; "
				}
				notes += s.Comment
			}
		}
		rw.Notes = clean(notes)
		p.Rows = append(p.Rows, rw)
	}
	return p
}

// Write renders r to w.
func Write(w io.Writer, r *experiment.Report) error {
	if err := tmpl.Execute(w, build(r)); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// WriteFile renders r to path, creating parent directories.
func WriteFile(path string, r *experiment.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
