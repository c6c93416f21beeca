package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Progress tracks a running experiment and renders a one-line status.
type Progress struct {
	mu       sync.Mutex
	w        io.Writer
	live     bool
	total    int
	done     int
	degraded int
	task     string
	started  time.Time
}

// NewProgress renders to w. When live is set the line is redrawn in place;
// otherwise every update is printed on its own line.
func NewProgress(w io.Writer, total int, live bool) *Progress {
	return &Progress{w: w, live: live, total: total, started: time.Now()}
}

// Update records one finished example and redraws the status line.
func (p *Progress) Update(task string, degraded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if degraded {
		p.degraded++
	}
	p.task = task
	p.render()
}

// Finish ends the live line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live {
		fmt.Fprintln(p.w)
	}
}

// Line formats the current status.
func (p *Progress) Line() string {
	task := p.task
	if len(task) > 40 {
		task = task[:37] + "..."
	}

	barWidth := 20
	filled := 0
	if p.total > 0 {
		filled = min(p.done*barWidth/p.total, barWidth)
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("▒", barWidth-filled)

	return fmt.Sprintf("[%s] %d/%d degraded=%d %v | %s",
		bar, p.done, p.total, p.degraded, time.Since(p.started).Round(time.Second), task)
}

func (p *Progress) render() {
	line := p.Line()
	if !p.live {
		fmt.Fprintln(p.w, line)
		return
	}
	c := StepColor
	if p.degraded > 0 {
		c = WarnColor
	}
	fmt.Fprint(p.w, "\r\033[K")
	c.Fprint(p.w, line)
}
