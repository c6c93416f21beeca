package observability

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan       EventType = "plan"
	EventTypeStep       EventType = "step"
	EventTypeLLM        EventType = "llm"
	EventTypeEvaluation EventType = "evaluation"
	EventTypeParseFault EventType = "parse_fault"
	EventTypeExperiment EventType = "experiment"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	Provider  string    `json:"provider,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging. Events go to the slog handler; llm
// events are additionally appended to a JSONL trace file.
type Logger struct {
	slog       *slog.Logger
	llmLogPath string
	maxSize    int64
	mu         sync.Mutex
}

func NewLogger(w io.Writer, level string, llmLogPath string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{
		slog:       slog.New(handler),
		llmLogPath: llmLogPath,
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// NewNopLogger discards everything. Useful in tests.
func NewNopLogger() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog exposes the underlying logger for free-form messages.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Log emits a structured event.
func (l *Logger) Log(ctx context.Context, evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	level := slog.LevelInfo
	switch evt.Type {
	case EventTypeLLM:
		level = slog.LevelDebug
	case EventTypeParseFault:
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.String("type", string(evt.Type))}
	if evt.Provider != "" {
		attrs = append(attrs, slog.String("provider", evt.Provider))
	}
	if evt.TaskID != "" {
		attrs = append(attrs, slog.String("task_id", evt.TaskID))
	}
	attrs = append(attrs, slog.Any("data", evt.Data))
	l.slog.LogAttrs(ctx, level, string(evt.Type), attrs...)

	if evt.Type == EventTypeLLM && l.llmLogPath != "" {
		data, err := json.Marshal(evt)
		if err != nil {
			l.slog.Error("failed to marshal event", "error", err)
			return
		}
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		l.slog.Error("failed to create log directory", "error", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.slog.Error("failed to open log file", "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		l.slog.Error("failed to write to log file", "error", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(ctx context.Context, task string, steps []string) {
	l.Log(ctx, Event{
		Type: EventTypePlan,
		Data: map[string]any{
			"task":  task,
			"steps": steps,
			"count": len(steps),
		},
	})
}

func (l *Logger) LogStep(ctx context.Context, index int, step string) {
	l.Log(ctx, Event{
		Type: EventTypeStep,
		Data: map[string]any{"index": index, "step": step},
	})
}

func (l *Logger) LogParseFault(ctx context.Context, line, reason string) {
	l.Log(ctx, Event{
		Type: EventTypeParseFault,
		Data: map[string]string{"line": line, "reason": reason},
	})
}

func (l *Logger) LogEvaluation(ctx context.Context, task string, scores any, err error) {
	data := map[string]any{"task": task, "scores": scores}
	if err != nil {
		data["error"] = err.Error()
	}
	l.Log(ctx, Event{Type: EventTypeEvaluation, Data: data})
}

func (l *Logger) LogExperiment(ctx context.Context, experimentID string, data map[string]any) {
	l.Log(ctx, Event{Type: EventTypeExperiment, TaskID: experimentID, Data: data})
}

func (l *Logger) LogLLM(ctx context.Context, provider, model string, prompt any, response string, elapsed time.Duration, err error) {
	data := map[string]any{
		"model":      model,
		"prompt":     prompt,
		"response":   response,
		"latency_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		data["error"] = err.Error()
	}
	l.Log(ctx, Event{
		Type:     EventTypeLLM,
		Provider: provider,
		Data:     data,
	})
}
