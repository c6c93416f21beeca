package observability

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LLMEventsGoToTraceFile(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "llm.jsonl")
	l := NewLogger(&out, "debug", path)
	ctx := context.Background()

	l.LogLLM(ctx, "groq", "llama", "prompt text", "1. Do it", 120*time.Millisecond, nil)
	l.LogPlan(ctx, "task", []string{"Do it"})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 1, "only llm events are traced to file")

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &evt))
	assert.Equal(t, EventTypeLLM, evt.Type)
	assert.Equal(t, "groq", evt.Provider)
	assert.False(t, evt.Timestamp.IsZero())

	// both events reach the slog handler
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), `"type":"plan"`)
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&out, "info", "")

	l.LogLLM(context.Background(), "openai", "gpt", "p", "r", 0, errors.New("boom"))
	assert.Empty(t, out.String())

	l.LogParseFault(context.Background(), "1 Research", "no '.' separator")
	assert.Contains(t, out.String(), `"level":"WARN"`)
}

func TestLogger_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.jsonl")
	l := NewLogger(&bytes.Buffer{}, "info", path)
	l.maxSize = 10

	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o644))
	l.LogLLM(context.Background(), "groq", "m", "p", "r", 0, nil)

	old, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Len(t, old, 64)

	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(cur), `"type":"llm"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
