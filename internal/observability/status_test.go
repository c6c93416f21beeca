package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2, false)

	p.Update("Plan a move", false)
	p.Update(strings.Repeat("x", 60), true)
	p.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1/2 degraded=0")
	assert.Contains(t, lines[0], "Plan a move")
	assert.Contains(t, lines[1], "2/2 degraded=1")
	assert.Contains(t, lines[1], strings.Repeat("x", 37)+"...")
	assert.Contains(t, lines[1], strings.Repeat("█", 20))
}

func TestProgress_ZeroTotal(t *testing.T) {
	p := NewProgress(&bytes.Buffer{}, 0, false)
	assert.Contains(t, p.Line(), "0/0")
}
