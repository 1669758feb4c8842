package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/zizi-chat/internal/models"
)

func runScript(t *testing.T, b *testBackend, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, runREPL(context.Background(), in, &out, "Zizi", b.factory()))
	return out.String()
}

func TestREPLAskAndRate(t *testing.T) {
	b := newTestBackend(t)
	out := runScript(t, b, "What is ECD?", "/up 2", "/down 2")

	assert.Contains(t, out, "[0] Zizi: "+models.DefaultGreeting)
	assert.Contains(t, out, "[1] You: What is ECD?")
	assert.Contains(t, out, "  Zizi is typing...")
	assert.Contains(t, out, "[2] Zizi: Early Childhood Development.")
	assert.Contains(t, out, "    Source: Zizi Report 2021")
	assert.Contains(t, out, "    Was this helpful? /up 2  /down 2  /regen 2")
	assert.Contains(t, out, "  [2] "+recordedText)
	assert.Contains(t, out, "  (nothing to do for [2])", "second rating is a no-op")

	calls := b.feedbackCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.ThumbsUp, calls[0].Feedback)
}

func TestREPLRegenerate(t *testing.T) {
	b := newTestBackend(t)
	b.set(func(b *testBackend) { b.queued = []string{"first answer", "second answer"} })

	out := runScript(t, b, "q", "/up 2", "/regen 2", "/down 2")

	assert.Contains(t, out, "[2] Zizi: first answer")
	assert.Contains(t, out, "  [2] "+regeneratingText)
	assert.Contains(t, out, "[2] Zizi (regenerated): second answer")
	assert.Equal(t, 2, strings.Count(out, recordedText), "regenerated answers can be rated again")

	calls := b.feedbackCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "first answer", calls[0].Answer)
	assert.Equal(t, "second answer", calls[1].Answer)
	assert.Equal(t, models.ThumbsDown, calls[1].Feedback)
}

func TestREPLFailure(t *testing.T) {
	b := newTestBackend(t)
	b.set(func(b *testBackend) { b.fail = true })

	out := runScript(t, b, "q", "/regen 2")

	assert.Contains(t, out, "[2] Zizi: "+models.FailureText)
	assert.NotContains(t, out, "Source:")
	assert.NotContains(t, out, "/regen 2  ", "failure messages cannot be regenerated")
	assert.Contains(t, out, "  (nothing to do for [2])")
}

func TestREPLSequentialQueries(t *testing.T) {
	b := newTestBackend(t)
	b.set(func(b *testBackend) { b.queued = []string{"first answer", "second answer"} })

	out := runScript(t, b, "a", "b")

	assert.Contains(t, out, "[2] Zizi: first answer")
	assert.Contains(t, out, "[3] You: b")
	assert.Contains(t, out, "[4] Zizi: second answer")
	assert.NotContains(t, out, "waiting")
}

func TestREPLCommands(t *testing.T) {
	b := newTestBackend(t)
	out := runScript(t, b, "", "   ", "/help", "/up x", "/regen", "/bogus 1", "/up 0", "/quit", "never sent")

	assert.Contains(t, out, replHelp)
	assert.Contains(t, out, "  usage: /up N")
	assert.Contains(t, out, "  usage: /regen N")
	assert.Contains(t, out, "  unknown command /bogus, try /help")
	assert.Contains(t, out, "  (nothing to do for [0])")
	assert.NotContains(t, out, "still waiting", "blank lines are ignored silently")
	assert.NotContains(t, out, "never sent")
	assert.Empty(t, b.feedbackCalls())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		arg     string
		command bool
	}{
		{"hello", "", "", false},
		{"/UP 2", "up", "2", true},
		{"  /regen   4  ", "regen", "4", true},
		{"/quit", "quit", "", true},
		{"/", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, arg, ok := parseCommand(tt.line)
			assert.Equal(t, tt.command, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.arg, arg)
		})
	}
}
