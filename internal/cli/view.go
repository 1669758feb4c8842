package cli

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/zizi-chat/internal/conversation"
	"github.com/raphaelgruber/zizi-chat/internal/models"
)

const (
	regeneratingText = "Regenerating..."
	recordedText     = "✅ Feedback recorded"
	helpfulText      = "Was this helpful?"
)

// threadView holds what renderThread needs beyond the snapshot.
type threadView struct {
	theme    Theme
	botName  string
	width    int
	selected int // log index, conversation.NoIndex when nothing is selected
}

// renderThread renders every message of the snapshot, oldest first.
func renderThread(snap conversation.Snapshot, v threadView) string {
	blocks := make([]string, 0, len(snap.Messages)+1)
	for i, msg := range snap.Messages {
		blocks = append(blocks, renderMessage(snap, i, msg, v))
	}
	if snap.Loading {
		blocks = append(blocks, v.theme.typingStyle().Render(fmt.Sprintf("%s is typing...", v.botName)))
	}
	return strings.Join(blocks, "\n\n")
}

func renderMessage(snap conversation.Snapshot, i int, msg models.Message, v threadView) string {
	content := msg.Content
	if snap.IsRegenerating(i) {
		content = v.theme.hintStyle().Render(regeneratingText)
	}

	maxWidth := v.width * 8 / 10
	if maxWidth < 20 {
		maxWidth = 20
	}

	if msg.Role == models.RoleUser {
		bubble := v.theme.userBubble().Width(bubbleWidth(content, maxWidth)).Render(content)
		return lipgloss.PlaceHorizontal(v.width, lipgloss.Right, bubble)
	}

	lines := []string{content}
	if msg.ShowSource() {
		lines = append(lines, v.theme.sourceStyle().Render("Source: "+msg.Source))
	}
	body := v.theme.botBubble().Width(bubbleWidth(strings.Join(lines, "\n"), maxWidth)).
		Render(strings.Join(lines, "\n"))

	marker := "  "
	if i == v.selected {
		marker = v.theme.markerStyle().Render("▶ ")
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, marker, body)

	if i == 0 {
		return out
	}
	return out + "\n  " + feedbackLine(snap, i, msg, v.theme)
}

// feedbackLine renders the rating prompt or the recorded notice under an answer.
func feedbackLine(snap conversation.Snapshot, i int, msg models.Message, theme Theme) string {
	if snap.HasFeedback(i) {
		return theme.recordedStyle().Render(recordedText)
	}
	parts := []string{helpfulText, "[y] " + models.ThumbsUp.Emoji(), "[n] " + models.ThumbsDown.Emoji()}
	if msg.CanRegenerate() {
		parts = append(parts, "[r] 🔁 Regenerate")
	}
	return theme.hintStyle().Render(strings.Join(parts, "  "))
}

// bubbleWidth sizes a bubble to its content, capped at maxWidth.
func bubbleWidth(content string, maxWidth int) int {
	w := lipgloss.Width(content) + 2 // padding
	if w > maxWidth {
		return maxWidth
	}
	return w
}

// renderHelp renders key bindings as a single hint line.
func renderHelp(bindings []key.Binding, theme Theme) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return theme.hintStyle().Render(strings.Join(parts, " • "))
}

// tailLines keeps the last n lines of s so the newest messages stay visible.
func tailLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
