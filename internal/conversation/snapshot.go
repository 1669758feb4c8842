package conversation

import "github.com/raphaelgruber/zizi-chat/internal/models"

// Snapshot is a read-only copy of the conversation state.
type Snapshot struct {
	Messages      []models.Message
	FeedbackGiven map[int]bool
	Loading       bool
	Regenerating  int // NoIndex when idle
}

// IsRegenerating reports whether the message at i is being regenerated.
func (s Snapshot) IsRegenerating(i int) bool {
	return s.Regenerating != NoIndex && s.Regenerating == i
}

// HasFeedback reports whether feedback was recorded for the message at i.
func (s Snapshot) HasFeedback(i int) bool {
	return s.FeedbackGiven[i]
}

// Ratable reports whether the message at i can still receive feedback.
func (s Snapshot) Ratable(i int) bool {
	return i > 0 && i < len(s.Messages) && s.Messages[i].IsBot() && !s.FeedbackGiven[i]
}

// BotIndices returns the indices of bot messages after the seed, oldest first.
func (s Snapshot) BotIndices() []int {
	var out []int
	for i := 1; i < len(s.Messages); i++ {
		if s.Messages[i].IsBot() {
			out = append(out, i)
		}
	}
	return out
}

// Last returns the most recent message.
func (s Snapshot) Last() models.Message {
	return s.Messages[len(s.Messages)-1]
}
