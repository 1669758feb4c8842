// Package models defines the data structures of a Zizi chat conversation.
package models

import (
	"strings"

	"github.com/google/uuid"
)

// Fixed display strings used when the backend gives nothing useful back.
const (
	DefaultGreeting = "Hi — I'm the Zizi Afrique chatbot. How may I assist you?"
	NoAnswerText    = "❗ No useful sentences found."
	FailureText     = "❌ Failed to fetch response from the server."

	// UnknownSource is stored when the backend reports no source. Never rendered.
	UnknownSource = "Unknown source"
	unknownToken  = "Unknown"
)

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName(botName string) string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return botName
	default:
		return string(r)
	}
}

// Message is one entry in the conversation log.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Bot messages only.
	Source string `json:"source,omitempty"`
	Query  string `json:"query,omitempty"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: content}
}

// NewBotMessage creates a bot message without source or query.
func NewBotMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleBot, Content: content}
}

// NewAnswer creates a bot message from a backend answer, applying the
// fallback text and the unknown-source sentinel for missing fields.
func NewAnswer(query, answer, source string) Message {
	msg := NewBotMessage("")
	msg.Query = query
	msg.ApplyAnswer(answer, source)
	return msg
}

// ApplyAnswer overwrites content and source in place, keeping role, ID and query.
func (m *Message) ApplyAnswer(answer, source string) {
	if answer == "" {
		answer = NoAnswerText
	}
	if source == "" {
		source = UnknownSource
	}
	m.Content = answer
	m.Source = source
}

// IsBot reports whether the message was produced by the bot.
func (m Message) IsBot() bool {
	return m.Role == RoleBot
}

// CanRegenerate reports whether the message carries a query to re-issue.
func (m Message) CanRegenerate() bool {
	return m.IsBot() && m.Query != ""
}

// ShowSource reports whether the source line should be rendered.
func (m Message) ShowSource() bool {
	return m.IsBot() && m.Source != "" && !strings.Contains(m.Source, unknownToken)
}

// FeedbackKind is the rating a user gives an answer.
type FeedbackKind string

const (
	ThumbsUp   FeedbackKind = "thumbs_up"
	ThumbsDown FeedbackKind = "thumbs_down"
)

// Valid reports whether k is one of the known feedback kinds.
func (k FeedbackKind) Valid() bool {
	return k == ThumbsUp || k == ThumbsDown
}

// ParseFeedbackKind accepts the wire names plus the short aliases up/down.
func ParseFeedbackKind(s string) (FeedbackKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "thumbs_up", "up", "+", "y":
		return ThumbsUp, true
	case "thumbs_down", "down", "-", "n":
		return ThumbsDown, true
	default:
		return "", false
	}
}

// Emoji returns the icon shown for the feedback kind.
func (k FeedbackKind) Emoji() string {
	if k == ThumbsDown {
		return "👎"
	}
	return "👍"
}
