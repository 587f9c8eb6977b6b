package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Level grades reply metadata (hallucination risk, defense quality).
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Tone is the assistant personality used when building prompts.
type Tone string

const (
	ToneFriendly  Tone = "friendly"
	ToneLogical   Tone = "logical"
	TonePlayful   Tone = "playful"
	ToneConfident Tone = "confident"
)

// MessageMeta carries structured metadata returned with an assistant reply.
type MessageMeta struct {
	Tone              Tone   `json:"tone,omitempty"`
	HallucinationRisk Level  `json:"hallucination_risk,omitempty"`
	DefenseQuality    Level  `json:"defense_quality,omitempty"`
	TaskType          string `json:"task_type,omitempty"`
}

// Message is a single chat message. Immutable once created.
type Message struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Sender    Sender       `json:"sender"`
	Timestamp time.Time    `json:"timestamp"`
	Meta      *MessageMeta `json:"meta,omitempty"`
}

// Session is one conversation thread: an append-only message list with
// a derived title and timestamps.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// titleMaxLen caps derived session titles.
const titleMaxLen = 50

// HasUserMessages reports whether the session contains at least one user
// message. Sessions without any are placeholders and are never persisted.
func (s *Session) HasUserMessages() bool {
	for _, m := range s.Messages {
		if m.Sender == SenderUser {
			return true
		}
	}
	return false
}

// DeriveTitle builds the session title from the first user message,
// truncated to 50 characters with an ellipsis. Falls back to "New Chat"
// when no user message exists yet.
func (s *Session) DeriveTitle() string {
	for _, m := range s.Messages {
		if m.Sender != SenderUser {
			continue
		}
		text := strings.TrimSpace(m.Text)
		if utf8.RuneCountInString(text) > titleMaxLen {
			return string([]rune(text)[:titleMaxLen]) + "..."
		}
		return text
	}
	return "New Chat"
}

// ChatRequest is the request to send a chat message.
type ChatRequest struct {
	Message     string `json:"message" binding:"required"`
	Personality Tone   `json:"personality,omitempty"`
	Defensive   *bool  `json:"defensive,omitempty"`
	ModelID     string `json:"model_id,omitempty"`
}

// ChatResponse is the outcome of one conversation turn.
type ChatResponse struct {
	SessionID  string      `json:"session_id"`
	Reply      string      `json:"reply"`
	Meta       MessageMeta `json:"meta"`
	Snapshot   Snapshot    `json:"snapshot"`
	RetryCount int         `json:"retry_count"`
}

// ModelInfo describes an available completion model for the selector.
type ModelInfo struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CostPer1KTokens float64 `json:"costPer1kTokens"`
}
