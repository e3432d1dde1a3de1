package ira

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies the author of a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderIra  Sender = "ira"
)

// Status tracks delivery state of a user-authored message.
// Assistant messages carry no status.
type Status string

const (
	StatusSending Status = "sending"
	StatusRead    Status = "read"
)

// MaxMessageLength is the maximum accepted length of a message text,
// in runes, after trimming surrounding whitespace.
const MaxMessageLength = 500

// GreetingText is the assistant's opening line for a fresh session.
const GreetingText = "Hi! I'm Ira. How can I help you today?"

// ReplyRef is a denormalized snapshot of the message being replied to.
// It is copied at reply-creation time and never re-resolved, so deleting
// the original message leaves the preview intact.
type ReplyRef struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// Message represents a single conversation turn.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status,omitempty"`
	ReplyTo   *ReplyRef `json:"reply_to,omitempty"`
}

// NewUserMessage builds a user message in the "sending" state.
// If replyTo is non-nil its id/text/sender are snapshotted into the
// new message.
func NewUserMessage(text string, now time.Time, replyTo *Message) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: now,
		Status:    StatusSending,
	}
	if replyTo != nil {
		msg.ReplyTo = &ReplyRef{
			ID:     replyTo.ID,
			Text:   replyTo.Text,
			Sender: replyTo.Sender,
		}
	}
	return msg
}

// NewAssistantMessage builds an assistant message.
func NewAssistantMessage(text string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    SenderIra,
		Timestamp: now,
	}
}

// Greeting builds the synthetic opening message of a fresh session.
func Greeting(now time.Time) Message {
	return NewAssistantMessage(GreetingText, now)
}

// ValidateText trims surrounding whitespace and checks length bounds.
// Returns the trimmed text.
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	if len([]rune(trimmed)) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return trimmed, nil
}
