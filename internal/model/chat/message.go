package chat

import "time"

// Type classifies a message for rendering purposes.
type Type string

const (
	TypeChat    Type = "chat"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeSystem  Type = "system"
)

// Message is a single conversation turn. The orchestrator constructs these
// for generated responses; the message collector owns them after publish.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	RecipientIDs   []string  `json:"recipientIds"`
	RecipientNames []string  `json:"recipientNames"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Type           Type      `json:"type"`
}

// Conversation holds an ordered, chronological message history and its
// participant set. The orchestrator reads it and never mutates it.
type Conversation struct {
	ID           string    `json:"id"`
	Messages     []Message `json:"messages"`
	Participants []string  `json:"participants"`
}

// LastMessage returns the most recent turn regardless of author.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}
