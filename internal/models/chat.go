package models

import (
	"time"
)

// Participant is the embedded summary of the person on the other side of a
// conversation.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// MessageSummary is the sidebar preview of a chat's most recent message.
type MessageSummary struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat is a conversation thread between one doctor and one patient. At most
// one chat exists per (doctor, patient) pair; the new-conversation flow
// filters out patients who already have one.
type Chat struct {
	ID          string          `json:"id"`
	Patient     Participant     `json:"patient"`
	LastMessage *MessageSummary `json:"lastMessage,omitempty"`
	UnreadCount int             `json:"unreadCount,omitempty"`
}
