package models

import (
	"time"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chat"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// Summary projects the message into the form kept on the chat list.
func (m Message) Summary() *MessageSummary {
	return &MessageSummary{ID: m.ID, Content: m.Content, Timestamp: m.Timestamp}
}
