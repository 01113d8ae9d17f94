package models

import (
	"encoding/json"
)

// Event is the wire envelope for everything crossing the realtime channel,
// in both directions.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Server-pushed event types.
const (
	EventNewMessage      = "newMessage"
	EventNewNotification = "newNotification"
	EventPrivateMessage  = "privateMessage"
)

// Client-emitted command types.
const (
	CommandAuthenticate = "authenticate"
	CommandJoinChat     = "joinChat"
	CommandLeaveChat    = "leaveChat"
	CommandSendMessage  = "sendMessage"
)

// NewEvent wraps a payload into the wire envelope.
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}

// AuthPayload carries the explicit post-handshake authentication step. The
// transport-level connection alone is not trusted to imply authentication.
type AuthPayload struct {
	UserID string `json:"userId"`
}

// RoomPayload scopes join/leave commands to a single chat room.
type RoomPayload struct {
	ChatID string `json:"chatId"`
}
