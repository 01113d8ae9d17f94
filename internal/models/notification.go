package models

import (
	"encoding/json"
	"strings"
	"time"
)

// NotificationType is the closed set of notification categories the client
// understands. Anything the server sends outside this set maps to
// NotificationGeneral.
type NotificationType string

const (
	NotificationMessage     NotificationType = "message"
	NotificationAppointment NotificationType = "appointment"
	NotificationMedical     NotificationType = "medical"
	NotificationGeneral     NotificationType = "general"
)

func ParseNotificationType(s string) NotificationType {
	switch NotificationType(strings.ToLower(strings.TrimSpace(s))) {
	case NotificationMessage:
		return NotificationMessage
	case NotificationAppointment:
		return NotificationAppointment
	case NotificationMedical:
		return NotificationMedical
	default:
		return NotificationGeneral
	}
}

type Notification struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	Type          NotificationType `json:"type"`
	CreatedAt     time.Time        `json:"created_at"`
	IsRead        bool             `json:"isRead"`
	RelatedEntity string           `json:"relatedEntity,omitempty"`
	Sender        string           `json:"sender,omitempty"`

	// LegacyID holds the second historical identity field when the server
	// sent one that differs from the canonical id. Lookups must match on
	// either value.
	LegacyID string `json:"-"`
}

// Matches reports whether id refers to this notification under either
// identity field.
func (n Notification) Matches(id string) bool {
	if id == "" {
		return false
	}
	return n.ID == id || n.LegacyID == id
}

// UnmarshalJSON normalizes the historical identity aliases (`_id`,
// `notificationId`) to a single canonical ID at the ingestion boundary, so
// nothing downstream branches on which alias was present.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string           `json:"id"`
		MongoID        string           `json:"_id"`
		NotificationID string           `json:"notificationId"`
		Title          string           `json:"title"`
		Content        string           `json:"content"`
		Type           string           `json:"type"`
		CreatedAt      time.Time        `json:"created_at"`
		CreatedAtAlt   time.Time        `json:"createdAt"`
		IsRead         bool             `json:"isRead"`
		RelatedEntity  string           `json:"relatedEntity"`
		Sender         string           `json:"sender"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ids := []string{raw.ID, raw.MongoID, raw.NotificationID}
	canonical := ""
	legacy := ""
	for _, id := range ids {
		if id == "" {
			continue
		}
		if canonical == "" {
			canonical = id
		} else if id != canonical && legacy == "" {
			legacy = id
		}
	}

	createdAt := raw.CreatedAt
	if createdAt.IsZero() {
		createdAt = raw.CreatedAtAlt
	}

	*n = Notification{
		ID:            canonical,
		LegacyID:      legacy,
		Title:         raw.Title,
		Content:       raw.Content,
		Type:          ParseNotificationType(raw.Type),
		CreatedAt:     createdAt,
		IsRead:        raw.IsRead,
		RelatedEntity: raw.RelatedEntity,
		Sender:        raw.Sender,
	}
	return nil
}
