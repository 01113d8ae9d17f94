package client

import (
	"encoding/json"
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

const chatsCacheKey = "chats"

// Chat endpoints
func (c *APIClient) GetChats() ([]models.Chat, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(chatsCacheKey); ok {
			if chats, ok := v.([]models.Chat); ok {
				// Return a copy to avoid external mutation of cached slice
				cp := append([]models.Chat(nil), chats...)
				return cp, nil
			}
		}
	}

	resp, err := c.get("/chats")
	if err != nil {
		return nil, err
	}
	var result struct {
		Chats []models.Chat `json:"chats"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, err
	}
	if c.cache != nil {
		cp := append([]models.Chat(nil), result.Chats...)
		c.cache.Set(chatsCacheKey, cp, cache.DefaultExpiration)
	}
	return result.Chats, nil
}

// CreateChat opens a conversation with a patient.
func (c *APIClient) CreateChat(patientID string) (models.Chat, error) {
	res, err := c.post("/chats", map[string]any{"patientId": patientID})
	if err != nil {
		return models.Chat{}, err
	}
	if c.cache != nil {
		c.cache.Delete(chatsCacheKey)
	}

	// The API returns the chat either bare or wrapped in {"chat": {...}}.
	b, _ := json.Marshal(res)
	var chat models.Chat
	if err := json.Unmarshal(b, &chat); err == nil && chat.ID != "" {
		return chat, nil
	}
	if v, ok := res["chat"]; ok {
		cb, _ := json.Marshal(v)
		if err := json.Unmarshal(cb, &chat); err == nil && chat.ID != "" {
			return chat, nil
		}
	}
	return models.Chat{}, fmt.Errorf("unexpected response creating chat")
}

func (c *APIClient) GetPatients() ([]models.Participant, error) {
	resp, err := c.get("/patients")
	if err != nil {
		return nil, err
	}
	var result struct {
		Patients []models.Participant `json:"patients"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, err
	}
	return result.Patients, nil
}

// AvailablePatients returns the patients the doctor has no conversation with
// yet. At most one chat per (doctor, patient) pair.
func (c *APIClient) AvailablePatients() ([]models.Participant, error) {
	patients, err := c.GetPatients()
	if err != nil {
		return nil, err
	}
	chats, err := c.GetChats()
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(chats))
	for _, chat := range chats {
		taken[chat.Patient.ID] = true
	}

	available := patients[:0:0]
	for _, p := range patients {
		if !taken[p.ID] {
			available = append(available, p)
		}
	}
	return available, nil
}
