package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

// Message endpoints
func (c *APIClient) GetMessages(chatID string) ([]models.Message, error) {
	resp, err := c.get(fmt.Sprintf("/chats/%s/messages", chatID))
	if err != nil {
		return nil, err
	}
	var result struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// SendTextMessage posts a message. The created message is not returned: the
// server broadcasts it back over the socket, and that echo is the single
// append path, so a success here only means the send went through.
func (c *APIClient) SendTextMessage(chatID, content string) error {
	_, err := c.post(fmt.Sprintf("/chats/%s/messages", chatID), map[string]any{
		"content": content,
		"type":    models.MessageText,
	})
	return err
}

// SendImageMessage uploads an image message. Same contract as
// SendTextMessage: delivery to the thread happens via the socket echo.
func (c *APIClient) SendImageMessage(chatID, filename string, file io.Reader) error {
	_, err := c.postMultipart(fmt.Sprintf("/chats/%s/messages/image", chatID), "image", filename, file)
	return err
}
