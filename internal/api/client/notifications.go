package client

import (
	"encoding/json"
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

const notificationsCacheKey = "notifications"

func (c *APIClient) GetNotifications() ([]models.Notification, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(notificationsCacheKey); ok {
			if items, ok := v.([]models.Notification); ok {
				cp := append([]models.Notification(nil), items...)
				return cp, nil
			}
		}
	}

	body, err := c.get("/notifications")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}

	var result struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if c.cache != nil {
		cp := append([]models.Notification(nil), result.Notifications...)
		c.cache.Set(notificationsCacheKey, cp, cache.DefaultExpiration)
	}
	return result.Notifications, nil
}

// ReloadNotifications drops the cached list and fetches the server's current
// result, repriming the cache. Full refreshes use this so a warm cache can
// never hand back a copy that predates a socket push.
func (c *APIClient) ReloadNotifications() ([]models.Notification, error) {
	if c.cache != nil {
		c.cache.Delete(notificationsCacheKey)
	}
	return c.GetNotifications()
}

func (c *APIClient) MarkNotificationRead(id string) error {
	_, err := c.patch(fmt.Sprintf("/notifications/%s/read", id), nil)
	if err == nil && c.cache != nil {
		c.cache.Delete(notificationsCacheKey)
	}
	return err
}

func (c *APIClient) MarkAllNotificationsRead() error {
	_, err := c.patch("/notifications/read-all", nil)
	if err == nil && c.cache != nil {
		c.cache.Delete(notificationsCacheKey)
	}
	return err
}

func (c *APIClient) DeleteNotification(id string) error {
	_, err := c.delete(fmt.Sprintf("/notifications/%s", id), nil)
	if err == nil && c.cache != nil {
		c.cache.Delete(notificationsCacheKey)
	}
	return err
}
