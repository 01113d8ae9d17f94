package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mohamedMoujib/E-Health-sub000/internal/models"
)

// Auth endpoints

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Login authenticates against the server and stores the returned token pair
// on the client. It is the only credential-requiring flow that runs without
// one.
func (c *APIClient) Login(email, password string) (models.User, error) {
	payload := map[string]string{"email": email, "password": password}
	b, err := json.Marshal(payload)
	if err != nil {
		return models.User{}, err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/auth/login", bytes.NewBuffer(b))
	if err != nil {
		return models.User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.User{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.User{}, fmt.Errorf("HTTP error: %s, Response: %s", resp.Status, string(body))
	}

	var res loginResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return models.User{}, err
	}
	if res.AccessToken == "" {
		return models.User{}, fmt.Errorf("login failed: missing tokens in response")
	}

	c.SetTokens(res.AccessToken, res.RefreshToken)
	c.cache.Flush()
	return res.User, nil
}

// Logout tells the server to drop the session. Best effort; local teardown
// happens regardless of the outcome.
func (c *APIClient) Logout() error {
	_, err := c.post("/auth/logout", nil)
	c.SetTokens("", "")
	c.cache.Flush()
	return err
}

// Refresh exchanges the refresh token for a new pair. Exposed for the
// periodic refresh job.
func (c *APIClient) Refresh() error {
	return c.refreshTokens()
}

func (c *APIClient) refreshTokens() error {
	payload := map[string]string{"refreshToken": c.RefreshToken()}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", c.baseURL+"/auth/refresh", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("refresh failed: %s, Response: %s", resp.Status, string(rb))
	}
	var res map[string]any
	if err := json.Unmarshal(rb, &res); err != nil {
		return err
	}
	newAccess, _ := res["accessToken"].(string)
	newRefresh, _ := res["refreshToken"].(string)
	if newAccess == "" || newRefresh == "" {
		return fmt.Errorf("refresh failed: missing tokens")
	}
	c.SetTokens(newAccess, newRefresh)
	c.cache.Flush()
	if c.OnTokensRefreshed != nil {
		c.OnTokensRefreshed(newAccess, newRefresh)
	}
	return nil
}
