// Package client is the REST half of the server boundary: authenticated
// JSON calls for notifications, chats, messages and patients.
package client

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

type APIClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	log        zerolog.Logger

	// mu guards the token pair: the periodic refresh job writes it while
	// UI goroutines and the realtime dialer read it.
	mu           sync.RWMutex
	accessToken  string
	refreshToken string

	// OnTokensRefreshed is invoked after a successful refresh so the caller
	// can persist the new pair.
	OnTokensRefreshed func(access, refresh string)
}

func New(serverURL string, log zerolog.Logger) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(serverURL, "/") + "/api",
		httpClient: &http.Client{},
		cache:      cache.New(time.Minute, 30*time.Second),
		log:        log,
	}
}

// Health probes the server before the UI starts, the same way the app
// refuses to launch against a dead server.
func (c *APIClient) Health() error {
	req, err := http.NewRequest("GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned unexpected status: %s", resp.Status)
	}
	return nil
}

func (c *APIClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken = access
	c.refreshToken = refresh
	c.mu.Unlock()
}

func (c *APIClient) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *APIClient) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken
}
