package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mohamedMoujib/E-Health-sub000/internal/utils"
)

// errNotAuthenticated short-circuits calls that require a credential before
// any network traffic happens.
var errNotAuthenticated = fmt.Errorf("not authenticated: no access token")

// Helper methods for HTTP requests
func (c *APIClient) get(path string) ([]byte, error) {
	if err := c.ensureCredential(); err != nil {
		return nil, err
	}
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.doRequest(req)
	if err != nil && isUnauthorized(err) && c.RefreshToken() != "" {
		if rerr := c.refreshTokens(); rerr == nil {
			req2, _ := http.NewRequest("GET", c.baseURL+path, nil)
			return c.doRequest(req2)
		}
	}
	return body, err
}

func (c *APIClient) send(method, path string, data any) (map[string]any, error) {
	if err := c.ensureCredential(); err != nil {
		return nil, err
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(req)
	if err != nil && isUnauthorized(err) && c.RefreshToken() != "" {
		if rerr := c.refreshTokens(); rerr == nil {
			req2, _ := http.NewRequest(method, c.baseURL+path, bytes.NewBuffer(jsonData))
			resp, err = c.doRequest(req2)
		}
	}
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return map[string]any{}, nil
	}

	var result map[string]any
	err = json.Unmarshal(resp, &result)
	return result, err
}

func (c *APIClient) post(path string, data any) (map[string]any, error) {
	return c.send("POST", path, data)
}

func (c *APIClient) patch(path string, data any) (map[string]any, error) {
	return c.send("PATCH", path, data)
}

func (c *APIClient) delete(path string, data any) (map[string]any, error) {
	return c.send("DELETE", path, data)
}

// postMultipart uploads a file as multipart/form-data under the given field
// name.
func (c *APIClient) postMultipart(path, fieldName, filename string, file io.Reader) (map[string]any, error) {
	if err := c.ensureCredential(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %s, Response: %s", resp.Status, string(body))
	}

	var result map[string]any
	if len(body) == 0 {
		return map[string]any{}, nil
	}
	err = json.Unmarshal(body, &result)
	return result, err
}

// ensureCredential rejects credential-requiring calls locally when no token
// is held, and refreshes proactively when the held one is already expired.
func (c *APIClient) ensureCredential() error {
	token := c.AccessToken()
	if token == "" {
		return errNotAuthenticated
	}
	if utils.TokenExpired(token) {
		if c.RefreshToken() == "" {
			return fmt.Errorf("not authenticated: access token expired")
		}
		if err := c.refreshTokens(); err != nil {
			return fmt.Errorf("not authenticated: %w", err)
		}
	}
	return nil
}

func (c *APIClient) doRequest(req *http.Request) ([]byte, error) {
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Check if HTTP status code is not in the success range
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %s, Response: %s", resp.Status, string(body))
	}

	return body, nil // Return the actual response body
}

func isUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "HTTP error: 401")
}
