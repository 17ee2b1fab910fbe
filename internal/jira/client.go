package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	userAgent       = "jira-ai-cli/1.0"
	retryMaxElapsed = 20 * time.Second
)

// APIError is a non-2xx response from Jira.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira API returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client provides authenticated HTTP access to a Jira instance.
type Client struct {
	URL        string
	Username   string
	APIToken   string
	HTTPClient *http.Client
	// Backoff builds the retry schedule for GET requests; nil uses an exponential
	// schedule bounded by retryMaxElapsed.
	Backoff func() backoff.BackOff
}

// NewClient creates a client with a 30s request timeout.
func NewClient(server, username, apiToken string) *Client {
	return &Client{
		URL:      strings.TrimSuffix(strings.TrimSpace(server), "/"),
		Username: strings.TrimSpace(username),
		APIToken: strings.TrimSpace(apiToken),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BrowseURL is the web URL of an issue.
func (c *Client) BrowseURL(key string) string {
	return c.URL + "/browse/" + key
}

// doRequest executes an authenticated request, encoding payload as JSON when non-nil,
// and returns the response body (nil for 204). GET requests are retried on transient
// failures; mutating requests are sent once so a ticket is never created twice.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, payload any) ([]byte, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("jira URL not configured")
	}
	if c.APIToken == "" {
		return nil, fmt.Errorf("jira API token not configured")
	}

	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	if method != http.MethodGet {
		return c.send(ctx, method, apiURL, data)
	}
	var out []byte
	err := backoff.Retry(func() error {
		body, err := c.send(ctx, method, apiURL, data)
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		out = body
		return err
	}, backoff.WithContext(c.retrySchedule(), ctx))
	return out, err
}

func (c *Client) send(ctx context.Context, method, apiURL string, data []byte) ([]byte, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func (c *Client) retrySchedule() backoff.BackOff {
	if c.Backoff != nil {
		return c.Backoff()
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// isRetryable reports rate limiting, gateway errors and transport failures.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return false
}

// setAuth uses basic auth when a username is set (Atlassian Cloud) and a bearer
// personal access token otherwise (Data Center).
func (c *Client) setAuth(req *http.Request) {
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.APIToken))
		req.Header.Set("Authorization", "Basic "+auth)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
}

// Myself returns the display name of the authenticated account. It is used as a
// connectivity and credentials check.
func (c *Client) Myself(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.URL+"/rest/api/3/myself", nil)
	if err != nil {
		return "", fmt.Errorf("get current user: %w", err)
	}
	var user struct {
		DisplayName  string `json:"displayName"`
		EmailAddress string `json:"emailAddress"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("parse user response: %w", err)
	}
	if user.DisplayName == "" {
		return user.EmailAddress, nil
	}
	return user.DisplayName, nil
}
