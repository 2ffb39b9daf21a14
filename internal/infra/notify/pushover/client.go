package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.pushover.net/1/messages.json"

// Client sends push notifications through the Pushover messages API.
// With empty credentials the client is disabled and Push becomes a no-op.
type Client struct {
	token      string
	user       string
	endpoint   string
	httpClient *http.Client
}

func NewClient(token, user string) *Client {
	return &Client{
		token:      token,
		user:       user,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetEndpoint overrides the API endpoint (tests).
func (c *Client) SetEndpoint(endpoint string) { c.endpoint = endpoint }

func (c *Client) Enabled() bool {
	return c.token != "" && c.user != ""
}

// Push sends one notification to the user.
func (c *Client) Push(ctx context.Context, title, message string) error {
	if !c.Enabled() {
		return nil
	}
	form := url.Values{}
	form.Set("token", c.token)
	form.Set("user", c.user)
	form.Set("message", message)
	if title != "" {
		form.Set("title", title)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("non-200 response from pushover: %d", resp.StatusCode)
	}
	return nil
}
