// Package pushover posts notifications to the Pushover message API.
package pushover

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/boogah/total-pushover/totalpushover"
)

// Message is the form payload of a Pushover message.
type Message struct {
	Token   string
	User    string
	Title   string
	Message string
}

// Form returns the form-encoded fields of m.
func (m Message) Form() map[string]string {
	return map[string]string{
		"token":   m.Token,
		"user":    m.User,
		"title":   m.Title,
		"message": m.Message,
	}
}

// APIError is returned when Pushover answers with a non-success status.
type APIError struct {
	StatusCode int
	Errors     []string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("pushover: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("pushover: status %d: %s", e.StatusCode, strings.Join(e.Errors, "; "))
}

type errorBody struct {
	Status int      `json:"status"`
	Errors []string `json:"errors"`
}

// Client sends Messages to a Pushover endpoint.
type Client struct {
	endpoint string
	http     *resty.Client
}

// NewClient creates a Client. Empty endpoint and zero timeout fall back to the
// public API and totalpushover.DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = totalpushover.Endpoint
	}
	if timeout <= 0 {
		timeout = totalpushover.DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     resty.New().SetTimeout(timeout),
	}
}

// Send posts m and waits for the response. Transport failures and non-2xx
// responses are returned as errors; the response body is otherwise ignored.
func (c *Client) Send(ctx context.Context, m Message) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(m.Form()).
		SetError(&errorBody{}).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("pushover: posting message: %w", err)
	}
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Errors = body.Errors
	}
	return apiErr
}
