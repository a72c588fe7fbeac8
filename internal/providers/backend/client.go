// Package backend talks to the assistant backend: chat, transcription,
// document upload, ingestion status and the signed-in user's profile.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/retry"
)

// ErrMalformed marks a response whose body lacks the expected shape.
var ErrMalformed = core.ErrMalformedResponse

// HTTPError is a non-2xx answer. Detail carries the server's "detail" field
// when the body had one.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) HTTPStatus() (int, string) {
	return e.StatusCode, e.Detail
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

type Client struct {
	client  *http.Client
	baseURL string
	cookie  string
	retrier *retry.Retrier
}

func NewClient(cfg core.BackendConfig) *Client {
	timeout := cfg.GetRequestTimeout()
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	retryCfg := retry.NewDefaultConfig()
	retryCfg.MaxRetries = 2
	retryCfg.Retryable = isTransient

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.GetServerURL(), "/"),
		cookie:  cfg.GetSessionCookie(),
		retrier: retry.NewRetrier(retryCfg),
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", core.AppUserAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrUnreachable, err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.doRequest(ctx, method, path, body, contentType)
}

// decodeResponse closes the body. Non-2xx answers become *HTTPError, bodies
// that are not JSON wrap ErrMalformed.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode}
		var payload struct {
			Detail any `json:"detail"`
		}
		if json.Unmarshal(data, &payload) == nil {
			if s, ok := payload.Detail.(string); ok {
				httpErr.Detail = s
			}
		}
		return httpErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// isTransient holds for transport failures and 5xx answers.
func isTransient(err error) bool {
	if errors.Is(err, core.ErrUnreachable) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode >= http.StatusInternalServerError
}
