// Package rest talks to the chat platform's HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tmitchel/chancache"
)

const maxResponseBytes = 10 << 20

var (
	_ chancache.Gateway        = (*Client)(nil)
	_ chancache.OverrideSyncer = (*Client)(nil)
)

// Client is a thin wrapper around the platform REST API. Rate limits are
// reported as *chancache.RateLimitError rather than retried.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a client authenticating as the bot with token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type request struct {
	op     string
	method string
	path   string
	body   interface{}

	// channel routes answer 404 once the channel is gone
	channel bool
}

// do sends the request and decodes a JSON response into T. A nil result
// with a nil error means the platform answered with no content.
func do[T any](ctx context.Context, c *Client, r request) (*T, error) {
	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: marshal request", r.op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: create request", r.op)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &chancache.TransportError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &chancache.TransportError{Op: r.op, Status: resp.StatusCode, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"op":     r.op,
		"status": resp.StatusCode,
	}).Debug("api call")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &chancache.RateLimitError{Op: r.op, RetryAfter: retryAfter(resp.Header, data)}
	case resp.StatusCode == http.StatusNotFound && r.channel:
		return nil, errors.Wrap(chancache.ErrStaleChannel, r.op)
	case resp.StatusCode >= 300:
		return nil, &chancache.TransportError{Op: r.op, Status: resp.StatusCode, Err: apiError(data)}
	case resp.StatusCode == http.StatusNoContent || len(data) == 0:
		return nil, nil
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &chancache.TransportError{Op: r.op, Status: resp.StatusCode, Err: errors.Wrap(err, "decode response")}
	}
	return &out, nil
}

type errorBody struct {
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
}

func apiError(data []byte) error {
	var e errorBody
	if err := json.Unmarshal(data, &e); err == nil && e.Message != "" {
		return errors.Errorf("%s (code %d)", e.Message, e.Code)
	}
	return errors.New(strings.TrimSpace(string(data)))
}

// retryAfter reads the wait from the Retry-After header, falling back to the
// body's retry_after field. Both are in seconds.
func retryAfter(h http.Header, data []byte) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	var e errorBody
	if err := json.Unmarshal(data, &e); err == nil && e.RetryAfter > 0 {
		return time.Duration(e.RetryAfter * float64(time.Second))
	}
	return time.Second
}
