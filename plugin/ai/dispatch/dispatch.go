// Package dispatch implements the remote call used by the request batcher:
// one HTTP POST of {action, payload} to the AI proxy endpoint.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is the iss claim on minted proxy bearer tokens.
const TokenIssuer = "satchel"

// Config configures a dispatch client.
type Config struct {
	// URL is the proxy endpoint accepting {action, payload}.
	URL string
	// Secret, when non-empty, signs a short-lived bearer token on every call.
	// Set it when the proxy is deployed separately from this server.
	Secret string
	// Timeout bounds one remote call end to end (default: 60s). The batcher
	// never cancels a dispatched call, so this is the only recourse against
	// a hung remote.
	Timeout time.Duration
}

// Client posts batched AI requests to the proxy endpoint.
type Client struct {
	url    string
	secret string
	client *http.Client
}

// NewClient creates a dispatch client for the given proxy endpoint.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		url:    cfg.URL,
		secret: cfg.Secret,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// envelope is the proxy request contract.
type envelope struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Do executes one remote call. On 2xx the raw response body is returned for
// the caller to decode; on any other status the proxy's error message is
// propagated verbatim. No retries happen here: the original caller decides
// whether to try again.
func (c *Client) Do(ctx context.Context, action string, payload any) ([]byte, error) {
	body, err := json.Marshal(envelope{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.secret != "" {
		token, err := c.mintToken()
		if err != nil {
			return nil, fmt.Errorf("failed to sign bearer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(action, "error").Inc()
		return nil, fmt.Errorf("failed to reach AI proxy: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	requestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(action, "error").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		requestsTotal.WithLabelValues(action, "error").Inc()
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err == nil && eb.Error != "" {
			return nil, errors.New(eb.Error)
		}
		return nil, fmt.Errorf("ai proxy returned status %d", resp.StatusCode)
	}

	requestsTotal.WithLabelValues(action, "ok").Inc()
	return data, nil
}

// mintToken signs a short-lived HS256 bearer token for the proxy.
func (c *Client) mintToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": TokenIssuer,
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secret))
}
