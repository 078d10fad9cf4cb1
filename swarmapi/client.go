// Package swarmapi is a minimal client for the SwarmUI HTTP API.
//
// client.go holds the transport layer: one Client with JSON POST/GET
// helpers and error classification. Transport-level failures (refused
// connection, timeout) become core.ConnectivityError and abort the run;
// well-formed error responses become core.BackendError and only fail the
// one request.
package swarmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"swarmgen/core"
	"swarmgen/logging"
)

// API endpoints used by the client.
const (
	endpointNewSession         = "/API/GetNewSession"
	endpointChangeUserSettings = "/API/ChangeUserSettings"
	endpointGenerateText2Image = "/API/GenerateText2Image"
	endpointListModels         = "/API/ListModels"
	endpointListT2IParams      = "/API/ListT2IParams"
	endpointCurrentStatus      = "/API/GetCurrentStatus"
)

// Client talks to one SwarmUI server.
//
// Thread Safety: Client is safe for concurrent use after NewSession has
// been called; the session ID is written once and only read afterwards.
type Client struct {
	baseURL   string
	http      *http.Client
	generate  *http.Client
	log       *logging.Logger
	sessionID string
}

// ClientConfig holds the settings for a Client.
type ClientConfig struct {
	// Host and Port address the server. Both are required.
	Host string
	Port string

	// Timeout applies to every call except image generation.
	// Default: 30 seconds.
	Timeout time.Duration

	// GenerateTimeout applies to GenerateText2Image, which can run for
	// many minutes on slow backends. Default: 1 hour.
	GenerateTimeout time.Duration

	// Logger for request/response logging (optional).
	Logger *logging.Logger
}

// NewClient creates a client for the server at cfg.Host:cfg.Port.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("swarmapi: host cannot be empty")
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("swarmapi: port cannot be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = core.DefaultHTTPTimeout
	}
	if cfg.GenerateTimeout == 0 {
		cfg.GenerateTimeout = core.DefaultGenerateTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	return &Client{
		baseURL:  fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port),
		http:     core.NewHTTPClient(cfg.Timeout),
		generate: core.NewHTTPClient(cfg.GenerateTimeout),
		log:      cfg.Logger.Named("swarmapi"),
	}, nil
}

// BaseURL returns the server base URL, e.g. "http://localhost:7801".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SessionID returns the session established by NewSession, or "".
func (c *Client) SessionID() string {
	return c.sessionID
}

// post sends a JSON POST to an API endpoint and decodes the response into
// a generic map. An "error" key in an otherwise-successful response is the
// server's way of reporting a per-request failure.
func (c *Client) post(ctx context.Context, client *http.Client, endpoint string, params map[string]any) (map[string]json.RawMessage, error) {
	url := c.baseURL + endpoint

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("swarmapi: encoding %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("swarmapi: building %s request: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", core.DefaultUserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debugw("POST", "endpoint", endpoint)
	resp, err := client.Do(req)
	if err != nil {
		return nil, core.ErrConnectivity(url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrConnectivity(url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.ErrBackend(endpoint, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(data, 200)))
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, core.ErrBackend(endpoint, fmt.Sprintf("invalid JSON response: %v", err))
	}
	if raw, ok := decoded["error"]; ok {
		var reason string
		if err := json.Unmarshal(raw, &reason); err != nil {
			reason = string(raw)
		}
		return nil, core.ErrBackend(endpoint, reason)
	}
	return decoded, nil
}

// get fetches a server-relative path and returns the raw body. Used for
// image downloads, which are not part of the JSON API.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + "/" + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("swarmapi: building GET request: %w", err)
	}
	req.Header.Set("User-Agent", core.DefaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.ErrConnectivity(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.ErrBackend(path, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrConnectivity(url, err)
	}
	return data, nil
}

// stringField decodes a string value from a decoded response map.
func stringField(resp map[string]json.RawMessage, key string) (string, error) {
	raw, ok := resp[key]
	if !ok {
		return "", fmt.Errorf("swarmapi: response missing '%s'", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("swarmapi: decoding '%s': %w", key, err)
	}
	return s, nil
}

func truncate(data []byte, n int) string {
	s := strings.TrimSpace(string(data))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
