package broadband

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Broadband.is API base URL.
const DefaultBaseURL = "https://www.broadband.is/api"

// MaxResponseBytes caps how much of a reply body is read.
const MaxResponseBytes = 1 << 20

// ErrResponseTooLarge is returned when a successful reply exceeds
// MaxResponseBytes.
var ErrResponseTooLarge = errors.New("broadband response too large")

// Config holds the settings for one credential set.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Debug    bool
}

// Client is a minimal HTTP client for the Broadband.is REST API. Requests are
// authenticated with HTTP basic auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	debug      bool
}

// NewClient constructs a new client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		debug:      cfg.Debug,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.username != "" && c.password != ""
}

// Call performs method on path. For GET and DELETE params are sent as the
// query string, otherwise as a JSON body. Non-2xx responses return *APIError.
func (c *Client) Call(ctx context.Context, method, path string, params map[string]string) (*Response, error) {
	method = strings.ToUpper(method)
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var body io.Reader
	var payload []byte
	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(params) > 0 {
			q := url.Values{}
			for k, v := range params {
				q.Set(k, v)
			}
			endpoint += "?" + q.Encode()
		}
	case http.MethodPost, http.MethodPut:
		var err error
		payload, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	if c.debug {
		ev := log.Debug().Str("method", method).Str("endpoint", endpoint)
		if payload != nil {
			ev = ev.RawJSON("request", payload)
		}
		ev.Msg("[BROADBAND] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	tooLarge := len(respBody) > MaxResponseBytes
	if tooLarge {
		respBody = respBody[:MaxResponseBytes]
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Bytes("response", respBody).
			Msg("[BROADBAND] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if tooLarge {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, MaxResponseBytes, endpoint)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       decodeBody(respBody),
		Duration:   time.Since(start),
	}, nil
}

// decodeBody keeps JSON bodies as-is and wraps anything else in a JSON string.
func decodeBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return json.RawMessage(quoted)
}
