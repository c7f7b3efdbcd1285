package opensubtitles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultEndpoint    = "https://api.opensubtitles.org/xml-rpc"
	DefaultUserAgent   = "ossubd"
	defaultHTTPTimeout = 45 * time.Second

	// StatusOK is the status string the catalog returns on success.
	StatusOK = "200 OK"
)

// Config describes the OpenSubtitles client configuration.
type Config struct {
	Endpoint   string
	UserAgent  string
	Language   string
	HTTPClient *http.Client
	// MinInterval spaces consecutive calls. Zero disables throttling.
	MinInterval time.Duration
}

// Client issues raw XML-RPC calls against the OpenSubtitles endpoint.
type Client struct {
	endpoint    *url.URL
	userAgent   string
	language    string
	http        *http.Client
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("opensubtitles: endpoint %q must be http or https", endpoint)
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		return nil, errors.New("opensubtitles: language is required")
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		endpoint:    parsed,
		userAgent:   userAgent,
		language:    language,
		http:        client,
		minInterval: cfg.MinInterval,
	}, nil
}

// Language returns the configured sublanguageid.
func (c *Client) Language() string {
	return c.language
}

// LogIn performs an anonymous login and returns the response struct.
func (c *Client) LogIn(ctx context.Context) (map[string]any, error) {
	return c.callStruct(ctx, "LogIn", "", "", c.language, c.userAgent)
}

// SearchSubtitles runs one search with the given query structs.
func (c *Client) SearchSubtitles(ctx context.Context, token string, queries []map[string]any) (map[string]any, error) {
	return c.callStruct(ctx, "SearchSubtitles", token, queries)
}

// LogOut ends the session identified by token.
func (c *Client) LogOut(ctx context.Context, token string) (map[string]any, error) {
	return c.callStruct(ctx, "LogOut", token)
}

func (c *Client) callStruct(ctx context.Context, method string, params ...any) (map[string]any, error) {
	result, err := c.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	out, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("opensubtitles: %s returned %T, want struct", method, result)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, params ...any) (any, error) {
	body, err := encodeCall(method, params...)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: encode %s: %w", method, err)
	}
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: build %s request: %w", method, err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Method: method, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	result, err := decodeResponse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: %s: %w", method, err)
	}
	return result, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("User-Agent", c.userAgent)
}

// throttle waits until MinInterval has passed since the previous call.
func (c *Client) throttle(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastCall)
	if wait < 0 {
		wait = 0
	}
	c.lastCall = time.Now().Add(wait)
	c.mu.Unlock()
	return pause(ctx, wait)
}

func statusOf(resp map[string]any) string {
	status, _ := resp["status"].(string)
	return strings.TrimSpace(status)
}
