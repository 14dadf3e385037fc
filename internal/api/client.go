package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ghplayer/internal/config"
)

// HeaderLoggedIn carries a per-request logged-in override, parsed like the
// session extra of the same meaning.
const HeaderLoggedIn = "X-Session-Logged-In"

// ErrUnavailable is returned when no API bind address is configured.
var ErrUnavailable = errors.New("api server address not configured")

// Error is a non-2xx response from the daemon.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client talks to a running daemon's HTTP API.
type Client struct {
	base     *url.URL
	http     *http.Client
	token    string
	loggedIn *bool
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLoggedInOverride sends HeaderLoggedIn on library requests.
func WithLoggedInOverride(loggedIn bool) ClientOption {
	return func(c *Client) {
		c.loggedIn = &loggedIn
	}
}

// NewClient builds a client for cfg's API bind address and token.
func NewClient(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, ErrUnavailable
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, ErrUnavailable
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse api bind: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	c := &Client{
		base:  base,
		http:  &http.Client{Timeout: 60 * time.Second},
		token: cfg.Paths.APIToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Root fetches the root node.
func (c *Client) Root(ctx context.Context) (Node, error) {
	var resp NodeResponse
	err := c.do(ctx, http.MethodGet, "/api/library/root", nil, nil, &resp)
	return resp.Node, err
}

// Children lists the children of parentID.
func (c *Client) Children(ctx context.Context, parentID string, page, pageSize int) (ChildrenResponse, error) {
	values := url.Values{}
	values.Set("parent", parentID)
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		values.Set("page_size", strconv.Itoa(pageSize))
	}
	var resp ChildrenResponse
	err := c.do(ctx, http.MethodGet, "/api/library/children", values, nil, &resp)
	return resp, err
}

// Item looks up a single node.
func (c *Client) Item(ctx context.Context, id string) (Node, error) {
	values := url.Values{}
	values.Set("id", id)
	var resp NodeResponse
	err := c.do(ctx, http.MethodGet, "/api/library/item", values, nil, &resp)
	return resp.Node, err
}

// Queue asks the daemon to build a queue for req.
func (c *Client) Queue(ctx context.Context, req QueueRequest) (QueueResponse, error) {
	var resp QueueResponse
	err := c.do(ctx, http.MethodPost, "/api/queue", nil, req, &resp)
	return resp, err
}

// Artwork fetches the cached bytes for a ref the daemon has resolved, along
// with their content type.
func (c *Client) Artwork(ctx context.Context, ref string) ([]byte, string, error) {
	values := url.Values{}
	values.Set("ref", ref)
	resp, err := c.send(ctx, http.MethodGet, "/api/artwork", values, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read artwork: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// SetLoginState flips the session's logged-in flag.
func (c *Client) SetLoginState(ctx context.Context, loggedIn bool) error {
	return c.do(ctx, http.MethodPost, "/api/session/login-state", nil, LoginStateRequest{LoggedIn: loggedIn}, nil)
}

// SetNowPlaying sets or, with a nil item, clears the current item.
func (c *Client) SetNowPlaying(ctx context.Context, req NowPlayingRequest) error {
	return c.do(ctx, http.MethodPost, "/api/session/now-playing", nil, req, nil)
}

// Status fetches daemon status.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var resp StatusResponse
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &resp)
	return resp, err
}

// Events fetches session events after since. With wait set the daemon holds
// the request until an event arrives or its poll window ends.
func (c *Client) Events(ctx context.Context, since uint64, wait bool) (EventsResponse, error) {
	values := url.Values{}
	if since > 0 {
		values.Set("since", strconv.FormatUint(since, 10))
	}
	if wait {
		values.Set("wait", "1")
	}
	var resp EventsResponse
	err := c.do(ctx, http.MethodGet, "/api/session/events", values, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, values url.Values, body, dst any) error {
	resp, err := c.send(ctx, method, path, values, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, values url.Values, body any) (*http.Response, error) {
	if c == nil {
		return nil, ErrUnavailable
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: values.Encode()})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.loggedIn != nil {
		req.Header.Set(HeaderLoggedIn, strconv.FormatBool(*c.loggedIn))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	return &Error{StatusCode: resp.StatusCode, Message: message}
}
