package contentapi

import (
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
	"ghplayer/internal/credentials"
)

const (
	defaultTimeout = 15 * time.Second
	errorBodyLimit = 4096

	playlistSelect = "id,title,description,image_url"
	episodeEmbed   = "id,title,summary,image_url,audio_url,podcasts(title,image_url)"
)

// ErrMissingAuth is returned when the stored credentials lack a backend URL,
// an API key, or an access token.
var ErrMissingAuth = errors.New("contentapi: missing backend credentials")

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("contentapi: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("contentapi: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client queries the backend's REST endpoints with the stored credentials.
type Client struct {
	creds      credentials.Loader
	httpClient *http.Client
	timeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for backend requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each backend request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// New constructs a client that reads credentials from creds on every call.
func New(cfg *config.Config, creds credentials.Loader, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
	}
	if cfg != nil && cfg.RequestTimeout() > 0 {
		c.timeout = cfg.RequestTimeout()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSeries returns published public playlists in the series category,
// most recently updated first.
func (c *Client) FetchSeries(ctx context.Context, limit int) ([]Playlist, error) {
	params := url.Values{}
	params.Set("select", playlistSelect)
	params.Set("category", "eq.series")
	params.Set("is_published", "eq.true")
	params.Set("visibility", "eq.public")
	params.Set("order", "updated_at.desc")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	return c.fetchPlaylists(ctx, params)
}

// FetchPublicPlaylists returns published public playlists of any category.
func (c *Client) FetchPublicPlaylists(ctx context.Context, limit int) ([]Playlist, error) {
	params := url.Values{}
	params.Set("select", playlistSelect)
	params.Set("is_published", "eq.true")
	params.Set("visibility", "eq.public")
	params.Set("order", "updated_at.desc")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	return c.fetchPlaylists(ctx, params)
}

func (c *Client) fetchPlaylists(ctx context.Context, params url.Values) ([]Playlist, error) {
	var rows []playlistRow
	if err := c.get(ctx, "rest/v1/playlists", params, &rows); err != nil {
		return nil, err
	}
	playlists := make([]Playlist, 0, len(rows))
	for _, row := range rows {
		playlists = append(playlists, row.toPlaylist())
	}
	return playlists, nil
}

// FetchLatestEpisodes returns the newest episodes across all podcasts.
func (c *Client) FetchLatestEpisodes(ctx context.Context, limit int) ([]Episode, error) {
	params := url.Values{}
	params.Set("select", "id,title,summary,published_at,duration_seconds,image_url,audio_url,podcasts(title,image_url)")
	params.Set("order", "published_at.desc")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var rows []episodeRow
	if err := c.get(ctx, "rest/v1/episodes", params, &rows); err != nil {
		return nil, err
	}
	episodes := make([]Episode, 0, len(rows))
	for _, row := range rows {
		episodes = append(episodes, row.toEpisode())
	}
	return episodes, nil
}

// FetchSeriesEpisodes returns a playlist's episodes in playlist order. Items
// whose episode no longer exists are dropped.
func (c *Client) FetchSeriesEpisodes(ctx context.Context, seriesID string, limit int) ([]Episode, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return nil, errors.New("contentapi: series id required")
	}
	params := url.Values{}
	params.Set("select", "id,sort_order,episodes("+episodeEmbed+")")
	params.Set("playlist_id", "eq."+seriesID)
	params.Set("order", "sort_order.asc")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var rows []playlistItemRow
	if err := c.get(ctx, "rest/v1/playlist_items", params, &rows); err != nil {
		return nil, err
	}
	episodes := make([]Episode, 0, len(rows))
	for _, row := range rows {
		if row.Episodes == nil {
			continue
		}
		episodes = append(episodes, row.Episodes.toEpisode())
	}
	return episodes, nil
}

// FetchPlaylistCover returns the cover image reference of a playlist, or ""
// when the playlist has none or does not exist.
func (c *Client) FetchPlaylistCover(ctx context.Context, seriesID string) (string, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return "", nil
	}
	params := url.Values{}
	params.Set("select", "image_url")
	params.Set("id", "eq."+seriesID)
	params.Set("limit", "1")

	var rows []playlistRow
	if err := c.get(ctx, "rest/v1/playlists", params, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return strings.TrimSpace(string(rows[0].ImageURL)), nil
}

// FetchContinueListening returns unfinished listening progress, most recently
// updated first. Items keep a nil Episode when the episode is gone.
func (c *Client) FetchContinueListening(ctx context.Context, limit int) ([]ContinueItem, error) {
	params := url.Values{}
	params.Set("select", "progress_ms,updated_at,episodes("+episodeEmbed+")")
	params.Set("completed", "eq.false")
	params.Set("order", "updated_at.desc")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var rows []progressRow
	if err := c.get(ctx, "rest/v1/listening_progress", params, &rows); err != nil {
		return nil, err
	}
	items := make([]ContinueItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toContinueItem())
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dst any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	creds, ok, err := c.loadCredentials(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMissingAuth
	}

	base, err := url.Parse(creds.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("%w: invalid backend url %q", ErrMissingAuth, creds.BaseURL)
	}
	reqURL := base.JoinPath(endpoint)
	reqURL.RawQuery = params.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", creds.APIKey)
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contentapi: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("contentapi: decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) loadCredentials(ctx context.Context) (credentials.Config, bool, error) {
	if c.creds == nil {
		return credentials.Config{}, false, nil
	}
	creds, ok, err := c.creds.Load(ctx)
	if err != nil {
		return credentials.Config{}, false, fmt.Errorf("contentapi: load credentials: %w", err)
	}
	if !ok || !creds.Complete() {
		return credentials.Config{}, false, nil
	}
	return creds, true, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
