package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrTooLarge is returned when a download or recompressed image exceeds the byte ceiling.
	ErrTooLarge = errors.New("artwork exceeds size limit")
	// ErrDecode is returned when downloaded bytes are not a supported image.
	ErrDecode = errors.New("artwork decode failed")
	// ErrUnsupportedScheme is returned for references that are not http(s).
	ErrUnsupportedScheme = errors.New("artwork url is not http(s)")
	// ErrReadTimeout is returned when the body stalls longer than the read timeout.
	ErrReadTimeout = errors.New("artwork read timed out")
)

// StatusError reports a non-2xx artwork response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("artwork request %s returned status %d", e.URL, e.StatusCode)
}

const readChunkSize = 8 * 1024

// Fetcher downloads artwork with a connect timeout, a read inactivity timeout,
// and a hard byte ceiling. Redirects are followed.
type Fetcher struct {
	client      *http.Client
	maxBytes    int64
	readTimeout time.Duration
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the HTTP client. Its transport is used as-is, so the
// caller owns the connect timeout.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewFetcher builds a Fetcher.
func NewFetcher(maxBytes int64, connectTimeout, readTimeout time.Duration, opts ...FetcherOption) *Fetcher {
	dialer := &net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
	}
	f := &Fetcher{
		client:      &http.Client{Transport: transport},
		maxBytes:    maxBytes,
		readTimeout: readTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Download fetches url into memory. A declared Content-Length above the ceiling
// is rejected before the body is read; otherwise the running total is checked
// as the body streams.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, error) {
	if !isHTTPURL(url) {
		return nil, ErrUnsupportedScheme
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build artwork request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("artwork request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("content-length %d: %w", resp.ContentLength, ErrTooLarge)
	}

	body := newIdleReader(resp.Body, f.readTimeout, cancel)
	defer body.stop()

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	chunk := make([]byte, readChunkSize)
	var total int64
	for {
		n, readErr := body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > f.maxBytes {
				return nil, fmt.Errorf("read %d bytes: %w", total, ErrTooLarge)
			}
			buf.Write(chunk[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if body.timedOut() {
				return nil, ErrReadTimeout
			}
			return nil, fmt.Errorf("read artwork body: %w", readErr)
		}
	}
	return buf.Bytes(), nil
}

// idleReader cancels the request when no bytes arrive within timeout.
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer

	mu      sync.Mutex
	expired bool
}

func newIdleReader(r io.Reader, timeout time.Duration, cancel context.CancelFunc) *idleReader {
	ir := &idleReader{r: r, timeout: timeout}
	if timeout > 0 {
		ir.timer = time.AfterFunc(timeout, func() {
			ir.mu.Lock()
			ir.expired = true
			ir.mu.Unlock()
			cancel()
		})
	}
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 && ir.timer != nil {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}

func (ir *idleReader) stop() {
	if ir.timer != nil {
		ir.timer.Stop()
	}
}

func (ir *idleReader) timedOut() bool {
	ir.mu.Lock()
	defer ir.mu.Unlock()
	return ir.expired
}
