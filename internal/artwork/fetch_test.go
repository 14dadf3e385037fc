package artwork_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ghplayer/internal/artwork"
)

func TestDownloadRejectsDeclaredLengthWithoutReadingBody(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	fetcher := artwork.NewFetcher(1024, time.Second, 5*time.Second)
	start := time.Now()
	_, err := fetcher.Download(context.Background(), srv.URL+"/big.jpg")
	if !errors.Is(err, artwork.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected rejection before body read, took %v", elapsed)
	}
}

func TestDownloadEnforcesRunningTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 4; i++ {
			_, _ = w.Write(bytes.Repeat([]byte{0xAA}, 400))
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)

	fetcher := artwork.NewFetcher(1024, time.Second, time.Second)
	_, err := fetcher.Download(context.Background(), srv.URL)
	if !errors.Is(err, artwork.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge from streamed body, got %v", err)
	}
}

func TestDownloadAcceptsBodyAtLimit(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "image/*" {
			t.Errorf("unexpected Accept header %q", got)
		}
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	fetcher := artwork.NewFetcher(1024, time.Second, time.Second)
	data, err := fetcher.Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("unexpected payload length %d", len(data))
	}
}

func TestDownloadFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new.png", http.StatusFound)
	})
	mux.HandleFunc("/new.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	fetcher := artwork.NewFetcher(1024, time.Second, time.Second)
	data, err := fetcher.Download(context.Background(), srv.URL+"/old.png")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestDownloadReportsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	fetcher := artwork.NewFetcher(1024, time.Second, time.Second)
	_, err := fetcher.Download(context.Background(), srv.URL)
	var statusErr *artwork.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestDownloadTimesOutOnStalledBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	fetcher := artwork.NewFetcher(1024, time.Second, 100*time.Millisecond)
	_, err := fetcher.Download(context.Background(), srv.URL)
	if !errors.Is(err, artwork.ErrReadTimeout) {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}
}

func TestDownloadRejectsNonHTTPSchemes(t *testing.T) {
	fetcher := artwork.NewFetcher(1024, time.Second, time.Second)
	for _, url := range []string{"file:///tmp/a.png", "content://media/1", "public/a.png"} {
		if _, err := fetcher.Download(context.Background(), url); !errors.Is(err, artwork.ErrUnsupportedScheme) {
			t.Fatalf("Download(%q) error = %v, want ErrUnsupportedScheme", url, err)
		}
	}
}
