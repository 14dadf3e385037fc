package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ghplayer/internal/api"
	"ghplayer/internal/testsupport"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...api.ClientOption) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = strings.TrimPrefix(srv.URL, "http://")
	cfg.Paths.APIToken = "secret"
	client, err := api.NewClient(cfg, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestClientChildrenSendsQueryAndToken(t *testing.T) {
	var gotQuery, gotAuth, gotOverride string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotOverride = r.Header.Get(api.HeaderLoggedIn)
		_ = json.NewEncoder(w).Encode(api.ChildrenResponse{Parent: "root", Items: []api.Node{{ID: "root/series"}}})
	}, api.WithLoggedInOverride(false))

	resp, err := client.Children(context.Background(), "root", 2, 10)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "root/series" {
		t.Fatalf("unexpected children %+v", resp)
	}
	if gotQuery != "page=2&page_size=10&parent=root" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotOverride != "false" {
		t.Fatalf("unexpected override header %q", gotOverride)
	}
}

func TestClientDecodesErrorPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"item not found"}`))
	})

	_, err := client.Item(context.Background(), "now_playing")
	if err == nil {
		t.Fatal("expected error")
	}
	if api.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if !strings.Contains(err.Error(), "item not found") {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestClientQueuePostsJSON(t *testing.T) {
	var got api.QueueRequest
	var contentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		position := int64(0)
		_ = json.NewEncoder(w).Encode(api.QueueResponse{Items: got.Items, StartIndex: got.StartIndex, StartPositionMs: &position})
	})

	resp, err := client.Queue(context.Background(), api.QueueRequest{Items: []api.Node{{ID: "a"}, {ID: "b"}}, StartIndex: 1})
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if len(got.Items) != 2 || got.StartIndex != 1 || got.StartPositionMs != nil {
		t.Fatalf("unexpected request %+v", got)
	}
	if resp.StartPositionMs == nil || *resp.StartPositionMs != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestClientArtworkReturnsBytes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ref") != "https://cdn.test/a.png" {
			t.Errorf("unexpected ref param %q", r.URL.Query().Get("ref"))
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})

	data, contentType, err := client.Artwork(context.Background(), "https://cdn.test/a.png")
	if err != nil {
		t.Fatalf("Artwork: %v", err)
	}
	if string(data) != "png-bytes" || contentType != "image/png" {
		t.Fatalf("unexpected artwork %q %q", data, contentType)
	}
}

func TestNewClientRequiresBind(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = " "
	if _, err := api.NewClient(cfg); err != api.ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
