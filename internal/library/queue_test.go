package library_test

import (
	"context"
	"errors"
	"testing"

	"ghplayer/internal/contentapi"
	"ghplayer/internal/library"
	"ghplayer/internal/session"
	"ghplayer/internal/testsupport"
)

func fallbackSelection(selected string, startPositionMs int64) library.Selection {
	return library.Selection{
		Items: []library.ContentNode{
			{ID: "client/a", Playable: true},
			{ID: selected, Playable: true},
		},
		StartIndex:      1,
		StartPositionMs: startPositionMs,
	}
}

func TestUnrecognizedSelectionReturnsFallbackVerbatim(t *testing.T) {
	f := newFixture(t, &testsupport.FakeSource{Latest: testsupport.Episodes("e1")})
	for _, selected := range []string{"custom/thing", "root/series", "series/s1", "episode/series/only-one-part", "now_playing"} {
		sel := fallbackSelection(selected, 1234)
		queue, err := wait(t, f.queue.Build(context.Background(), f.host, sel))
		if err != nil {
			t.Fatalf("Build(%q): %v", selected, err)
		}
		if queue.StartPositionMs != 1234 || queue.StartIndex != 1 || !equalStrings(ids(queue.Items), ids(sel.Items)) {
			t.Fatalf("Build(%q) = %+v, want fallback verbatim", selected, queue)
		}
	}
	if f.source.Calls("FetchLatestEpisodes") != 0 {
		t.Fatal("expected no fetch for unrecognized selections")
	}
}

func TestLatestQueueStartsAtSelectedEpisode(t *testing.T) {
	f := newFixture(t, &testsupport.FakeSource{Latest: testsupport.Episodes("e1", "e2", "e3")})

	queue, err := wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection("episode/latest/e3", 777)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"episode/latest/e1", "episode/latest/e2", "episode/latest/e3"}
	if !equalStrings(ids(queue.Items), want) {
		t.Fatalf("got %v want %v", ids(queue.Items), want)
	}
	if queue.StartIndex != 2 || queue.StartPositionMs != 777 {
		t.Fatalf("unexpected start: index=%d position=%d", queue.StartIndex, queue.StartPositionMs)
	}
	if !f.host.HasPlaylist() {
		t.Fatal("expected host told a multi-item queue is loaded")
	}
}

func TestLatestQueueMissingEpisodeStartsAtZero(t *testing.T) {
	f := newFixture(t, &testsupport.FakeSource{Latest: testsupport.Episodes("e1", "e2")})
	queue, err := wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection("episode/latest/gone", 5)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if queue.StartIndex != 0 || queue.StartPositionMs != 5 || len(queue.Items) != 2 {
		t.Fatalf("unexpected queue: %+v", queue)
	}
}

func TestSeriesQueueStartIndex(t *testing.T) {
	source := &testsupport.FakeSource{
		SeriesEpisodes: map[string][]contentapi.Episode{"s1": testsupport.Episodes("e1", "e2", "e3")},
		Covers:         map[string]string{"s1": "public/cover.jpg"},
	}
	f := newFixture(t, source)

	queue, err := wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection("episode/series/s1/e2", 42)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if queue.StartIndex != 1 || queue.StartPositionMs != 42 {
		t.Fatalf("unexpected start: %+v", queue)
	}
	if queue.Items[1].ID != "episode/series/s1/e2" || queue.Items[1].ArtworkRef != "art:public/cover.jpg" {
		t.Fatalf("unexpected selected item: %+v", queue.Items[1])
	}
}

func TestContinueQueueUsesRecordedProgress(t *testing.T) {
	episodes := testsupport.Episodes("e1", "e2", "e3")
	source := &testsupport.FakeSource{Continue: []contentapi.ContinueItem{
		{Episode: &episodes[0], ProgressMs: 100},
		{Episode: nil, ProgressMs: 999},
		{Episode: &episodes[1], ProgressMs: 4200},
		{Episode: &episodes[2], ProgressMs: -50},
	}}
	f := newFixture(t, source)

	queue, err := wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection("episode/continue/e2", 1)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if queue.StartPositionMs != 4200 {
		t.Fatalf("expected recorded progress 4200, got %d", queue.StartPositionMs)
	}
	if queue.StartIndex != 1 || queue.Items[queue.StartIndex].ID != "episode/continue/e2" {
		t.Fatalf("expected start on the selected episode, got index %d in %v", queue.StartIndex, ids(queue.Items))
	}

	queue, _ = wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection("episode/continue/e3", 1)))
	if queue.StartPositionMs != 0 || queue.StartIndex != 2 {
		t.Fatalf("expected negative progress clamped to 0, got %+v", queue)
	}

	queue, _ = wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection("episode/continue/missing", 8000)))
	if queue.StartPositionMs != 0 || queue.StartIndex != 0 {
		t.Fatalf("expected position 0 for unknown episode, got %+v", queue)
	}
}

func TestQueueFetchFailureFallsBackToClientQueue(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name     string
		selected string
		source   *testsupport.FakeSource
		op       string
	}{
		{"latest", "episode/latest/e1", &testsupport.FakeSource{LatestErr: boom}, "queue_episode_latest"},
		{"series cover", "episode/series/s1/e1", &testsupport.FakeSource{CoverErr: boom}, "queue_episode_series"},
		{"series episodes", "episode/series/s1/e1", &testsupport.FakeSource{EpisodesErr: boom}, "queue_episode_series"},
		{"continue", "episode/continue/e1", &testsupport.FakeSource{ContinueErr: boom}, "queue_episode_continue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.source)
			sel := fallbackSelection(tt.selected, 3000)
			queue, err := wait(t, f.queue.Build(context.Background(), f.host, sel))
			if err != nil {
				t.Fatalf("expected failure to be swallowed, got %v", err)
			}
			if queue.StartIndex != 0 || queue.StartPositionMs != library.PositionUnset || queue.PositionSet() {
				t.Fatalf("expected index 0 with unset position, got %+v", queue)
			}
			if !equalStrings(ids(queue.Items), ids(sel.Items)) {
				t.Fatalf("expected client items, got %v", ids(queue.Items))
			}
			if f.host.HasPlaylist() {
				t.Fatal("expected playlist state untouched on failure")
			}
			if got := fallbackCount(t, f.registry, tt.op); got != 1 {
				t.Fatalf("expected %s fallback recorded, got %v", tt.op, got)
			}
		})
	}
}

func TestEmptyListYieldsEmptyQueue(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		position int64
		op       string
	}{
		{"latest", "episode/latest/e1", 3000, "queue_episode_latest"},
		{"series", "episode/series/s1/e1", 3000, "queue_episode_series"},
		{"continue", "episode/continue/e1", 0, "queue_episode_continue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &testsupport.FakeSource{})
			f.host.SetHasPlaylist(true)
			queue, err := wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection(tt.selected, 3000)))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if queue.Items == nil || len(queue.Items) != 0 {
				t.Fatalf("expected empty queue, got %v", ids(queue.Items))
			}
			if queue.StartIndex != 0 || queue.StartPositionMs != tt.position {
				t.Fatalf("expected index 0 at %d, got %+v", tt.position, queue)
			}
			if f.host.HasPlaylist() {
				t.Fatal("expected empty queue to clear playlist state")
			}
			if got := fallbackCount(t, f.registry, tt.op); got != 0 {
				t.Fatalf("expected no fallback for empty list, got %v", got)
			}
		})
	}
}

func TestNowPlayingQueueUsesCurrentItem(t *testing.T) {
	f := newFixture(t, &testsupport.FakeSource{Latest: testsupport.Episodes("e1")})
	f.host.SetNowPlaying(session.MediaItem{ID: "episode/latest/e7", Title: "Seven", AudioURI: "https://cdn.test/e7.mp3"}, 65000)

	sel := library.Selection{Items: []library.ContentNode{{ID: "now_playing", Playable: true}}, StartPositionMs: 1}
	queue, err := wait(t, f.queue.Build(context.Background(), f.host, sel))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(queue.Items) != 1 || queue.Items[0].ID != "episode/latest/e7" || queue.Items[0].Title != "Seven" {
		t.Fatalf("expected current item as sole entry, got %+v", queue.Items)
	}
	if queue.StartIndex != 0 || queue.StartPositionMs != 65000 {
		t.Fatalf("expected current position, got %+v", queue)
	}
	if f.source.Calls("FetchLatestEpisodes") != 0 {
		t.Fatal("expected no fetch for now playing")
	}
}

func TestSingleItemQueueClearsPlaylistState(t *testing.T) {
	f := newFixture(t, &testsupport.FakeSource{Latest: testsupport.Episodes("e1")})
	f.host.SetPlaylistState(true)

	if _, err := wait(t, f.queue.Build(context.Background(), f.host, fallbackSelection("episode/latest/e1", 0))); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.host.HasPlaylist() {
		t.Fatal("expected single-item queue to report no playlist")
	}
}

func TestQueueWhileLoggedOutPassesThrough(t *testing.T) {
	f := newFixture(t, &testsupport.FakeSource{Latest: testsupport.Episodes("e1", "e2")})
	f.host.SetLoginState(false)

	sel := fallbackSelection("episode/latest/e2", 10)
	queue, err := wait(t, f.queue.Build(context.Background(), f.host, sel))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if queue.StartIndex != 1 || queue.StartPositionMs != 10 || f.source.Calls("FetchLatestEpisodes") != 0 {
		t.Fatalf("expected client queue untouched without fetching, got %+v", queue)
	}
}

func TestSelectionSelectedID(t *testing.T) {
	items := []library.ContentNode{{ID: "a"}, {ID: "b"}}
	tests := []struct {
		index int
		want  string
	}{{-1, "a"}, {0, "a"}, {1, "b"}, {5, "b"}}
	for _, tt := range tests {
		if got := (library.Selection{Items: items, StartIndex: tt.index}).SelectedID(); got != tt.want {
			t.Fatalf("SelectedID(index=%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
	if got := (library.Selection{}).SelectedID(); got != "" {
		t.Fatalf("expected empty id for empty selection, got %q", got)
	}
}
