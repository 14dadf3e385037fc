package testsupport

import (
	"context"
	"sync"

	"ghplayer/internal/contentapi"
)

// FakeSource is an in-memory content source. Each Err field, when set, is
// returned by the matching call.
type FakeSource struct {
	mu sync.Mutex

	Series         []contentapi.Playlist
	Public         []contentapi.Playlist
	Latest         []contentapi.Episode
	SeriesEpisodes map[string][]contentapi.Episode
	Covers         map[string]string
	Continue       []contentapi.ContinueItem

	SeriesErr   error
	PublicErr   error
	LatestErr   error
	EpisodesErr error
	CoverErr    error
	ContinueErr error

	calls map[string]int
}

func (f *FakeSource) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

// Calls returns how many times the named method ran.
func (f *FakeSource) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *FakeSource) FetchSeries(_ context.Context, limit int) ([]contentapi.Playlist, error) {
	f.record("FetchSeries")
	if f.SeriesErr != nil {
		return nil, f.SeriesErr
	}
	return capped(f.Series, limit), nil
}

func (f *FakeSource) FetchPublicPlaylists(_ context.Context, limit int) ([]contentapi.Playlist, error) {
	f.record("FetchPublicPlaylists")
	if f.PublicErr != nil {
		return nil, f.PublicErr
	}
	return capped(f.Public, limit), nil
}

func (f *FakeSource) FetchLatestEpisodes(_ context.Context, limit int) ([]contentapi.Episode, error) {
	f.record("FetchLatestEpisodes")
	if f.LatestErr != nil {
		return nil, f.LatestErr
	}
	return capped(f.Latest, limit), nil
}

func (f *FakeSource) FetchSeriesEpisodes(_ context.Context, seriesID string, limit int) ([]contentapi.Episode, error) {
	f.record("FetchSeriesEpisodes")
	if f.EpisodesErr != nil {
		return nil, f.EpisodesErr
	}
	return capped(f.SeriesEpisodes[seriesID], limit), nil
}

func (f *FakeSource) FetchPlaylistCover(_ context.Context, seriesID string) (string, error) {
	f.record("FetchPlaylistCover")
	if f.CoverErr != nil {
		return "", f.CoverErr
	}
	return f.Covers[seriesID], nil
}

func (f *FakeSource) FetchContinueListening(_ context.Context, limit int) ([]contentapi.ContinueItem, error) {
	f.record("FetchContinueListening")
	if f.ContinueErr != nil {
		return nil, f.ContinueErr
	}
	return capped(f.Continue, limit), nil
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return append([]T(nil), items...)
}

// Episodes builds minimal episodes with the given ids.
func Episodes(ids ...string) []contentapi.Episode {
	out := make([]contentapi.Episode, 0, len(ids))
	for _, id := range ids {
		out = append(out, contentapi.Episode{
			ID:       id,
			Title:    "Episode " + id,
			AudioURL: "https://cdn.test/audio/" + id + ".mp3",
		})
	}
	return out
}

// FakeArtwork resolves every reference to "art:" + raw and attaches the
// reference bytes as data. Cached serves only refs Artwork has produced.
type FakeArtwork struct {
	mu       sync.Mutex
	seen     []string
	produced map[string]bool
}

func (f *FakeArtwork) Artwork(_ context.Context, raw string) (string, []byte) {
	ref := "art:" + raw
	f.mu.Lock()
	f.seen = append(f.seen, raw)
	if f.produced == nil {
		f.produced = map[string]bool{}
	}
	f.produced[ref] = true
	f.mu.Unlock()
	return ref, []byte(ref)
}

func (f *FakeArtwork) Cached(ref string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.produced[ref] {
		return nil, false
	}
	return []byte(ref), true
}

// Seen returns the raw references requested so far.
func (f *FakeArtwork) Seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}
