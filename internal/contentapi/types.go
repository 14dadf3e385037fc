package contentapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Playlist is a series or public playlist row.
type Playlist struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	CoverImagePath string `json:"cover_image_path"`
}

// Episode is an episode row with its embedded podcast.
type Episode struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	ImageURL        string    `json:"image_url"`
	AudioURL        string    `json:"audio_url"`
	PodcastTitle    string    `json:"podcast_title"`
	PodcastImageURL string    `json:"podcast_image_url"`
	PublishedAt     time.Time `json:"published_at,omitzero"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
}

// ContinueItem pairs an in-progress episode with the last recorded position.
// Episode is nil when the progress row references a missing episode.
type ContinueItem struct {
	Episode    *Episode  `json:"episode"`
	ProgressMs int64     `json:"progress_ms"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

type playlistRow struct {
	ID          text `json:"id"`
	Title       text `json:"title"`
	Description text `json:"description"`
	ImageURL    text `json:"image_url"`
}

type podcastRow struct {
	Title    text `json:"title"`
	ImageURL text `json:"image_url"`
}

type episodeRow struct {
	ID              text        `json:"id"`
	Title           text        `json:"title"`
	Summary         text        `json:"summary"`
	ImageURL        text        `json:"image_url"`
	AudioURL        text        `json:"audio_url"`
	PublishedAt     text        `json:"published_at"`
	DurationSeconds json.Number `json:"duration_seconds"`
	Podcasts        *podcastRow `json:"podcasts"`
}

type playlistItemRow struct {
	ID        text        `json:"id"`
	SortOrder json.Number `json:"sort_order"`
	Episodes  *episodeRow `json:"episodes"`
}

type progressRow struct {
	ProgressMs json.Number `json:"progress_ms"`
	UpdatedAt  text        `json:"updated_at"`
	Episodes   *episodeRow `json:"episodes"`
}

func (r playlistRow) toPlaylist() Playlist {
	return Playlist{
		ID:             string(r.ID),
		Title:          r.Title.normalized(),
		Description:    r.Description.normalized(),
		CoverImagePath: strings.TrimSpace(string(r.ImageURL)),
	}
}

func (r episodeRow) toEpisode() Episode {
	ep := Episode{
		ID:       string(r.ID),
		Title:    r.Title.normalized(),
		Summary:  r.Summary.normalized(),
		ImageURL: strings.TrimSpace(string(r.ImageURL)),
		AudioURL: strings.TrimSpace(string(r.AudioURL)),
	}
	if r.Podcasts != nil {
		ep.PodcastTitle = r.Podcasts.Title.normalized()
		ep.PodcastImageURL = strings.TrimSpace(string(r.Podcasts.ImageURL))
	}
	ep.PublishedAt = parseTimestamp(string(r.PublishedAt))
	if n, err := r.DurationSeconds.Int64(); err == nil {
		ep.DurationSeconds = int(n)
	}
	return ep
}

func (r progressRow) toContinueItem() ContinueItem {
	item := ContinueItem{UpdatedAt: parseTimestamp(string(r.UpdatedAt))}
	if n, err := r.ProgressMs.Int64(); err == nil {
		item.ProgressMs = n
	} else if f, err := r.ProgressMs.Float64(); err == nil {
		item.ProgressMs = int64(f)
	}
	if r.Episodes != nil {
		ep := r.Episodes.toEpisode()
		item.Episode = &ep
	}
	return item
}

// text decodes a JSON string, number, or null into a string.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	*t = text(data)
	return nil
}

func (t text) normalized() string {
	return norm.NFC.String(strings.TrimSpace(string(t)))
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
