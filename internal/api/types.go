package api

import (
	"time"

	"ghplayer/internal/artwork"
	"ghplayer/internal/auth"
	"ghplayer/internal/library"
	"ghplayer/internal/session"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Node describes a content node in a transport-friendly format.
type Node struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	Browsable  bool   `json:"browsable"`
	Playable   bool   `json:"playable"`
	ArtworkRef string `json:"artworkRef,omitempty"`
	HasArtwork bool   `json:"hasArtwork"`
	AudioURI   string `json:"audioUri,omitempty"`
}

// NodeResponse wraps a single node (root or item lookup).
type NodeResponse struct {
	Node Node `json:"node"`
}

// ChildrenResponse lists the children of a parent node.
type ChildrenResponse struct {
	Parent string `json:"parent"`
	Items  []Node `json:"items"`
}

// QueueRequest is a play request: the nodes the client would queue on its own
// and which of them was picked.
type QueueRequest struct {
	Items           []Node `json:"items"`
	StartIndex      int    `json:"startIndex"`
	StartPositionMs *int64 `json:"startPositionMs,omitempty"`
}

// QueueResponse is the queue handed to the playback engine.
type QueueResponse struct {
	Items           []Node `json:"items"`
	StartIndex      int    `json:"startIndex"`
	StartPositionMs *int64 `json:"startPositionMs,omitempty"`
}

// MediaItem mirrors the session host's current item.
type MediaItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	ArtworkRef string `json:"artworkRef,omitempty"`
	AudioURI   string `json:"audioUri,omitempty"`
}

// LoginStateRequest sets the host's logged-in flag.
type LoginStateRequest struct {
	LoggedIn bool `json:"loggedIn"`
}

// NowPlayingRequest sets or clears the current item. A nil Item clears it.
type NowPlayingRequest struct {
	Item       *MediaItem `json:"item,omitempty"`
	PositionMs int64      `json:"positionMs"`
}

// SessionStatus summarizes the session host.
type SessionStatus struct {
	LoggedIn    bool       `json:"loggedIn"`
	HasPlaylist bool       `json:"hasPlaylist"`
	NowPlaying  *MediaItem `json:"nowPlaying,omitempty"`
	PositionMs  int64      `json:"positionMs"`
}

// AuthStatus mirrors a login decision and its provenance.
type AuthStatus struct {
	LoggedIn  bool   `json:"loggedIn"`
	Source    string `json:"source"`
	Stored    bool   `json:"stored"`
	HasToken  bool   `json:"hasToken"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	Expired   bool   `json:"expired"`
}

// WorkerStatus reports the sequential worker's state.
type WorkerStatus struct {
	Running bool   `json:"running"`
	Depth   int    `json:"depth"`
	Active  string `json:"active,omitempty"`
}

// ArtworkCacheStatus reports artwork cache occupancy and counters.
type ArtworkCacheStatus struct {
	Entries   int    `json:"entries"`
	Bytes     int64  `json:"bytes"`
	Budget    int64  `json:"budget"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// StatusResponse aggregates runtime information.
type StatusResponse struct {
	Running         bool               `json:"running"`
	PID             int                `json:"pid"`
	StartedAt       string             `json:"startedAt,omitempty"`
	LockFilePath    string             `json:"lockFilePath"`
	CredentialsPath string             `json:"credentialsPath"`
	BackendURL      string             `json:"backendUrl,omitempty"`
	Auth            AuthStatus         `json:"auth"`
	Worker          WorkerStatus       `json:"worker"`
	Artwork         ArtworkCacheStatus `json:"artwork"`
	Session         SessionStatus      `json:"session"`
}

// Event is a session change in transport form.
type Event struct {
	Sequence    uint64 `json:"seq"`
	Timestamp   string `json:"ts"`
	Type        string `json:"type"`
	LoggedIn    *bool  `json:"loggedIn,omitempty"`
	HasPlaylist *bool  `json:"hasPlaylist,omitempty"`
	MediaID     string `json:"mediaId,omitempty"`
}

// EventsResponse carries events after a cursor and the next cursor to use.
type EventsResponse struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
}

// FromContentNode converts a library node.
func FromContentNode(n library.ContentNode) Node {
	return Node{
		ID:         n.ID,
		Title:      n.Title,
		Subtitle:   n.Subtitle,
		Artist:     n.Artist,
		Album:      n.Album,
		Browsable:  n.Browsable,
		Playable:   n.Playable,
		ArtworkRef: n.ArtworkRef,
		HasArtwork: n.HasArtworkData(),
		AudioURI:   n.AudioURI,
	}
}

// FromContentNodes converts a list, never returning nil.
func FromContentNodes(nodes []library.ContentNode) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, FromContentNode(n))
	}
	return out
}

// ToContentNode converts a transport node back. Artwork bytes are not carried.
func ToContentNode(n Node) library.ContentNode {
	return library.ContentNode{
		ID:         n.ID,
		Title:      n.Title,
		Subtitle:   n.Subtitle,
		Artist:     n.Artist,
		Album:      n.Album,
		Browsable:  n.Browsable,
		Playable:   n.Playable,
		ArtworkRef: n.ArtworkRef,
		AudioURI:   n.AudioURI,
	}
}

// ToSelection converts a play request. An absent start position becomes
// library.PositionUnset.
func (r QueueRequest) ToSelection() library.Selection {
	items := make([]library.ContentNode, 0, len(r.Items))
	for _, n := range r.Items {
		items = append(items, ToContentNode(n))
	}
	position := library.PositionUnset
	if r.StartPositionMs != nil {
		position = *r.StartPositionMs
	}
	return library.Selection{Items: items, StartIndex: r.StartIndex, StartPositionMs: position}
}

// FromQueue converts a built queue.
func FromQueue(q library.Queue) QueueResponse {
	resp := QueueResponse{Items: FromContentNodes(q.Items), StartIndex: q.StartIndex}
	if q.PositionSet() {
		position := q.StartPositionMs
		resp.StartPositionMs = &position
	}
	return resp
}

// FromMediaItem converts the host's current item.
func FromMediaItem(item session.MediaItem) MediaItem {
	return MediaItem{
		ID:         item.ID,
		Title:      item.Title,
		Artist:     item.Artist,
		Album:      item.Album,
		ArtworkRef: item.ArtworkRef,
		AudioURI:   item.AudioURI,
	}
}

// ToMediaItem converts a transport item for the session host.
func (m MediaItem) ToMediaItem() session.MediaItem {
	return session.MediaItem{
		ID:         m.ID,
		Title:      m.Title,
		Artist:     m.Artist,
		Album:      m.Album,
		ArtworkRef: m.ArtworkRef,
		AudioURI:   m.AudioURI,
	}
}

// FromSnapshot converts an auth decision.
func FromSnapshot(s auth.Snapshot) AuthStatus {
	return AuthStatus{
		LoggedIn:  s.LoggedIn,
		Source:    string(s.Source),
		Stored:    s.Stored,
		HasToken:  s.HasToken,
		ExpiresAt: formatTime(s.ExpiresAt),
		Expired:   s.Expired,
	}
}

// FromCacheStats converts artwork cache counters.
func FromCacheStats(s artwork.CacheStats) ArtworkCacheStatus {
	return ArtworkCacheStatus(s)
}

// FromEvents converts session events, never returning nil.
func FromEvents(events []session.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, evt := range events {
		out = append(out, Event{
			Sequence:    evt.Sequence,
			Timestamp:   formatTime(evt.Timestamp),
			Type:        string(evt.Type),
			LoggedIn:    evt.LoggedIn,
			HasPlaylist: evt.Playlist,
			MediaID:     evt.MediaID,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
