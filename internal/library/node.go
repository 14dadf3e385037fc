package library

import (
	"errors"
	"math"
)

var (
	// ErrNotSupported is returned for identifiers the tree does not serve.
	ErrNotSupported = errors.New("library: not supported")
	// ErrNotFound is returned for item lookups that have nothing to show.
	ErrNotFound = errors.New("library: not found")
)

// PositionUnset marks a queue whose start position the playback engine
// should choose itself.
const PositionUnset int64 = math.MinInt64 + 1

// ContentNode is a folder-like browsable node or a playable leaf.
type ContentNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Browsable   bool   `json:"browsable"`
	Playable    bool   `json:"playable"`
	ArtworkRef  string `json:"artwork_ref,omitempty"`
	ArtworkData []byte `json:"-"`
	AudioURI    string `json:"audio_uri,omitempty"`
}

// HasArtworkData reports whether artwork bytes were attached.
func (n ContentNode) HasArtworkData() bool {
	return len(n.ArtworkData) > 0
}

// Queue is an ordered list of playable leaves with the entry to start at.
type Queue struct {
	Items           []ContentNode `json:"items"`
	StartIndex      int           `json:"start_index"`
	StartPositionMs int64         `json:"start_position_ms"`
}

// PositionSet reports whether StartPositionMs carries a real position.
func (q Queue) PositionSet() bool {
	return q.StartPositionMs != PositionUnset
}

// Selection is a client's play request: the nodes it would queue on its own
// and which of them was picked.
type Selection struct {
	Items           []ContentNode `json:"items"`
	StartIndex      int           `json:"start_index"`
	StartPositionMs int64         `json:"start_position_ms"`
}

// SelectedID returns the id of the picked node. A negative StartIndex picks
// the first node and an index past the end picks the last.
func (s Selection) SelectedID() string {
	if len(s.Items) == 0 {
		return ""
	}
	idx := min(max(s.StartIndex, 0), len(s.Items)-1)
	return s.Items[idx].ID
}

// verbatim returns the caller's own queue unchanged.
func (s Selection) verbatim() Queue {
	return Queue{Items: s.Items, StartIndex: s.StartIndex, StartPositionMs: s.StartPositionMs}
}
