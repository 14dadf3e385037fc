package session

// MediaItem is the host's view of a playable item.
type MediaItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	ArtworkRef  string `json:"artwork_ref,omitempty"`
	ArtworkData []byte `json:"artwork_data,omitempty"`
	AudioURI    string `json:"audio_uri,omitempty"`
}

// State is what library calls read from and report back to the host.
type State interface {
	Extras() Extras
	CurrentItem() (MediaItem, bool)
	CurrentPositionMs() int64
	SetHasPlaylist(hasPlaylist bool)
}
