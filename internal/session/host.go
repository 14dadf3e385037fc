package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ghplayer/internal/credentials"
	"ghplayer/internal/logging"
)

// Host is the in-process playback session host.
type Host struct {
	logger *slog.Logger
	events *EventHub

	mu          sync.RWMutex
	extras      Extras
	current     *MediaItem
	positionMs  int64
	hasPlaylist bool
}

// NewHost constructs an empty host publishing to events. A nil hub gets a
// private one.
func NewHost(logger *slog.Logger, events *EventHub) *Host {
	if logger == nil {
		logger = logging.NewNop()
	}
	if events == nil {
		events = NewEventHub(0)
	}
	return &Host{
		logger: logging.NewComponentLogger(logger, "session"),
		events: events,
		extras: Extras{},
	}
}

// Events returns the hub session changes are published to.
func (h *Host) Events() *EventHub {
	return h.events
}

// Bootstrap seeds the logged-in extra when a live token is stored. Any other
// outcome leaves the key absent so the stored token is checked per request.
func (h *Host) Bootstrap(ctx context.Context, creds credentials.Loader) {
	loggedIn := false
	if creds != nil {
		cfg, ok, err := creds.Load(ctx)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, h.logger), "stored login check failed", "session_bootstrap_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the credential database permissions"),
				logging.String(logging.FieldImpact, "login is decided per request from stored credentials"),
			)
		}
		loggedIn = err == nil && ok && cfg.HasToken() && !credentials.IsTokenExpired(cfg.AccessToken, time.Now())
	}
	h.mu.Lock()
	if loggedIn {
		h.extras = h.extras.WithLoggedIn(true)
	} else {
		delete(h.extras, ExtraLoggedIn)
	}
	h.mu.Unlock()
	h.logger.Info("session bootstrapped", logging.Bool("logged_in", loggedIn))
}

// Extras returns a copy of the host's extras.
func (h *Host) Extras() Extras {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.extras.Clone()
}

// SetExtra stores a single extras value.
func (h *Host) SetExtra(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.extras = h.extras.Merge(Extras{key: value})
}

// SetLoginState records the logged-in flag and tells browsing clients to
// reload the root.
func (h *Host) SetLoginState(loggedIn bool) {
	h.mu.Lock()
	h.extras = h.extras.WithLoggedIn(loggedIn)
	h.mu.Unlock()

	h.events.Publish(Event{Type: EventRootChanged, LoggedIn: &loggedIn})
	h.logger.Info("login state changed", logging.Bool("logged_in", loggedIn))
}

// SetPlaylistState records whether a multi-item queue is loaded.
func (h *Host) SetPlaylistState(hasPlaylist bool) {
	h.mu.Lock()
	changed := h.hasPlaylist != hasPlaylist
	h.hasPlaylist = hasPlaylist
	h.mu.Unlock()

	if changed {
		h.events.Publish(Event{Type: EventPlaylistState, Playlist: &hasPlaylist})
	}
}

// SetHasPlaylist implements State.
func (h *Host) SetHasPlaylist(hasPlaylist bool) {
	h.SetPlaylistState(hasPlaylist)
}

// HasPlaylist reports the last recorded playlist state.
func (h *Host) HasPlaylist() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.hasPlaylist
}

// SetNowPlaying records the current item and position.
func (h *Host) SetNowPlaying(item MediaItem, positionMs int64) {
	item.ArtworkData = append([]byte(nil), item.ArtworkData...)
	h.mu.Lock()
	h.current = &item
	h.positionMs = max(positionMs, 0)
	h.mu.Unlock()

	h.events.Publish(Event{Type: EventNowPlaying, MediaID: item.ID})
}

// UpdatePosition records a new playback position for the current item.
func (h *Host) UpdatePosition(positionMs int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil {
		h.positionMs = max(positionMs, 0)
	}
}

// ClearNowPlaying forgets the current item.
func (h *Host) ClearNowPlaying() {
	h.mu.Lock()
	had := h.current != nil
	h.current = nil
	h.positionMs = 0
	h.mu.Unlock()

	if had {
		h.events.Publish(Event{Type: EventNowPlayingGone})
	}
}

// CurrentItem implements State.
func (h *Host) CurrentItem() (MediaItem, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return MediaItem{}, false
	}
	item := *h.current
	item.ArtworkData = append([]byte(nil), item.ArtworkData...)
	return item, true
}

// CurrentPositionMs implements State.
func (h *Host) CurrentPositionMs() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.positionMs
}

// Scope returns a State whose extras are the host's overlaid with override.
func (h *Host) Scope(override Extras) *Scope {
	return &Scope{host: h, override: override.Clone()}
}

// Scope is a per-request view of a Host.
type Scope struct {
	host     *Host
	override Extras
}

// Extras implements State.
func (s *Scope) Extras() Extras {
	return s.host.Extras().Merge(s.override)
}

// CurrentItem implements State.
func (s *Scope) CurrentItem() (MediaItem, bool) {
	return s.host.CurrentItem()
}

// CurrentPositionMs implements State.
func (s *Scope) CurrentPositionMs() int64 {
	return s.host.CurrentPositionMs()
}

// SetHasPlaylist implements State.
func (s *Scope) SetHasPlaylist(hasPlaylist bool) {
	s.host.SetPlaylistState(hasPlaylist)
}
