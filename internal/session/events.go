package session

import (
	"context"
	"sync"
	"time"
)

// EventType names a published session change.
type EventType string

const (
	EventRootChanged    EventType = "root_changed"
	EventPlaylistState  EventType = "playlist_state"
	EventNowPlaying     EventType = "now_playing"
	EventNowPlayingGone EventType = "now_playing_cleared"
)

// Event is a session change published to browsing clients.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	LoggedIn  *bool     `json:"logged_in,omitempty"`
	Playlist  *bool     `json:"has_playlist,omitempty"`
	MediaID   string    `json:"media_id,omitempty"`
}

// EventHub stores recent events and wakes waiters when new ones arrive.
type EventHub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Event
	nextSeq  uint64
}

// NewEventHub constructs a bounded in-memory event buffer.
func NewEventHub(capacity int) *EventHub {
	if capacity <= 0 {
		capacity = 128
	}
	h := &EventHub{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish appends evt and returns its sequence number.
func (h *EventHub) Publish(evt Event) uint64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	h.cond.Broadcast()
	return evt.Sequence
}

// Fetch returns events with a sequence greater than since. When wait is true,
// Fetch blocks until at least one event is available or ctx ends.
func (h *EventHub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Event, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	stopWaker := make(chan struct{})
	defer close(stopWaker)
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.mu.Lock()
				h.cond.Broadcast()
				h.mu.Unlock()
			case <-stopWaker:
			}
		}()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		events, next := h.snapshotLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, nil
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		h.cond.Wait()
	}
}

// Last returns the most recent sequence number.
func (h *EventHub) Last() uint64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextSeq
}

func (h *EventHub) snapshotLocked(since uint64, limit int) ([]Event, uint64) {
	start := -1
	for i, evt := range h.buffer {
		if evt.Sequence > since {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, h.nextSeq
	}
	end := min(start+limit, len(h.buffer))
	out := make([]Event, end-start)
	copy(out, h.buffer[start:end])
	return out, out[len(out)-1].Sequence
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
