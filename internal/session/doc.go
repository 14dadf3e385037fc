// Package session models the playback host the library bridge talks to.
//
// Host owns the mutable session state: the extras bag (including the explicit
// logged-in flag read by the auth gate fast path), the current playback item
// and position, and whether a multi-item queue is loaded. Library calls take
// a State value instead of reaching for globals, so a per-request Scope can
// overlay caller-supplied extras on the host's own.
//
// State changes that browsing clients care about (login state, playlist
// state, now playing) are published to an in-memory EventHub that supports
// long-poll fetches by sequence number.
package session
