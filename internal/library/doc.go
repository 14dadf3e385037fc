// Package library turns the remote podcast catalog into a browsing tree and
// playback queues.
//
// Navigator answers root, children, and item requests against a fixed small
// hierarchy (now playing, Series, Continue Listening, Episodes). QueueBuilder
// turns a selected leaf into a full queue with a start index and resume
// position. Both consult the auth gate on every call and show only a sign-in
// node while logged out.
//
// Backend and artwork work runs on the shared sequential worker; callers get a
// worker.Future. Backend failures never escape: list requests fall back to an
// empty list and queue requests to the caller's own queue. Both conversions
// live in recover.go and log the cause. ErrNotSupported is the only error a
// browsing client sees.
package library
