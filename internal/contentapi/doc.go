// Package contentapi is a thin client for the podcast backend's PostgREST
// endpoints (playlists, episodes, playlist items, and listening progress).
//
// Every call reads the stored credentials at request time, carries the anon
// API key and the user's bearer token, and is bounded by a per-request
// timeout. A non-2xx response is a *StatusError; calls are never retried.
package contentapi
