// Package daemon coordinates the long-running ghplayer process.
//
// It wires configuration, the credential store, the session host, the auth
// gate, the content API client, the artwork cache and resolver, the sequential
// worker, and the library navigator and queue builder into a single lifecycle
// with flock-based locking to prevent multiple instances. The HTTP API server
// exposes the library to browsing clients and playback engines.
//
// Keep orchestration logic here: library semantics live in internal/library
// while the daemon focuses on startup, shutdown, and transport.
package daemon
