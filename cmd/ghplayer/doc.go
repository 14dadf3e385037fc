// Package main hosts the ghplayer CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the daemon in the foreground, manages the
// stored backend credentials, and translates browsing and playback requests
// into HTTP calls against a running daemon. It centralizes configuration
// resolution and API client setup so subcommands can focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
