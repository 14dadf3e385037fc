// Package api defines wire-format types and converters for the HTTP API
// layer, plus the client the CLI uses to talk to a running daemon.
//
// # Key Types
//
// Node: transport representation of a library content node. Artwork bytes are
// never inlined; HasArtwork tells the consumer to fetch them from
// /api/artwork using ArtworkRef.
//
// QueueRequest/QueueResponse: a play request and the queue the library built
// for it. A nil StartPositionMs means the playback engine picks the position.
//
// StatusResponse: daemon runtime state, auth decision, worker and artwork cache
// occupancy, and the current session.
//
// EventsResponse: session events for long-poll consumers.
//
// # Converters
//
// FromContentNode/ToContentNode and FromQueue/ToSelection translate between
// library types and DTOs. FromEvent translates session events.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Timestamps
// use RFC3339 with milliseconds.
package api
