package library

import (
	"context"
	"errors"

	"ghplayer/internal/contentapi"
	"ghplayer/internal/logging"
)

// recoverList converts a failed list fetch into an empty list.
func (c catalog) recoverList(ctx context.Context, operation, parentID string, nodes []ContentNode, err error) []ContentNode {
	if err == nil {
		return nodes
	}
	c.metrics.observeFallback(operation)
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "library fetch failed; returning empty list", "library_fetch_failed",
		logging.String("operation", operation),
		logging.MediaID(parentID),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, fetchHint(err)),
		logging.String(logging.FieldImpact, "browsing client shows an empty list"),
	)
	return []ContentNode{}
}

// fallbackQueue converts a failed queue build into the caller's own items,
// starting at the first one with the position left to the player.
func (c catalog) fallbackQueue(ctx context.Context, operation string, sel Selection, err error) Queue {
	c.metrics.observeFallback(operation)
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "queue build failed; using client queue", "queue_build_failed",
		logging.String("operation", operation),
		logging.MediaID(sel.SelectedID()),
		logging.Int("fallback_items", len(sel.Items)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, fetchHint(err)),
		logging.String(logging.FieldImpact, "playback starts from the client queue without a resume position"),
	)
	return Queue{Items: sel.Items, StartIndex: 0, StartPositionMs: PositionUnset}
}

func fetchHint(err error) string {
	var status *contentapi.StatusError
	switch {
	case errors.Is(err, contentapi.ErrMissingAuth):
		return "run ghplayer login to store backend credentials"
	case errors.As(err, &status):
		return "check backend availability and that the access token is still valid"
	case errors.Is(err, context.DeadlineExceeded):
		return "backend did not answer in time; check connectivity"
	default:
		return "check logs for details"
	}
}
