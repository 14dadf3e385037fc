package library

import (
	"context"

	"github.com/samber/lo"

	"ghplayer/internal/config"
	"ghplayer/internal/logging"
	"ghplayer/internal/mediaid"
	"ghplayer/internal/session"
	"ghplayer/internal/worker"
)

// QueueBuilder turns a client's selection into a playback queue.
type QueueBuilder struct {
	catalog
}

// NewQueueBuilder wires a QueueBuilder.
func NewQueueBuilder(cfg *config.Config, deps Deps) *QueueBuilder {
	return &QueueBuilder{catalog: newCatalog(cfg, deps, "queue")}
}

// Build resolves sel into a queue. Episode selections re-fetch their list and
// start at the selected episode; continue-listening selections also resume at
// the recorded progress. now_playing queues the host's current item at its
// current position. Anything else, and any selection while logged out, comes
// back unchanged. A failed fetch yields the client's items from the first one
// with PositionUnset; a list that comes back empty yields an empty queue.
func (b *QueueBuilder) Build(ctx context.Context, state session.State, sel Selection) *worker.Future[Queue] {
	b.metrics.observeRequest("queue")
	logger := logging.WithContext(ctx, b.logger)
	selectedID := sel.SelectedID()
	if selectedID == "" {
		return worker.Resolved(sel.verbatim())
	}

	id := mediaid.Parse(selectedID)
	if id.Kind == mediaid.NowPlaying && state != nil {
		if current, ok := state.CurrentItem(); ok {
			return worker.Resolved(Queue{
				Items:           []ContentNode{currentNode(current)},
				StartIndex:      0,
				StartPositionMs: state.CurrentPositionMs(),
			})
		}
	}
	if !id.IsEpisode() {
		logger.Debug("selection passed through", logging.MediaID(selectedID), logging.String("kind", id.Kind.String()))
		return worker.Resolved(sel.verbatim())
	}
	if !b.loggedIn(ctx, state) {
		logger.Info("selection passed through while logged out", logging.MediaID(selectedID))
		return worker.Resolved(sel.verbatim())
	}

	operation := "queue_" + id.Kind.String()
	return submit(ctx, b.catalog, operation, func(ctx context.Context) (Queue, error) {
		queue, err := b.build(ctx, id, sel.StartPositionMs)
		if err != nil {
			return b.fallbackQueue(ctx, operation, sel, err), nil
		}
		if state != nil {
			state.SetHasPlaylist(len(queue.Items) > 1)
		}
		logging.WithContext(ctx, b.logger).Info("queue built",
			logging.MediaID(selectedID),
			logging.Int("items", len(queue.Items)),
			logging.Int("start_index", queue.StartIndex),
			logging.Int64("start_position_ms", queue.StartPositionMs),
		)
		return queue, nil
	})
}

func (b *QueueBuilder) build(ctx context.Context, id mediaid.ID, startPositionMs int64) (Queue, error) {
	switch id.Kind {
	case mediaid.EpisodeLatest:
		nodes, ids, err := b.latestNodes(ctx)
		if err != nil {
			return Queue{}, err
		}
		return queueAt(nodes, indexOf(ids, id.EpisodeID), startPositionMs), nil
	case mediaid.EpisodeSeries:
		nodes, ids, err := b.seriesEpisodeNodes(ctx, id.SeriesID)
		if err != nil {
			return Queue{}, err
		}
		return queueAt(nodes, indexOf(ids, id.EpisodeID), startPositionMs), nil
	case mediaid.EpisodeContinue:
		nodes, entries, err := b.continueNodes(ctx)
		if err != nil {
			return Queue{}, err
		}
		entry, idx, found := lo.FindIndexOf(entries, func(e continueEntry) bool {
			return e.episodeID == id.EpisodeID
		})
		if !found {
			return queueAt(nodes, 0, 0), nil
		}
		return queueAt(nodes, idx, max(entry.progressMs, 0)), nil
	default:
		return Queue{}, ErrNotSupported
	}
}

// queueAt builds a queue over nodes. An empty list is a valid, empty queue.
func queueAt(nodes []ContentNode, startIndex int, startPositionMs int64) Queue {
	if len(nodes) == 0 {
		return Queue{Items: []ContentNode{}, StartIndex: 0, StartPositionMs: startPositionMs}
	}
	return Queue{Items: nodes, StartIndex: startIndex, StartPositionMs: startPositionMs}
}

// indexOf returns the first position of id, or 0 when absent.
func indexOf(ids []string, id string) int {
	if idx := lo.IndexOf(ids, id); idx >= 0 {
		return idx
	}
	return 0
}
