package library

import (
	"context"

	"ghplayer/internal/config"
	"ghplayer/internal/logging"
	"ghplayer/internal/mediaid"
	"ghplayer/internal/session"
	"ghplayer/internal/worker"
)

// Navigator serves the browsing tree.
type Navigator struct {
	catalog
}

// NewNavigator wires a Navigator.
func NewNavigator(cfg *config.Config, deps Deps) *Navigator {
	return &Navigator{catalog: newCatalog(cfg, deps, "library")}
}

// Root returns the tree root, or the sign-in node while logged out.
func (n *Navigator) Root(ctx context.Context, state session.State) ContentNode {
	n.metrics.observeRequest("root")
	if !n.loggedIn(ctx, state) {
		return n.loginNode()
	}
	return n.rootNode()
}

// Children lists the children of parentID. page and pageSize are accepted for
// compatibility; a single page capped at the configured page size is
// returned. While logged out the only child of anything is the sign-in node.
// The future fails with ErrNotSupported for ids that have no children;
// backend failures resolve to an empty list.
func (n *Navigator) Children(ctx context.Context, state session.State, parentID string, page, pageSize int) *worker.Future[[]ContentNode] {
	n.metrics.observeRequest("children")
	logger := logging.WithContext(ctx, n.logger)
	if !n.loggedIn(ctx, state) {
		logger.Debug("children requested while logged out", logging.MediaID(parentID))
		return worker.Resolved([]ContentNode{n.loginNode()})
	}
	if page != 0 || (pageSize > 0 && pageSize != n.pageSize) {
		logger.Debug("paging parameters ignored",
			logging.MediaID(parentID),
			logging.Int("page", page),
			logging.Int("page_size", pageSize),
			logging.Int("served_page_size", n.pageSize),
		)
	}

	id := mediaid.Parse(parentID)
	switch id.Kind {
	case mediaid.Root:
		nodes := make([]ContentNode, 0, 4)
		if current, ok := nowPlayingNode(state); ok {
			nodes = append(nodes, current)
		}
		return worker.Resolved(append(nodes, sectionNodes()...))
	case mediaid.Login:
		return worker.Resolved([]ContentNode{})
	case mediaid.SeriesList:
		return submit(ctx, n.catalog, "series_list", func(ctx context.Context) ([]ContentNode, error) {
			nodes, err := n.seriesNodes(ctx)
			return n.recoverList(ctx, "series_list", parentID, nodes, err), nil
		})
	case mediaid.SeriesChildren:
		return submit(ctx, n.catalog, "series_children", func(ctx context.Context) ([]ContentNode, error) {
			nodes, _, err := n.seriesEpisodeNodes(ctx, id.SeriesID)
			return n.recoverList(ctx, "series_children", parentID, nodes, err), nil
		})
	case mediaid.EpisodesList:
		return submit(ctx, n.catalog, "episodes_list", func(ctx context.Context) ([]ContentNode, error) {
			nodes, _, err := n.latestNodes(ctx)
			return n.recoverList(ctx, "episodes_list", parentID, nodes, err), nil
		})
	case mediaid.ContinueList:
		return submit(ctx, n.catalog, "continue_list", func(ctx context.Context) ([]ContentNode, error) {
			nodes, _, err := n.continueNodes(ctx)
			return n.recoverList(ctx, "continue_list", parentID, nodes, err), nil
		})
	default:
		logger.Debug("children requested for unsupported id", logging.MediaID(parentID), logging.String("kind", id.Kind.String()))
		return worker.Failed[[]ContentNode](ErrNotSupported)
	}
}

// Item returns a single node. While logged out only the sign-in node is
// served and every other id is ErrNotFound. While logged in the root and
// section nodes are served, as is now playing while something plays; every
// other id is ErrNotSupported.
func (n *Navigator) Item(ctx context.Context, state session.State, itemID string) (ContentNode, error) {
	n.metrics.observeRequest("item")
	id := mediaid.Parse(itemID)
	if !n.loggedIn(ctx, state) {
		if id.Kind == mediaid.Login {
			return n.loginNode(), nil
		}
		return ContentNode{}, ErrNotFound
	}

	switch id.Kind {
	case mediaid.NowPlaying:
		if current, ok := nowPlayingNode(state); ok {
			return current, nil
		}
		return ContentNode{}, ErrNotSupported
	case mediaid.Root:
		return n.rootNode(), nil
	case mediaid.SeriesList, mediaid.ContinueList, mediaid.EpisodesList:
		for _, section := range sectionNodes() {
			if section.ID == id.Raw {
				return section, nil
			}
		}
		return ContentNode{}, ErrNotFound
	default:
		return ContentNode{}, ErrNotSupported
	}
}

// Search is not offered by the tree.
func (n *Navigator) Search(context.Context, session.State, string) error {
	return ErrNotSupported
}

// SearchResult always returns an empty list.
func (n *Navigator) SearchResult(context.Context, session.State, string, int, int) []ContentNode {
	return []ContentNode{}
}

// submit runs fn on the worker, carrying the caller's request id into the job
// context. Without a worker fn runs inline.
func submit[T any](ctx context.Context, c catalog, name string, fn func(context.Context) (T, error)) *worker.Future[T] {
	requestID, _ := logging.RequestIDFromContext(ctx)
	run := func(jobCtx context.Context) (T, error) {
		if requestID != "" {
			jobCtx = logging.WithRequestID(jobCtx, requestID)
		}
		return fn(jobCtx)
	}
	if c.worker == nil {
		val, err := run(ctx)
		if err != nil {
			return worker.Failed[T](err)
		}
		return worker.Resolved(val)
	}
	return worker.Submit(c.worker, name, run)
}
