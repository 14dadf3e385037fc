package library

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"ghplayer/internal/config"
	"ghplayer/internal/contentapi"
	"ghplayer/internal/logging"
	"ghplayer/internal/mediaid"
	"ghplayer/internal/session"
	"ghplayer/internal/worker"
)

// Source is the content API surface the library reads from.
type Source interface {
	FetchSeries(ctx context.Context, limit int) ([]contentapi.Playlist, error)
	FetchPublicPlaylists(ctx context.Context, limit int) ([]contentapi.Playlist, error)
	FetchLatestEpisodes(ctx context.Context, limit int) ([]contentapi.Episode, error)
	FetchSeriesEpisodes(ctx context.Context, seriesID string, limit int) ([]contentapi.Episode, error)
	FetchPlaylistCover(ctx context.Context, seriesID string) (string, error)
	FetchContinueListening(ctx context.Context, limit int) ([]contentapi.ContinueItem, error)
}

// Artwork resolves an artwork reference and fetches its bytes. data is nil
// when the bytes are unavailable.
type Artwork interface {
	Artwork(ctx context.Context, raw string) (ref string, data []byte)
}

// Gate decides whether the session may see real content.
type Gate interface {
	IsLoggedIn(ctx context.Context, extras session.Extras) bool
}

// Deps are the collaborators shared by Navigator and QueueBuilder.
type Deps struct {
	Gate    Gate
	Source  Source
	Artwork Artwork
	Worker  *worker.Worker
	Metrics *Metrics
	Logger  *slog.Logger
}

// catalog builds content nodes from backend records.
type catalog struct {
	texts    config.Library
	pageSize int
	source   Source
	artwork  Artwork
	gate     Gate
	worker   *worker.Worker
	metrics  *Metrics
	logger   *slog.Logger
}

func newCatalog(cfg *config.Config, deps Deps, component string) catalog {
	texts := config.Default().Library
	pageSize := config.Default().Backend.PageSize
	if cfg != nil {
		texts = cfg.Library
		if cfg.Backend.PageSize > 0 {
			pageSize = cfg.Backend.PageSize
		}
	}
	return catalog{
		texts:    texts,
		pageSize: pageSize,
		source:   deps.Source,
		artwork:  deps.Artwork,
		gate:     deps.Gate,
		worker:   deps.Worker,
		metrics:  deps.Metrics,
		logger:   logging.NewComponentLogger(deps.Logger, component),
	}
}

func (c catalog) loggedIn(ctx context.Context, state session.State) bool {
	if c.gate == nil || state == nil {
		return false
	}
	return c.gate.IsLoggedIn(ctx, state.Extras())
}

func (c catalog) rootNode() ContentNode {
	return ContentNode{ID: mediaid.RootID, Title: c.texts.RootTitle, Browsable: true}
}

func (c catalog) loginNode() ContentNode {
	return browsable(mediaid.LoginID, c.texts.LoginTitle, c.texts.LoginSubtitle)
}

func sectionNodes() []ContentNode {
	return []ContentNode{
		browsable(mediaid.SeriesListID, "Series", "Browse series"),
		browsable(mediaid.ContinueListID, "Continue Listening", "Pick up where you left off"),
		browsable(mediaid.EpisodesListID, "Episodes", "Latest episodes"),
	}
}

func browsable(id, title, subtitle string) ContentNode {
	return ContentNode{ID: id, Title: title, Subtitle: subtitle, Browsable: true}
}

// nowPlayingNode re-wraps the host's current item under the reserved id.
func nowPlayingNode(state session.State) (ContentNode, bool) {
	if state == nil {
		return ContentNode{}, false
	}
	current, ok := state.CurrentItem()
	if !ok {
		return ContentNode{}, false
	}
	return ContentNode{
		ID:          mediaid.NowPlayingID,
		Title:       "Now Playing",
		Subtitle:    lo.CoalesceOrEmpty(current.Title, "Open current playback"),
		Artist:      current.Artist,
		Album:       current.Album,
		Playable:    true,
		ArtworkRef:  current.ArtworkRef,
		ArtworkData: current.ArtworkData,
		AudioURI:    current.AudioURI,
	}, true
}

// currentNode is the host's current item as a queue entry under its own id.
func currentNode(item session.MediaItem) ContentNode {
	return ContentNode{
		ID:          item.ID,
		Title:       item.Title,
		Artist:      item.Artist,
		Album:       item.Album,
		Playable:    true,
		ArtworkRef:  item.ArtworkRef,
		ArtworkData: item.ArtworkData,
		AudioURI:    item.AudioURI,
	}
}

func (c catalog) playlistNode(ctx context.Context, playlist contentapi.Playlist) ContentNode {
	node := browsable(mediaid.Series(playlist.ID), playlist.Title, playlist.Description)
	node.ArtworkRef, node.ArtworkData = c.resolveArtwork(ctx, playlist.CoverImagePath)
	return node
}

// episodeNode builds a playable leaf. Artwork prefers the episode image, then
// seriesCover, then the podcast image.
func (c catalog) episodeNode(ctx context.Context, episode contentapi.Episode, id, seriesCover string) ContentNode {
	node := ContentNode{
		ID:       id,
		Title:    episode.Title,
		Subtitle: lo.CoalesceOrEmpty(episode.PodcastTitle, c.texts.DefaultPublisher),
		Playable: true,
		AudioURI: episode.AudioURL,
	}
	raw := lo.CoalesceOrEmpty(episode.ImageURL, seriesCover, episode.PodcastImageURL)
	node.ArtworkRef, node.ArtworkData = c.resolveArtwork(ctx, raw)
	return node
}

func (c catalog) resolveArtwork(ctx context.Context, raw string) (string, []byte) {
	if c.artwork == nil || raw == "" {
		return "", nil
	}
	return c.artwork.Artwork(ctx, raw)
}

func (c catalog) seriesNodes(ctx context.Context) ([]ContentNode, error) {
	playlists, err := c.source.FetchSeries(ctx, c.pageSize)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		c.logger.Debug("no series published; trying public playlists")
		playlists, err = c.source.FetchPublicPlaylists(ctx, c.pageSize)
		if err != nil {
			return nil, err
		}
	}
	return lo.Map(playlists, func(p contentapi.Playlist, _ int) ContentNode {
		return c.playlistNode(ctx, p)
	}), nil
}

func (c catalog) latestNodes(ctx context.Context) ([]ContentNode, []string, error) {
	episodes, err := c.source.FetchLatestEpisodes(ctx, c.pageSize)
	if err != nil {
		return nil, nil, err
	}
	nodes := lo.Map(episodes, func(ep contentapi.Episode, _ int) ContentNode {
		return c.episodeNode(ctx, ep, mediaid.Latest(ep.ID), "")
	})
	return nodes, episodeIDs(episodes), nil
}

func (c catalog) seriesEpisodeNodes(ctx context.Context, seriesID string) ([]ContentNode, []string, error) {
	cover, err := c.source.FetchPlaylistCover(ctx, seriesID)
	if err != nil {
		return nil, nil, err
	}
	episodes, err := c.source.FetchSeriesEpisodes(ctx, seriesID, c.pageSize)
	if err != nil {
		return nil, nil, err
	}
	nodes := lo.Map(episodes, func(ep contentapi.Episode, _ int) ContentNode {
		return c.episodeNode(ctx, ep, mediaid.SeriesEpisode(seriesID, ep.ID), cover)
	})
	return nodes, episodeIDs(episodes), nil
}

// continueEntry is a continue-listening leaf with its recorded progress.
type continueEntry struct {
	episodeID  string
	progressMs int64
}

func (c catalog) continueNodes(ctx context.Context) ([]ContentNode, []continueEntry, error) {
	items, err := c.source.FetchContinueListening(ctx, c.pageSize)
	if err != nil {
		return nil, nil, err
	}
	present := lo.Filter(items, func(item contentapi.ContinueItem, _ int) bool {
		return item.Episode != nil
	})
	nodes := lo.Map(present, func(item contentapi.ContinueItem, _ int) ContentNode {
		return c.episodeNode(ctx, *item.Episode, mediaid.Continue(item.Episode.ID), "")
	})
	entries := lo.Map(present, func(item contentapi.ContinueItem, _ int) continueEntry {
		return continueEntry{episodeID: item.Episode.ID, progressMs: item.ProgressMs}
	})
	return nodes, entries, nil
}

func episodeIDs(episodes []contentapi.Episode) []string {
	return lo.Map(episodes, func(ep contentapi.Episode, _ int) string { return ep.ID })
}
