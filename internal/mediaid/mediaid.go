// Package mediaid parses and formats the browsing-tree identifiers exchanged
// with browsing clients.
//
// The string grammar is a wire contract and is stable across restarts:
//
//	root
//	root/series
//	root/continue
//	root/episodes
//	root/login
//	now_playing
//	series/{playlistId}
//	episode/latest/{episodeId}
//	episode/series/{seriesId}/{episodeId}
//	episode/continue/{episodeId}
//
// Parse is the only place prefix matching happens; everything downstream
// switches on Kind.
package mediaid

import "strings"

// Kind enumerates the recognised identifier shapes.
type Kind int

const (
	Unknown Kind = iota
	Root
	SeriesList
	ContinueList
	EpisodesList
	Login
	NowPlaying
	SeriesChildren
	EpisodeLatest
	EpisodeSeries
	EpisodeContinue
)

const (
	RootID         = "root"
	SeriesListID   = "root/series"
	ContinueListID = "root/continue"
	EpisodesListID = "root/episodes"
	LoginID        = "root/login"
	NowPlayingID   = "now_playing"

	seriesPrefix          = "series/"
	episodeLatestPrefix   = "episode/latest/"
	episodeSeriesPrefix   = "episode/series/"
	episodeContinuePrefix = "episode/continue/"
)

var kindNames = map[Kind]string{
	Unknown:         "unknown",
	Root:            "root",
	SeriesList:      "series_list",
	ContinueList:    "continue_list",
	EpisodesList:    "episodes_list",
	Login:           "login",
	NowPlaying:      "now_playing",
	SeriesChildren:  "series_children",
	EpisodeLatest:   "episode_latest",
	EpisodeSeries:   "episode_series",
	EpisodeContinue: "episode_continue",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ID is a parsed identifier. SeriesID is set for SeriesChildren and
// EpisodeSeries; EpisodeID for the three episode kinds. Raw keeps the input so
// Unknown identifiers can be echoed back unchanged.
type ID struct {
	Kind      Kind
	SeriesID  string
	EpisodeID string
	Raw       string
}

// Parse decodes a wire identifier. Prefixes with an empty remainder, and
// episode/series ids lacking the second segment, are Unknown.
func Parse(raw string) ID {
	id := ID{Raw: raw}
	switch raw {
	case RootID:
		id.Kind = Root
		return id
	case SeriesListID:
		id.Kind = SeriesList
		return id
	case ContinueListID:
		id.Kind = ContinueList
		return id
	case EpisodesListID:
		id.Kind = EpisodesList
		return id
	case LoginID:
		id.Kind = Login
		return id
	case NowPlayingID:
		id.Kind = NowPlaying
		return id
	}

	if rest, ok := strings.CutPrefix(raw, episodeLatestPrefix); ok && rest != "" {
		id.Kind = EpisodeLatest
		id.EpisodeID = rest
		return id
	}
	if rest, ok := strings.CutPrefix(raw, episodeContinuePrefix); ok && rest != "" {
		id.Kind = EpisodeContinue
		id.EpisodeID = rest
		return id
	}
	if rest, ok := strings.CutPrefix(raw, episodeSeriesPrefix); ok {
		seriesID, episodeID, found := strings.Cut(rest, "/")
		if found && seriesID != "" && episodeID != "" {
			id.Kind = EpisodeSeries
			id.SeriesID = seriesID
			id.EpisodeID = episodeID
		}
		return id
	}
	if rest, ok := strings.CutPrefix(raw, seriesPrefix); ok && rest != "" {
		id.Kind = SeriesChildren
		id.SeriesID = rest
		return id
	}
	return id
}

// String formats the identifier back into its wire form.
func (id ID) String() string {
	switch id.Kind {
	case Root:
		return RootID
	case SeriesList:
		return SeriesListID
	case ContinueList:
		return ContinueListID
	case EpisodesList:
		return EpisodesListID
	case Login:
		return LoginID
	case NowPlaying:
		return NowPlayingID
	case SeriesChildren:
		return Series(id.SeriesID)
	case EpisodeLatest:
		return Latest(id.EpisodeID)
	case EpisodeSeries:
		return SeriesEpisode(id.SeriesID, id.EpisodeID)
	case EpisodeContinue:
		return Continue(id.EpisodeID)
	default:
		return id.Raw
	}
}

// IsEpisode reports whether the identifier names a playable episode leaf.
func (id ID) IsEpisode() bool {
	switch id.Kind {
	case EpisodeLatest, EpisodeSeries, EpisodeContinue:
		return true
	default:
		return false
	}
}

// Series returns the browsable id for a playlist.
func Series(playlistID string) string { return seriesPrefix + playlistID }

// Latest returns the leaf id for an episode listed under "Episodes".
func Latest(episodeID string) string { return episodeLatestPrefix + episodeID }

// SeriesEpisode returns the leaf id for an episode listed under a series.
func SeriesEpisode(seriesID, episodeID string) string {
	return episodeSeriesPrefix + seriesID + "/" + episodeID
}

// Continue returns the leaf id for an episode listed under "Continue Listening".
func Continue(episodeID string) string { return episodeContinuePrefix + episodeID }
