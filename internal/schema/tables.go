package schema

import "github.com/mesh-intelligence/showstore/pkg/types"

func pk() Column { return Column{Name: types.ColumnID, Type: Integer, Constraint: "PRIMARY KEY"} }

func col(name string, typ ColumnType, constraint string) Column {
	return Column{Name: name, Type: typ, Constraint: constraint}
}

const (
	zero       = "DEFAULT 0"
	minusOne   = "DEFAULT -1"
	emptyText  = "DEFAULT ''"
	required   = "NOT NULL"
	defaultOne = "DEFAULT 1"
)

var tables = []Table{
	{
		Name:     types.TableShows,
		Conflict: ConflictAbort,
		Columns: []Column{
			pk(),
			col(types.ShowTmdbID, Integer, ""),
			col(types.ShowTvdbID, Integer, ""),
			col(types.ShowTitle, Text, required),
			col(types.ShowTitleNoArticle, Text, ""),
			col(types.ShowOverview, Text, emptyText),
			col(types.ShowNetwork, Text, emptyText),
			col(types.ShowPoster, Text, emptyText),
			col(types.ShowStatus, Integer, minusOne),
			col(types.ShowReleaseWeekday, Integer, minusOne),
			col(types.ShowReleaseTime, Integer, minusOne),
			col(types.ShowReleaseTimezone, Text, emptyText),
			col(types.ShowReleaseCountry, Text, emptyText),
			col(types.ShowCustomReleaseTime, Integer, ""),
			col(types.ShowCustomReleaseDayOffset, Integer, ""),
			col(types.ShowCustomReleaseTimezone, Text, emptyText),
			col(types.ShowRatingGlobal, Real, zero),
			col(types.ShowRatingVotes, Integer, zero),
			col(types.ShowRatingUser, Integer, zero),
			col(types.ShowFavorite, Integer, zero),
			col(types.ShowHidden, Integer, zero),
			col(types.ShowNotify, Integer, defaultOne),
			col(types.ShowNextEpisode, Integer, ""),
			col(types.ShowNextAirMs, Integer, zero),
			col(types.ShowNextText, Text, emptyText),
			col(types.ShowLastWatchedID, Integer, ""),
			col(types.ShowLastWatchedMs, Integer, zero),
			col(types.ShowUnwatchedCount, Integer, minusOne),
			col(types.ShowLanguage, Text, emptyText),
			col(types.ShowLastUpdated, Integer, zero),
		},
	},
	{
		Name:     types.TableSeasons,
		Conflict: ConflictAbort,
		Columns: []Column{
			pk(),
			col(types.SeasonShowID, Integer, ""),
			col(types.SeasonTmdbID, Text, ""),
			col(types.SeasonNumber, Integer, zero),
			col(types.SeasonName, Text, emptyText),
			col(types.SeasonTotalCount, Integer, zero),
			col(types.SeasonUnairedCount, Integer, zero),
			col(types.SeasonNoAirdateCount, Integer, zero),
		},
	},
	{
		Name:     types.TableEpisodes,
		Conflict: ConflictAbort,
		Columns: []Column{
			pk(),
			col(types.EpisodeSeasonID, Integer, ""),
			col(types.EpisodeShowID, Integer, ""),
			col(types.EpisodeTmdbID, Integer, ""),
			col(types.EpisodeTitle, Text, emptyText),
			col(types.EpisodeOverview, Text, emptyText),
			col(types.EpisodeNumber, Integer, zero),
			col(types.EpisodeSeasonNumber, Integer, zero),
			col(types.EpisodeAbsoluteNumber, Integer, zero),
			col(types.EpisodeDvdNumber, Real, zero),
			col(types.EpisodeWatched, Integer, zero),
			col(types.EpisodePlays, Integer, zero),
			col(types.EpisodeCollected, Integer, zero),
			col(types.EpisodeFirstReleaseMs, Integer, minusOne),
			col(types.EpisodeRatingGlobal, Real, zero),
			col(types.EpisodeRatingVotes, Integer, zero),
			col(types.EpisodeRatingUser, Integer, zero),
			col(types.EpisodeLastUpdated, Integer, zero),
		},
	},
	{
		Name:     types.TableLists,
		Conflict: ConflictReplace,
		Key:      []string{types.ListListID},
		Columns: []Column{
			pk(),
			col(types.ListListID, Text, required),
			col(types.ListName, Text, required),
			col(types.ListSortOrder, Integer, zero),
		},
	},
	{
		Name:     types.TableListItems,
		Conflict: ConflictReplace,
		Key:      []string{types.ListItemItemID},
		Columns: []Column{
			pk(),
			col(types.ListItemItemID, Text, required),
			col(types.ListItemRefID, Text, required),
			col(types.ListItemType, Integer, required),
			col(types.ListItemListID, Text, required),
		},
	},
	{
		Name:     types.TableMovies,
		Conflict: ConflictReplace,
		Key:      []string{types.MovieTmdbID},
		Columns: []Column{
			pk(),
			col(types.MovieTmdbID, Integer, required),
			col(types.MovieImdbID, Text, emptyText),
			col(types.MovieTitle, Text, required),
			col(types.MovieTitleNoArticle, Text, ""),
			col(types.MovieOverview, Text, emptyText),
			col(types.MovieReleaseMs, Integer, minusOne),
			col(types.MovieRuntimeMin, Integer, zero),
			col(types.MoviePoster, Text, emptyText),
			col(types.MovieInCollection, Integer, zero),
			col(types.MovieInWatchlist, Integer, zero),
			col(types.MovieWatched, Integer, zero),
			col(types.MoviePlays, Integer, zero),
			col(types.MovieRatingTmdb, Real, zero),
			col(types.MovieRatingTmdbVotes, Integer, zero),
			col(types.MovieRatingTrakt, Real, zero),
			col(types.MovieRatingTraktVotes, Integer, zero),
			col(types.MovieRatingUser, Integer, zero),
			col(types.MovieLastWatchedMs, Integer, zero),
			col(types.MovieLastUpdated, Integer, zero),
		},
	},
	{
		Name:     types.TableActivity,
		Conflict: ConflictReplace,
		Key:      []string{types.ActivityEpisodeRef},
		Columns: []Column{
			pk(),
			col(types.ActivityEpisodeRef, Text, required),
			col(types.ActivityShowRef, Text, required),
			col(types.ActivityType, Integer, defaultOne),
			col(types.ActivityTimestampMs, Integer, required),
		},
	},
	{
		Name:     types.TableJobs,
		Conflict: ConflictReplace,
		Key:      []string{types.JobCreatedMs},
		Columns: []Column{
			pk(),
			col(types.JobCreatedMs, Integer, required),
			col(types.JobType, Integer, required),
			col(types.JobExtras, Blob, ""),
		},
	},
}

var indexes = []Index{
	{Name: "idx_episodes_show_id", Table: types.TableEpisodes, Columns: []string{types.EpisodeShowID}},
	{Name: "idx_episodes_season_id", Table: types.TableEpisodes, Columns: []string{types.EpisodeSeasonID}},
	{Name: "idx_seasons_show_id", Table: types.TableSeasons, Columns: []string{types.SeasonShowID}},

	// External identifiers are unique when present.
	externalID("idx_shows_tmdb_id", types.TableShows, types.ShowTmdbID),
	externalID("idx_shows_tvdb_id", types.TableShows, types.ShowTvdbID),
	externalID("idx_seasons_tmdb_id", types.TableSeasons, types.SeasonTmdbID),
	externalID("idx_episodes_tmdb_id", types.TableEpisodes, types.EpisodeTmdbID),
}

func externalID(name, table, column string) Index {
	return Index{Name: name, Table: table, Columns: []string{column}, Unique: true, Where: column + " IS NOT NULL"}
}
