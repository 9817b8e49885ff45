package types

// Table names.
const (
	TableShows     = "shows"
	TableSeasons   = "seasons"
	TableEpisodes  = "episodes"
	TableLists     = "lists"
	TableListItems = "listitems"
	TableMovies    = "movies"
	TableActivity  = "activity"
	TableJobs      = "jobs"

	// TableEpisodeSearch is the full-text index over episode titles and
	// overviews. It is never addressed by a path.
	TableEpisodeSearch = "episode_search"
)

// StandardTableNames lists the data tables in creation order. Parents come
// before children, which is also the order Import loads them in.
var StandardTableNames = []string{
	TableShows,
	TableSeasons,
	TableEpisodes,
	TableLists,
	TableListItems,
	TableMovies,
	TableActivity,
	TableJobs,
}

// ColumnID is the row id column every table carries.
const ColumnID = "_id"

// ColumnCount is the alias of the synthetic count(*) projection column.
const ColumnCount = "_count"

// Show columns.
const (
	ShowID                     = ColumnID
	ShowTmdbID                 = "tmdb_id"
	ShowTvdbID                 = "tvdb_id"
	ShowTitle                  = "title"
	ShowTitleNoArticle         = "title_noarticle"
	ShowOverview               = "overview"
	ShowNetwork                = "network"
	ShowPoster                 = "poster"
	ShowStatus                 = "status"
	ShowReleaseWeekday         = "release_weekday"
	ShowReleaseTime            = "release_time"
	ShowReleaseTimezone        = "release_timezone"
	ShowReleaseCountry         = "release_country"
	ShowCustomReleaseTime      = "custom_release_time"
	ShowCustomReleaseDayOffset = "custom_release_day_offset"
	ShowCustomReleaseTimezone  = "custom_release_timezone"
	ShowRatingGlobal           = "rating_global"
	ShowRatingVotes            = "rating_votes"
	ShowRatingUser             = "rating_user"
	ShowFavorite               = "favorite"
	ShowHidden                 = "hidden"
	ShowNotify                 = "notify"
	ShowNextEpisode            = "next_episode"
	ShowNextAirMs              = "next_air_ms"
	ShowNextText               = "next_text"
	ShowLastWatchedID          = "last_watched_id"
	ShowLastWatchedMs          = "last_watched_ms"
	ShowUnwatchedCount         = "unwatched_count"
	ShowLanguage               = "language"
	ShowLastUpdated            = "last_updated"
)

// Season columns.
const (
	SeasonID             = ColumnID
	SeasonShowID         = "show_id"
	SeasonTmdbID         = "tmdb_id"
	SeasonNumber         = "number"
	SeasonName           = "name"
	SeasonTotalCount     = "total_count"
	SeasonUnairedCount   = "unaired_count"
	SeasonNoAirdateCount = "noairdate_count"
)

// Episode columns.
const (
	EpisodeID             = ColumnID
	EpisodeSeasonID       = "season_id"
	EpisodeShowID         = "show_id"
	EpisodeTmdbID         = "tmdb_id"
	EpisodeTitle          = "title"
	EpisodeOverview       = "overview"
	EpisodeNumber         = "number"
	EpisodeSeasonNumber   = "season_number"
	EpisodeAbsoluteNumber = "absolute_number"
	EpisodeDvdNumber      = "dvd_number"
	EpisodeWatched        = "watched"
	EpisodePlays          = "plays"
	EpisodeCollected      = "collected"
	EpisodeFirstReleaseMs = "first_release_ms"
	EpisodeRatingGlobal   = "rating_global"
	EpisodeRatingVotes    = "rating_votes"
	EpisodeRatingUser     = "rating_user"
	EpisodeLastUpdated    = "last_updated"
)

// List and list item columns.
const (
	ListID        = ColumnID
	ListListID    = "list_id"
	ListName      = "name"
	ListSortOrder = "sort_order"

	ListItemID     = ColumnID
	ListItemItemID = "list_item_id"
	ListItemRefID  = "item_ref_id"
	ListItemType   = "item_type"
	ListItemListID = "list_id"
)

// Movie columns.
const (
	MovieID               = ColumnID
	MovieTmdbID           = "tmdb_id"
	MovieImdbID           = "imdb_id"
	MovieTitle            = "title"
	MovieTitleNoArticle   = "title_noarticle"
	MovieOverview         = "overview"
	MovieReleaseMs        = "release_ms"
	MovieRuntimeMin       = "runtime_min"
	MoviePoster           = "poster"
	MovieInCollection     = "in_collection"
	MovieInWatchlist      = "in_watchlist"
	MovieWatched          = "watched"
	MoviePlays            = "plays"
	MovieRatingTmdb       = "rating_tmdb"
	MovieRatingTmdbVotes  = "rating_tmdb_votes"
	MovieRatingTrakt      = "rating_trakt"
	MovieRatingTraktVotes = "rating_trakt_votes"
	MovieRatingUser       = "rating_user"
	MovieLastWatchedMs    = "last_watched_ms"
	MovieLastUpdated      = "last_updated"
)

// Activity and job columns.
const (
	ActivityID          = ColumnID
	ActivityEpisodeRef  = "episode_ref"
	ActivityShowRef     = "show_ref"
	ActivityType        = "activity_type"
	ActivityTimestampMs = "timestamp_ms"

	JobID        = ColumnID
	JobCreatedMs = "created_ms"
	JobType      = "type"
	JobExtras    = "extras"
)

// Columns added by joined paths. They alias columns of the joined table so
// that a row never carries two values under one name.
const (
	JoinShowTitle           = "show_title"
	JoinShowNetwork         = "show_network"
	JoinShowPoster          = "show_poster"
	JoinShowReleaseTime     = "show_release_time"
	JoinShowReleaseTimezone = "show_release_timezone"
	JoinShowReleaseCountry  = "show_release_country"
	JoinShowStatus          = "show_status"
	JoinShowFavorite        = "show_favorite"
	JoinShowHidden          = "show_hidden"
	JoinShowTmdbID          = "show_tmdb_id"
	JoinShowTvdbID          = "show_tvdb_id"
	JoinEpisodeTitle        = "episode_title"
	JoinEpisodeNumber       = "episode_number"
	JoinEpisodeSeason       = "episode_season_number"
	JoinEpisodeWatched      = "episode_watched"
	JoinEpisodeReleaseMs    = "episode_first_release_ms"
	JoinInList              = "in_list"
	JoinItemTitle           = "item_title"
	JoinItemOverview        = "item_overview"
	JoinItemShowID          = "item_show_id"
	JoinItemNumber          = "item_number"
)
