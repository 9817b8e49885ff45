package dispatch

import (
	"sync"

	"github.com/mesh-intelligence/showstore/internal/selection"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// ControlClose is the path that releases the database handle.
const ControlClose = "close"

// Route sort orders.
const (
	sortShows    = types.ShowTitleNoArticle + " COLLATE NOCASE ASC"
	sortSeasons  = types.SeasonNumber + " DESC"
	sortEpisodes = types.EpisodeSeasonNumber + " ASC, " + types.EpisodeNumber + " ASC"
	sortLists    = types.ListSortOrder + " ASC, " + types.ListName + " COLLATE NOCASE ASC"
	sortItems    = types.JoinItemTitle + " COLLATE NOCASE ASC"
	sortMovies   = types.MovieTitleNoArticle + " COLLATE NOCASE ASC"
	sortActivity = types.ActivityTimestampMs + " DESC"
	sortJobs     = types.JobCreatedMs + " ASC"
)

var (
	defaultOnce    sync.Once
	defaultMatcher *Matcher
	defaultErr     error
)

// Default returns the matcher over the standard routes.
func Default() (*Matcher, error) {
	defaultOnce.Do(func() {
		defaultMatcher, defaultErr = NewMatcher(StandardRoutes())
	})
	return defaultMatcher, defaultErr
}

// StandardRoutes returns a fresh copy of every path the store serves.
func StandardRoutes() []*Route {
	return []*Route{
		{Name: "shows", Pattern: "shows", Kind: KindCollection, Entity: "show",
			Table: types.TableShows, DefaultSort: sortShows, build: table(types.TableShows)},
		{Name: "shows_id", Pattern: "shows/#", Kind: KindItem, Entity: "show",
			build: byID(types.TableShows, types.ShowID)},
		{Name: "shows_with_last_episode", Pattern: "shows/with_last_episode", Kind: KindCollection, Entity: "show",
			DefaultSort: sortShows, build: showsWithEpisode(types.ShowLastWatchedID)},
		{Name: "shows_with_next_episode", Pattern: "shows/with_next_episode", Kind: KindCollection, Entity: "show",
			DefaultSort: sortShows, build: showsWithEpisode(types.ShowNextEpisode)},

		{Name: "seasons", Pattern: "seasons", Kind: KindCollection, Entity: "season",
			Table: types.TableSeasons, DefaultSort: sortSeasons, build: table(types.TableSeasons)},
		{Name: "seasons_id", Pattern: "seasons/#", Kind: KindItem, Entity: "season",
			build: byID(types.TableSeasons, types.SeasonID)},
		{Name: "seasons_ofshow", Pattern: "seasons/ofshow/#", Kind: KindCollection, Entity: "season",
			DefaultSort: sortSeasons, build: byID(types.TableSeasons, types.SeasonShowID)},

		{Name: "episodes", Pattern: "episodes", Kind: KindCollection, Entity: "episode",
			Table: types.TableEpisodes, DefaultSort: sortEpisodes, build: table(types.TableEpisodes)},
		{Name: "episodes_id", Pattern: "episodes/#", Kind: KindItem, Entity: "episode",
			build: byID(types.TableEpisodes, types.EpisodeID)},
		{Name: "episodes_ofshow", Pattern: "episodes/ofshow/#", Kind: KindCollection, Entity: "episode",
			DefaultSort: sortEpisodes, build: byID(types.TableEpisodes, types.EpisodeShowID)},
		{Name: "episodes_ofseason", Pattern: "episodes/ofseason/#", Kind: KindCollection, Entity: "episode",
			DefaultSort: sortEpisodes, build: byID(types.TableEpisodes, types.EpisodeSeasonID)},
		{Name: "episodes_ofseason_withshow", Pattern: "episodes/ofseason/#/withshow", Kind: KindCollection, Entity: "episode",
			DefaultSort: sortEpisodes, build: episodesWithShow(types.EpisodeSeasonID)},
		{Name: "episodes_withshow", Pattern: "episodes/withshow", Kind: KindCollection, Entity: "episode",
			DefaultSort: sortEpisodes, build: episodesWithShow("")},
		{Name: "episodes_withshow_id", Pattern: "episodes/withshow/#", Kind: KindItem, Entity: "episode",
			build: episodesWithShow(types.EpisodeID)},

		{Name: "lists", Pattern: "lists", Kind: KindCollection, Entity: "list",
			Table: types.TableLists, DefaultSort: sortLists, build: table(types.TableLists)},
		{Name: "lists_id", Pattern: "lists/*", Kind: KindItem, Entity: "list",
			build: byText(types.TableLists, types.ListListID)},
		{Name: "lists_withlistitem", Pattern: "lists/withlistitem/*", Kind: KindCollection, Entity: "list",
			DefaultSort: sortLists, build: listsWithItem},

		{Name: "listitems", Pattern: "listitems", Kind: KindCollection, Entity: "listitem",
			Table: types.TableListItems, build: table(types.TableListItems)},
		{Name: "listitems_id", Pattern: "listitems/*", Kind: KindItem, Entity: "listitem",
			build: byText(types.TableListItems, types.ListItemItemID)},
		{Name: "listitems_withdetails", Pattern: "listitems/withdetails", Kind: KindCollection, Entity: "listitem",
			DefaultSort: sortItems, build: listItemsWithDetails},

		{Name: "movies", Pattern: "movies", Kind: KindCollection, Entity: "movie",
			Table: types.TableMovies, DefaultSort: sortMovies, build: table(types.TableMovies)},
		{Name: "movies_id", Pattern: "movies/#", Kind: KindItem, Entity: "movie",
			build: byID(types.TableMovies, types.MovieTmdbID)},

		{Name: "activity", Pattern: "activity", Kind: KindCollection, Entity: "activity",
			Table: types.TableActivity, DefaultSort: sortActivity, build: table(types.TableActivity)},

		{Name: "jobs", Pattern: "jobs", Kind: KindCollection, Entity: "job",
			Table: types.TableJobs, DefaultSort: sortJobs, build: table(types.TableJobs)},
		{Name: "jobs_id", Pattern: "jobs/#", Kind: KindItem, Entity: "job",
			build: byID(types.TableJobs, types.JobID)},

		{Name: ControlClose, Pattern: ControlClose, Kind: KindControl},
	}
}

// showAliases exposes show columns next to a joined primary table.
var showAliases = [][2]string{
	{types.JoinShowTitle, types.ShowTitle},
	{types.JoinShowNetwork, types.ShowNetwork},
	{types.JoinShowPoster, types.ShowPoster},
	{types.JoinShowStatus, types.ShowStatus},
	{types.JoinShowReleaseTime, types.ShowReleaseTime},
	{types.JoinShowReleaseTimezone, types.ShowReleaseTimezone},
	{types.JoinShowReleaseCountry, types.ShowReleaseCountry},
	{types.JoinShowFavorite, types.ShowFavorite},
	{types.JoinShowHidden, types.ShowHidden},
	{types.JoinShowTmdbID, types.ShowTmdbID},
	{types.JoinShowTvdbID, types.ShowTvdbID},
}

var episodeAliases = [][2]string{
	{types.JoinEpisodeTitle, types.EpisodeTitle},
	{types.JoinEpisodeNumber, types.EpisodeNumber},
	{types.JoinEpisodeSeason, types.EpisodeSeasonNumber},
	{types.JoinEpisodeWatched, types.EpisodeWatched},
	{types.JoinEpisodeReleaseMs, types.EpisodeFirstReleaseMs},
}

func mapAliases(b *selection.Builder, table string, aliases [][2]string) *selection.Builder {
	for _, a := range aliases {
		b.MapExpr(a[0], table+"."+a[1])
	}
	return b
}

// episodesWithShow joins each episode with its show. A non-empty column
// narrows the episodes by the numeric parameter.
func episodesWithShow(column string) buildFunc {
	return func(params []string) (*selection.Builder, error) {
		b := selection.New().
			Table(types.TableEpisodes).
			LeftJoin(types.TableShows, "shows._id = episodes.show_id").
			MapToTables(types.TableEpisodes)
		mapAliases(b, types.TableShows, showAliases)
		if column != "" {
			id, err := parseID(params, 0)
			if err != nil {
				return nil, err
			}
			b.Where(column+" = ?", id)
		}
		return b, nil
	}
}

// showsWithEpisode joins each show with the episode its column points at.
func showsWithEpisode(column string) buildFunc {
	return func([]string) (*selection.Builder, error) {
		b := selection.New().
			Table(types.TableShows).
			LeftJoin(types.TableEpisodes, "episodes._id = shows."+column).
			MapToTables(types.TableShows)
		return mapAliases(b, types.TableEpisodes, episodeAliases), nil
	}
}

// listsWithItem adds in_list, true for the lists that already hold the
// item identified by "<item_ref_id>-<item_type>".
func listsWithItem(params []string) (*selection.Builder, error) {
	return selection.New().
		Table(types.TableLists).
		MapExpr(types.JoinInList,
			"EXISTS (SELECT 1 FROM listitems WHERE listitems.list_item_id = ? || '-' || lists.list_id)",
			params[0]), nil
}

const itemDetails = `SELECT 1 AS item_type, CAST(_id AS TEXT) AS item_ref_id, _id AS item_show_id,
       title AS item_title, overview AS item_overview, 0 AS item_number FROM shows
UNION ALL
SELECT 2, CAST(_id AS TEXT), show_id, name, '', number FROM seasons
UNION ALL
SELECT 3, CAST(_id AS TEXT), show_id, title, overview, number FROM episodes`

var itemDetailColumns = []string{
	types.ListItemType,
	types.ListItemRefID,
	types.JoinItemShowID,
	types.JoinItemTitle,
	types.JoinItemOverview,
	types.JoinItemNumber,
}

// listItemsWithDetails resolves each list item to the show, season or
// episode it references and to the owning show.
func listItemsWithDetails([]string) (*selection.Builder, error) {
	b := selection.New().
		Table(types.TableListItems).
		LeftJoinSelect("details", itemDetails, itemDetailColumns,
			"details.item_type = listitems.item_type AND details.item_ref_id = listitems.item_ref_id").
		LeftJoin(types.TableShows, "shows._id = details.item_show_id").
		MapToTables(types.TableListItems)
	return mapAliases(b, types.TableShows, showAliases), nil
}
