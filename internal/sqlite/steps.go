package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Columns written by schema 17 that later versions replaced. They stay in
// upgraded databases but are never read outside the upgrade steps.
const (
	legacyAirsTime   = "airstime"
	legacyAirsDay    = "airsdayofweek"
	legacyFirstAired = "first_aired"
)

func columns(table string, cols ...string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error { return addColumns(tx, table, cols...) }
}

func tables(names ...string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, name := range names {
			if err := createTable(tx, name); err != nil {
				return err
			}
		}
		return nil
	}
}

func sequence(fns ...func(*sql.Tx) error) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, fn := range fns {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	}
}

func exec(stmt string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		_, err := tx.Exec(stmt)
		return err
	}
}

// whenColumn runs fn only if table has column.
func whenColumn(table, column string, fn func(*sql.Tx) error) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		ok, err := columnExists(tx, table, column)
		if err != nil || !ok {
			return err
		}
		return fn(tx)
	}
}

var steps = []step{
	{18, "show release country", columns(types.TableShows, types.ShowReleaseCountry)},
	{19, "episode absolute number", columns(types.TableEpisodes, types.EpisodeAbsoluteNumber)},
	{20, "show notify flag", columns(types.TableShows, types.ShowNotify)},
	{21, "episode collected flag", columns(types.TableEpisodes, types.EpisodeCollected)},
	{22, "lists", sequence(tables(types.TableLists, types.TableListItems), seed)},
	{23, "show release timezone", columns(types.TableShows, types.ShowReleaseTimezone)},
	{24, "show release time", sequence(
		columns(types.TableShows, types.ShowReleaseTime),
		whenColumn(types.TableShows, legacyAirsTime, backfillReleaseTime),
	)},
	{25, "show release weekday", sequence(
		columns(types.TableShows, types.ShowReleaseWeekday),
		whenColumn(types.TableShows, legacyAirsDay, backfillReleaseWeekday),
	)},
	{26, "episode release instant", sequence(
		columns(types.TableEpisodes, types.EpisodeFirstReleaseMs),
		whenColumn(types.TableEpisodes, legacyFirstAired, backfillFirstRelease),
	)},
	{27, "last watched episode", columns(types.TableShows, types.ShowLastWatchedID, types.ShowLastWatchedMs)},
	{28, "movies", tables(types.TableMovies)},
	{29, "movie rating sources", columns(types.TableMovies,
		types.MovieRatingTmdb, types.MovieRatingTmdbVotes, types.MovieRatingTrakt, types.MovieRatingTraktVotes)},
	{30, "show ratings", columns(types.TableShows, types.ShowRatingVotes, types.ShowRatingUser)},
	{31, "episode ratings", columns(types.TableEpisodes,
		types.EpisodeRatingGlobal, types.EpisodeRatingVotes, types.EpisodeRatingUser)},
	{32, "movie user rating", columns(types.TableMovies, types.MovieRatingUser)},
	{33, "activity", tables(types.TableActivity)},
	{34, "show language", columns(types.TableShows, types.ShowLanguage)},
	{35, "list order", columns(types.TableLists, types.ListSortOrder)},
	{36, "episode search", func(tx *sql.Tx) error { return recreateSearch(tx, "") }},
	{37, "show unwatched count", columns(types.TableShows, types.ShowUnwatchedCount)},
	{38, "movie plays", sequence(
		columns(types.TableMovies, types.MoviePlays),
		exec("UPDATE movies SET plays = 1 WHERE watched = 1 AND plays = 0"),
	)},
	{39, "episode plays", sequence(
		columns(types.TableEpisodes, types.EpisodePlays),
		exec("UPDATE episodes SET plays = 1 WHERE watched = 1 AND plays = 0"),
	)},
	{40, "jobs", tables(types.TableJobs)},
	{41, "tmdb ids", sequence(
		columns(types.TableShows, types.ShowTmdbID),
		columns(types.TableSeasons, types.SeasonTmdbID),
		columns(types.TableEpisodes, types.EpisodeTmdbID),
	)},
	{42, "tvdb ids", sequence(
		columns(types.TableShows, types.ShowTvdbID),
		exec("UPDATE shows SET tvdb_id = _id WHERE tvdb_id IS NULL AND tmdb_id IS NULL"),
	)},
	{43, "lookup indexes", createIndexes(false)},
	{44, "movie last watched", columns(types.TableMovies, types.MovieLastWatchedMs)},
	{45, "custom release time", columns(types.TableShows,
		types.ShowCustomReleaseTime, types.ShowCustomReleaseDayOffset, types.ShowCustomReleaseTimezone)},
	{46, "season name", columns(types.TableSeasons, types.SeasonName)},
	{47, "sort titles", sequence(
		columns(types.TableShows, types.ShowTitleNoArticle),
		backfillSortTitles(types.TableShows, types.ShowTitle, types.ShowTitleNoArticle),
		backfillSortTitles(types.TableMovies, types.MovieTitle, types.MovieTitleNoArticle),
	)},
	{48, "search tokenizer", func(tx *sql.Tx) error { return recreateSearch(tx, schema.SearchTokenizer) }},
	{49, "unique external ids", createIndexes(true)},
}

// backfillReleaseTime converts the legacy milliseconds-of-day into HHMM.
// Negative legacy values mean the time is unknown.
func backfillReleaseTime(tx *sql.Tx) error {
	_, err := tx.Exec(`UPDATE shows SET release_time = CASE
		WHEN airstime IS NULL OR airstime < 0 THEN -1
		ELSE ((airstime / 60000) % 1440) / 60 * 100 + ((airstime / 60000) % 1440) % 60
	END WHERE release_time = -1`)
	return err
}

func backfillReleaseWeekday(tx *sql.Tx) error {
	_, err := tx.Exec(`UPDATE shows SET release_weekday = CASE lower(trim(airsdayofweek))
		WHEN 'daily' THEN 0
		WHEN 'monday' THEN 1
		WHEN 'tuesday' THEN 2
		WHEN 'wednesday' THEN 3
		WHEN 'thursday' THEN 4
		WHEN 'friday' THEN 5
		WHEN 'saturday' THEN 6
		WHEN 'sunday' THEN 7
		ELSE -1
	END WHERE release_weekday = -1`)
	return err
}

// backfillFirstRelease computes the release instant of every episode that
// still lacks one from its legacy date and the show's release settings.
func backfillFirstRelease(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT e._id, e.first_aired, s.release_time, s.release_timezone, s.release_country
		FROM episodes e LEFT JOIN shows s ON s._id = e.show_id
		WHERE e.first_release_ms = -1 AND e.first_aired IS NOT NULL AND e.first_aired != ''`)
	if err != nil {
		return err
	}

	type release struct {
		id int64
		ms int64
	}
	var pending []release
	for rows.Next() {
		var (
			id       int64
			date     string
			hhmm     sql.NullInt64
			tz, land sql.NullString
		)
		if err := rows.Scan(&id, &date, &hhmm, &tz, &land); err != nil {
			rows.Close()
			return err
		}
		releaseTime := -1
		if hhmm.Valid {
			releaseTime = int(hhmm.Int64)
		}
		ms := types.ReleaseInstant(date, releaseTime, tz.String, land.String)
		if ms != types.UnknownRelease {
			pending = append(pending, release{id: id, ms: ms})
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range pending {
		if _, err := tx.Exec("UPDATE episodes SET first_release_ms = ? WHERE _id = ?", r.ms, r.id); err != nil {
			return fmt.Errorf("episode %d: %w", r.id, err)
		}
	}
	return nil
}

// backfillSortTitles fills the article-free sort title where it is missing.
func backfillSortTitles(table, titleCol, sortCol string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		ok, err := tableExists(tx, table)
		if err != nil || !ok {
			return err
		}
		rows, err := tx.Query(fmt.Sprintf("SELECT _id, %s FROM %s WHERE %s IS NULL", titleCol, table, sortCol))
		if err != nil {
			return err
		}
		sortTitles := make(map[int64]string)
		for rows.Next() {
			var (
				id    int64
				title sql.NullString
			)
			if err := rows.Scan(&id, &title); err != nil {
				rows.Close()
				return err
			}
			sortTitles[id] = types.TitleNoArticle(title.String)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE _id = ?", table, sortCol)
		for id, title := range sortTitles {
			if _, err := tx.Exec(stmt, title, id); err != nil {
				return err
			}
		}
		return nil
	}
}
