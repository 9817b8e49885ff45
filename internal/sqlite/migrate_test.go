package sqlite

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// v17Schema is the oldest layout that still upgrades.
var v17Schema = []string{
	`CREATE TABLE shows (_id INTEGER PRIMARY KEY, title TEXT NOT NULL, overview TEXT DEFAULT '',
		network TEXT DEFAULT '', poster TEXT DEFAULT '', status INTEGER DEFAULT -1,
		rating_global REAL DEFAULT 0, favorite INTEGER DEFAULT 0, hidden INTEGER DEFAULT 0,
		next_episode INTEGER, next_air_ms INTEGER DEFAULT 0, next_text TEXT DEFAULT '',
		last_updated INTEGER DEFAULT 0, airstime INTEGER, airsdayofweek TEXT DEFAULT '')`,
	`CREATE TABLE seasons (_id INTEGER PRIMARY KEY, show_id INTEGER, number INTEGER DEFAULT 0,
		total_count INTEGER DEFAULT 0, unaired_count INTEGER DEFAULT 0, noairdate_count INTEGER DEFAULT 0)`,
	`CREATE TABLE episodes (_id INTEGER PRIMARY KEY, season_id INTEGER, show_id INTEGER,
		title TEXT DEFAULT '', overview TEXT DEFAULT '', number INTEGER DEFAULT 0,
		season_number INTEGER DEFAULT 0, dvd_number REAL DEFAULT 0, watched INTEGER DEFAULT 0,
		last_updated INTEGER DEFAULT 0, first_aired TEXT)`,
	`INSERT INTO shows (_id, title, network, airstime, airsdayofweek)
		VALUES (80348, 'The Office', 'NBC', 73800000, 'Thursday')`,
	`INSERT INTO shows (_id, title, airstime, airsdayofweek) VALUES (81189, 'Breaking Bad', -1, 'Daily')`,
	`INSERT INTO seasons (_id, show_id, number) VALUES (1, 80348, 1)`,
	`INSERT INTO episodes (_id, season_id, show_id, title, overview, number, season_number, watched, first_aired)
		VALUES (10, 1, 80348, 'Pilot', 'A documentary crew arrives at Dunder Mifflin.', 1, 1, 1, '2005-03-24')`,
	`INSERT INTO episodes (_id, season_id, show_id, title, number, season_number, watched, first_aired)
		VALUES (11, 1, 80348, 'Diversity Day', 2, 1, 0, '')`,
	`PRAGMA user_version = 17`,
}

// writeFixture creates a database file in dir from stmts.
func writeFixture(t *testing.T, dir string, stmts []string) {
	t.Helper()
	db := openRaw(t, dbFile(dir))
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	require.NoError(t, db.Close())
}

func TestMigrate_FromV17(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, v17Schema)
	b := attachAt(t, dir)

	v, err := b.Version()
	require.NoError(t, err)
	assert.Equal(t, schema.CurrentVersion, v)

	db := rawDB(t, b)
	for _, tbl := range schema.Tables() {
		for _, col := range tbl.ColumnNames() {
			ok, err := columnExists(db, tbl.Name, col)
			require.NoError(t, err)
			assert.True(t, ok, "%s.%s", tbl.Name, col)
		}
	}

	office, err := b.Get("shows/80348")
	require.NoError(t, err)
	assert.Equal(t, 2030, office.Int(types.ShowReleaseTime))
	assert.Equal(t, 4, office.Int(types.ShowReleaseWeekday))
	assert.Equal(t, int64(80348), office.Int64(types.ShowTvdbID))
	assert.True(t, office.IsNull(types.ShowTmdbID))
	assert.Equal(t, "Office", office.String(types.ShowTitleNoArticle))
	assert.True(t, office.Bool(types.ShowNotify))
	assert.Equal(t, -1, office.Int(types.ShowUnwatchedCount))
	assert.Equal(t, "NBC", office.String(types.ShowNetwork))
	assert.Empty(t, office.String(types.ShowLanguage))

	bb, err := b.Get("shows/81189")
	require.NoError(t, err)
	assert.Equal(t, -1, bb.Int(types.ShowReleaseTime))
	assert.Equal(t, types.WeekdayDaily, bb.Int(types.ShowReleaseWeekday))

	pilot, err := b.Get("episodes/10")
	require.NoError(t, err)
	want := types.ReleaseInstant("2005-03-24", 2030, "", "")
	assert.NotEqual(t, types.UnknownRelease, want)
	assert.Equal(t, want, pilot.Int64(types.EpisodeFirstReleaseMs))
	assert.Equal(t, 1, pilot.Int(types.EpisodePlays))

	undated, err := b.Get("episodes/11")
	require.NoError(t, err)
	assert.Equal(t, types.UnknownRelease, undated.Int64(types.EpisodeFirstReleaseMs))
	assert.Equal(t, 0, undated.Int(types.EpisodePlays))

	_, err = b.Get("lists/" + types.DefaultListID)
	assert.NoError(t, err, "default list seeded by the lists step")

	hits, err := b.Search("dunder", types.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(10), hits[0].EpisodeID)
	assert.Equal(t, "The Office", hits[0].ShowTitle)
}

func TestMigrate_StepsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, v17Schema)
	db := openRaw(t, dbFile(dir))

	for _, s := range steps {
		require.NoError(t, Upgrade(db, s.version-1, s.version), "step %d (%s)", s.version, s.name)
		data, ddl := dump(t, db), schemaDDL(t, db)

		withTx(t, db, func(tx *sql.Tx) {
			require.NoError(t, s.apply(tx), "step %d (%s) applied twice", s.version, s.name)
		})
		assert.Equal(t, data, dump(t, db), "step %d (%s)", s.version, s.name)
		assert.Equal(t, ddl, schemaDDL(t, db), "step %d (%s)", s.version, s.name)

		v, err := userVersion(db)
		require.NoError(t, err)
		assert.Equal(t, s.version, v)
	}
}

// schemaDDL returns the stored DDL of every schema object, by name.
func schemaDDL(t *testing.T, db *sql.DB) map[string]string {
	t.Helper()
	rows, err := db.Query("SELECT name, COALESCE(sql, '') FROM sqlite_master")
	require.NoError(t, err)
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, ddl string
		require.NoError(t, rows.Scan(&name, &ddl))
		out[name] = ddl
	}
	require.NoError(t, rows.Err())
	return out
}

func TestMigrate_StepsAreContiguous(t *testing.T) {
	require.NotEmpty(t, steps)
	assert.Equal(t, schema.MinUpgradeVersion+1, steps[0].version)
	for i, s := range steps {
		assert.Equal(t, schema.MinUpgradeVersion+1+i, s.version)
		assert.NotEmpty(t, s.name)
	}
	assert.Equal(t, schema.CurrentVersion, steps[len(steps)-1].version)
}

func TestMigrate_PartialUpgrade(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, v17Schema)
	db := openRaw(t, dbFile(dir))

	require.NoError(t, Upgrade(db, 17, 30))
	v, err := userVersion(db)
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	ok, err := columnExists(db, types.TableShows, types.ShowRatingVotes)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = columnExists(db, types.TableShows, types.ShowLanguage)
	require.NoError(t, err)
	assert.False(t, ok, "step 34 not applied yet")

	require.NoError(t, Upgrade(db, 30, schema.CurrentVersion))
	ok, err = columnExists(db, types.TableShows, types.ShowLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMigrate_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		stmts []string
		want  int
	}{
		{name: "too old", stmts: []string{"CREATE TABLE shows (_id INTEGER PRIMARY KEY)", "PRAGMA user_version = 5"}, want: 5},
		{name: "newer than supported", stmts: []string{"CREATE TABLE shows (_id INTEGER PRIMARY KEY)", "PRAGMA user_version = 60"}, want: 60},
		{name: "unversioned with tables", stmts: []string{"CREATE TABLE stuff (x)"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, tt.stmts)
			b := attachAt(t, dir)

			_, err := b.Version()
			assert.ErrorIs(t, err, types.ErrUnsupportedVersion)
			assert.Nil(t, b.db)

			db := openRaw(t, dbFile(dir))
			v, err := userVersion(db)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v, "database left untouched")
		})
	}

	db := openRaw(t, dbFile(t.TempDir()))
	assert.ErrorIs(t, Upgrade(db, 10, 20), types.ErrUnsupportedVersion)
	assert.ErrorIs(t, Upgrade(db, 30, 20), types.ErrUnsupportedVersion)
	assert.ErrorIs(t, Upgrade(db, 17, schema.CurrentVersion+1), types.ErrUnsupportedVersion)
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	// A lists table from elsewhere without the columns the seed needs.
	stmts := append([]string{"CREATE TABLE lists (_id INTEGER PRIMARY KEY, label TEXT)"}, v17Schema...)
	writeFixture(t, dir, stmts)

	db := openRaw(t, dbFile(dir))
	_, _, err := migrate(db, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMigration)

	var merr *types.MigrationError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 22, merr.Version)

	v, err := userVersion(db)
	require.NoError(t, err)
	assert.Equal(t, 17, v)
	ok, err := columnExists(db, types.TableShows, types.ShowReleaseCountry)
	require.NoError(t, err)
	assert.False(t, ok, "step 18 rolled back")
}

func TestMigrate_UniqueExternalIDs(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, v17Schema)
	db := openRaw(t, dbFile(dir))
	require.NoError(t, Upgrade(db, 17, 48))

	_, err := db.Exec("UPDATE shows SET tmdb_id = 2316, tvdb_id = NULL")
	require.NoError(t, err)

	err = Upgrade(db, 48, 49)
	assert.ErrorIs(t, err, types.ErrMigration)
	assert.ErrorIs(t, err, types.ErrConflict)
	v, err := userVersion(db)
	require.NoError(t, err)
	assert.Equal(t, 48, v)

	_, err = db.Exec("UPDATE shows SET tmdb_id = NULL, tvdb_id = _id WHERE _id = 81189")
	require.NoError(t, err)
	require.NoError(t, Upgrade(db, 48, 49))

	_, err = db.Exec("INSERT INTO shows (title, tmdb_id) VALUES ('Copy', 2316)")
	require.Error(t, err, "unique index created")
	_, err = db.Exec("INSERT INTO shows (title) VALUES ('No ids')")
	require.NoError(t, err)
}

func TestMigrate_Fresh(t *testing.T) {
	db := openRaw(t, dbFile(t.TempDir()))

	from, to, err := migrate(db, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, from)
	assert.Equal(t, schema.CurrentVersion, to)

	from, to, err = migrate(db, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, schema.CurrentVersion, from, "second open is a no-op")
	assert.Equal(t, schema.CurrentVersion, to)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM lists").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestAddColumns(t *testing.T) {
	db := openRaw(t, dbFile(t.TempDir()))
	_, err := db.Exec("CREATE TABLE shows (_id INTEGER PRIMARY KEY, title TEXT NOT NULL)")
	require.NoError(t, err)

	withTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, addColumns(tx, types.TableShows, types.ShowLanguage, types.ShowLanguage))
		assert.ErrorIs(t, addColumns(tx, types.TableShows, "bogus"), types.ErrUnknownColumn)
		assert.ErrorIs(t, addColumns(tx, "bogus", "x"), types.ErrNoTable)
	})
	ok, err := columnExists(db, types.TableShows, types.ShowLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
}

func withTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}
