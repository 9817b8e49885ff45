package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

func TestInsert(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		values  types.Values
		wantErr error
		check   func(t *testing.T, b *Backend, id int64)
	}{
		{
			name:   "show gets a sort title",
			path:   types.TableShows,
			values: types.Values{types.ShowTitle: "The Office", types.ShowTvdbID: int64(73244)},
			check: func(t *testing.T, b *Backend, id int64) {
				row, err := b.Get("shows/" + itoa(id))
				require.NoError(t, err)
				assert.Equal(t, "Office", row.String(types.ShowTitleNoArticle))
				assert.Equal(t, int64(-1), row.Int64(types.ShowReleaseTime), "column default applies")
				assert.True(t, row.Bool(types.ShowNotify))
			},
		},
		{
			name:    "show with both external ids",
			path:    types.TableShows,
			values:  types.Values{types.ShowTitle: "Lost", types.ShowTmdbID: 4607, types.ShowTvdbID: 73739},
			wantErr: types.ErrInvalidData,
		},
		{
			name:    "show without title",
			path:    types.TableShows,
			values:  types.Values{types.ShowNetwork: "HBO"},
			wantErr: types.ErrInvalidData,
		},
		{
			name:    "unknown column",
			path:    types.TableShows,
			values:  types.Values{types.ShowTitle: "Lost", "bogus": 1},
			wantErr: types.ErrUnknownColumn,
		},
		{
			name:    "item path",
			path:    "shows/1",
			values:  types.Values{types.ShowTitle: "Lost"},
			wantErr: types.ErrUnsupportedOperation,
		},
		{
			name:    "join path",
			path:    "episodes/withshow",
			values:  types.Values{types.EpisodeTitle: "Pilot"},
			wantErr: types.ErrUnsupportedOperation,
		},
		{
			name:    "unsupported value type",
			path:    types.TableShows,
			values:  types.Values{types.ShowTitle: []string{"no"}},
			wantErr: types.ErrInvalidData,
		},
		{
			name:   "empty values use defaults",
			path:   types.TableSeasons,
			values: types.Values{},
			check: func(t *testing.T, b *Backend, id int64) {
				row, err := b.Get("seasons/" + itoa(id))
				require.NoError(t, err)
				assert.Equal(t, int64(0), row.Int64(types.SeasonNumber))
			},
		},
		{
			name:   "list gets a generated id",
			path:   types.TableLists,
			values: types.Values{types.ListName: "Weekend"},
			check: func(t *testing.T, b *Backend, id int64) {
				rows, err := b.Query(types.TableLists, types.QueryOptions{Selection: "_id = ?", Args: []any{id}})
				require.NoError(t, err)
				require.Len(t, rows, 1)
				list := types.ListFromRow(rows[0])
				assert.Equal(t, "Weekend", list.Name)
				assert.Len(t, list.ListID, 36)
			},
		},
		{
			name: "list item key",
			path: types.TableListItems,
			values: types.Values{
				types.ListItemRefID: "42", types.ListItemType: types.ItemTypeShow, types.ListItemListID: types.DefaultListID,
			},
			check: func(t *testing.T, b *Backend, id int64) {
				row, err := b.Get("listitems/" + types.ListItemKey("42", types.ItemTypeShow, types.DefaultListID))
				require.NoError(t, err)
				item := types.ListItemFromRow(row)
				assert.Equal(t, id, item.ID)
				assert.Equal(t, "42", item.RefID)
				assert.Equal(t, types.ItemTypeShow, item.ItemType)
			},
		},
		{
			name:    "list item with bad type",
			path:    types.TableListItems,
			values:  types.Values{types.ListItemRefID: "42", types.ListItemType: 9, types.ListItemListID: "x"},
			wantErr: types.ErrInvalidData,
		},
		{
			name:   "activity timestamp from clock",
			path:   types.TableActivity,
			values: types.Values{types.ActivityEpisodeRef: "e1", types.ActivityShowRef: "s1"},
			check: func(t *testing.T, b *Backend, id int64) {
				rows, err := b.Query(types.TableActivity, types.QueryOptions{})
				require.NoError(t, err)
				require.Len(t, rows, 1)
				a := types.ActivityFromRow(rows[0])
				assert.Equal(t, "e1", a.EpisodeRef)
				assert.Equal(t, fixedNow.UnixMilli(), a.TimestampMs)
			},
		},
		{
			name: "activity replaces entry for the same episode",
			path: types.TableActivity,
			values: (&types.Activity{
				EpisodeRef: "e1", ShowRef: "s1", Type: types.ActivityTypeEpisode, TimestampMs: 5,
			}).Values(),
			check: func(t *testing.T, b *Backend, _ int64) {
				_, err := b.Insert(types.TableActivity, (&types.Activity{
					EpisodeRef: "e1", ShowRef: "s1", Type: types.ActivityTypeEpisode, TimestampMs: 9,
				}).Values())
				require.NoError(t, err)
				rows, err := b.Query(types.TableActivity, types.QueryOptions{})
				require.NoError(t, err)
				require.Len(t, rows, 1)
				assert.Equal(t, int64(9), types.ActivityFromRow(rows[0]).TimestampMs)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			id, err := b.Insert(tt.path, tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Positive(t, id)
			if tt.check != nil {
				tt.check(t, b, id)
			}
		})
	}
}

func TestInsert_ConflictPolicy(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		first   types.Values
		second  types.Values
		key     string
		value   any
		replace bool
		col     string
		want    any
	}{
		{
			name:  "duplicate show id aborts",
			path:  types.TableShows,
			first: types.Values{types.ShowID: 7, types.ShowTitle: "A"}, second: types.Values{types.ShowID: 7, types.ShowTitle: "B"},
			key: types.ShowID, value: 7, col: types.ShowTitle, want: "A",
		},
		{
			name:  "duplicate show tmdb id aborts",
			path:  types.TableShows,
			first: types.Values{types.ShowTitle: "A", types.ShowTmdbID: 100}, second: types.Values{types.ShowTitle: "B", types.ShowTmdbID: 100},
			key: types.ShowTmdbID, value: 100, col: types.ShowTitle, want: "A",
		},
		{
			name:  "duplicate show tvdb id aborts",
			path:  types.TableShows,
			first: types.Values{types.ShowTitle: "A", types.ShowTvdbID: 81189}, second: types.Values{types.ShowTitle: "B", types.ShowTvdbID: 81189},
			key: types.ShowTvdbID, value: 81189, col: types.ShowTitle, want: "A",
		},
		{
			name:   "duplicate season tmdb id aborts",
			path:   types.TableSeasons,
			first:  types.Values{types.SeasonShowID: 1, types.SeasonTmdbID: "3572", types.SeasonNumber: 1},
			second: types.Values{types.SeasonShowID: 1, types.SeasonTmdbID: "3572", types.SeasonNumber: 2},
			key:    types.SeasonTmdbID, value: "3572", col: types.SeasonNumber, want: int64(1),
		},
		{
			name:   "duplicate episode tmdb id aborts",
			path:   types.TableEpisodes,
			first:  types.Values{types.EpisodeShowID: 1, types.EpisodeTmdbID: 62085, types.EpisodeTitle: "Pilot"},
			second: types.Values{types.EpisodeShowID: 1, types.EpisodeTmdbID: 62085, types.EpisodeTitle: "Copy"},
			key:    types.EpisodeTmdbID, value: 62085, col: types.EpisodeTitle, want: "Pilot",
		},
		{
			name:   "movie replaces on tmdb id",
			path:   types.TableMovies,
			first:  types.Values{types.MovieTmdbID: 603, types.MovieTitle: "The Matrix"},
			second: types.Values{types.MovieTmdbID: 603, types.MovieTitle: "The Matrix (1999)", types.MovieWatched: true},
			key:    types.MovieTmdbID, value: 603, replace: true, col: types.MovieTitleNoArticle, want: "Matrix (1999)",
		},
		{
			name:   "list replaces on list id",
			path:   types.TableLists,
			first:  types.Values{types.ListListID: "weekend", types.ListName: "Weekend"},
			second: types.Values{types.ListListID: "weekend", types.ListName: "Long weekend", types.ListSortOrder: 3},
			key:    types.ListListID, value: "weekend", replace: true, col: types.ListName, want: "Long weekend",
		},
		{
			name: "list item replaces on composite key",
			path: types.TableListItems,
			first: types.Values{
				types.ListItemRefID: "5", types.ListItemType: types.ItemTypeSeason, types.ListItemListID: types.DefaultListID,
			},
			second: types.Values{
				types.ListItemRefID: "5", types.ListItemType: types.ItemTypeSeason, types.ListItemListID: types.DefaultListID,
			},
			key: types.ListItemItemID, value: types.ListItemKey("5", types.ItemTypeSeason, types.DefaultListID), replace: true,
			col: types.ListItemRefID, want: "5",
		},
		{
			name:  "job replaces on creation time",
			path:  types.TableJobs,
			first: types.Values{types.JobCreatedMs: 42, types.JobType: 1}, second: types.Values{types.JobCreatedMs: 42, types.JobType: 2},
			key: types.JobCreatedMs, value: 42, replace: true, col: types.JobType, want: int64(2),
		},
		{
			name:   "activity replaces on episode ref",
			path:   types.TableActivity,
			first:  types.Values{types.ActivityEpisodeRef: "e1", types.ActivityShowRef: "s1"},
			second: types.Values{types.ActivityEpisodeRef: "e1", types.ActivityShowRef: "s2"},
			key:    types.ActivityEpisodeRef, value: "e1", replace: true, col: types.ActivityShowRef, want: "s2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			firstID, err := b.Insert(tt.path, tt.first)
			require.NoError(t, err)

			secondID, err := b.Insert(tt.path, tt.second)
			wantID := firstID
			if tt.replace {
				require.NoError(t, err)
				wantID = secondID
			} else {
				assert.ErrorIs(t, err, types.ErrConflict)
			}

			rows, err := b.Query(tt.path, types.QueryOptions{Selection: tt.key + " = ?", Args: []any{tt.value}})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, wantID, rows[0].Int64(types.ColumnID))
			assert.Equal(t, tt.want, rows[0][tt.col])
		})
	}
}

func TestInsert_ShowsWithoutExternalIDs(t *testing.T) {
	b := setupBackend(t)
	for _, title := range []string{"Local One", "Local Two"} {
		_, err := b.Insert(types.TableShows, types.Values{types.ShowTitle: title})
		require.NoError(t, err)
	}
	rows, err := b.Query(types.TableShows, types.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUpdate_ListItemKeyFollowsColumns(t *testing.T) {
	b := setupBackend(t)
	insert := func(ref string) {
		t.Helper()
		_, err := b.Insert(types.TableListItems, types.Values{
			types.ListItemRefID: ref, types.ListItemType: types.ItemTypeShow, types.ListItemListID: types.DefaultListID,
		})
		require.NoError(t, err)
	}
	insert("5")
	insert("7")

	n, err := b.Update("listitems/"+types.ListItemKey("5", types.ItemTypeShow, types.DefaultListID),
		types.Values{types.ListItemRefID: "9", types.ListItemType: types.ItemTypeEpisode}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	item, err := b.Get("listitems/" + types.ListItemKey("9", types.ItemTypeEpisode, types.DefaultListID))
	require.NoError(t, err)
	assert.Equal(t, "9", types.ListItemFromRow(item).RefID)
	_, err = b.Get("listitems/" + types.ListItemKey("5", types.ItemTypeShow, types.DefaultListID))
	assert.ErrorIs(t, err, types.ErrNotFound)

	// Moving onto an existing key supersedes the older item.
	_, err = b.Update(types.TableListItems, types.Values{types.ListItemRefID: "7", types.ListItemType: types.ItemTypeShow}, "item_ref_id = ?", "9")
	require.NoError(t, err)
	rows, err := b.Query(types.TableListItems, types.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.ListItemKey("7", types.ItemTypeShow, types.DefaultListID), rows[0].String(types.ListItemItemID))

	tests := []struct {
		name   string
		values types.Values
	}{
		{name: "key written directly", values: types.Values{types.ListItemItemID: "x-1-y"}},
		{name: "invalid item type", values: types.Values{types.ListItemType: 9}},
		{name: "empty ref", values: types.Values{types.ListItemRefID: ""}},
		{name: "null list", values: types.Values{types.ListItemListID: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Update(types.TableListItems, tt.values, "")
			assert.ErrorIs(t, err, types.ErrInvalidData)
		})
	}
}

func TestUpdate_ShowKeepsOneExternalID(t *testing.T) {
	b := setupBackend(t)
	tmdbShow, err := b.Insert(types.TableShows, types.Values{types.ShowTitle: "Dark", types.ShowTmdbID: 70523})
	require.NoError(t, err)
	tvdbShow, err := b.Insert(types.TableShows, types.Values{types.ShowTitle: "Lost", types.ShowTvdbID: 73739})
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		values  types.Values
		wantErr error
	}{
		{name: "both ids at once", path: "shows/" + itoa(tmdbShow),
			values: types.Values{types.ShowTmdbID: 1, types.ShowTvdbID: 2}, wantErr: types.ErrInvalidData},
		{name: "tvdb id onto a tmdb show", path: "shows/" + itoa(tmdbShow),
			values: types.Values{types.ShowTvdbID: 2}, wantErr: types.ErrInvalidData},
		{name: "tmdb id onto every show", path: types.TableShows,
			values: types.Values{types.ShowTmdbID: 3}, wantErr: types.ErrInvalidData},
		{name: "tmdb id taken by another show", path: "shows/" + itoa(tvdbShow),
			values: types.Values{types.ShowTmdbID: 70523, types.ShowTvdbID: nil}, wantErr: types.ErrConflict},
		{name: "switching namespaces", path: "shows/" + itoa(tvdbShow),
			values: types.Values{types.ShowTmdbID: 4607, types.ShowTvdbID: nil}},
		{name: "clearing an id", path: "shows/" + itoa(tmdbShow),
			values: types.Values{types.ShowTmdbID: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Update(tt.path, tt.values, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	lost, err := b.Get("shows/" + itoa(tvdbShow))
	require.NoError(t, err)
	assert.Equal(t, int64(4607), lost.Int64(types.ShowTmdbID))
	assert.True(t, lost.IsNull(types.ShowTvdbID))
}

func TestUpdateDelete(t *testing.T) {
	b, rec := setupRecorded(t)
	showID, _, eps := insertShow(t, b, "Fargo", 1, 2, 3)
	rec.reset()

	n, err := b.Update("episodes/ofshow/"+itoa(showID), types.Values{types.EpisodeWatched: types.EpisodeIsWatched}, "number <= ?", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []string{"episodes/ofshow/" + itoa(showID)}, rec.all())

	rows, err := b.Query("episodes/ofshow/"+itoa(showID), types.QueryOptions{Selection: "watched = 1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rec.reset()
	n, err = b.Update(types.TableEpisodes, types.Values{types.EpisodeWatched: 1}, "_id = ?", -5)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rec.all(), "no notification when nothing changed")

	n, err = b.Delete("episodes/"+itoa(eps[2]), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = b.Get("episodes/" + itoa(eps[2]))
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = b.Delete("episodes/withshow", "")
	assert.ErrorIs(t, err, types.ErrUnsupportedOperation)
	_, err = b.Update(types.TableEpisodes, types.Values{"nope": 1}, "")
	assert.ErrorIs(t, err, types.ErrUnknownColumn)
	_, err = b.Update(types.TableEpisodes, types.Values{types.EpisodeWatched: 1}, "1=1; DROP TABLE shows")
	assert.ErrorIs(t, err, types.ErrUnsafeFragment)
}

func TestQuery_Joins(t *testing.T) {
	b := setupBackend(t)
	showID, seasonID, eps := insertShow(t, b, "Andor", 100, 200)

	row, err := b.Get("episodes/withshow/" + itoa(eps[0]))
	require.NoError(t, err)
	assert.Equal(t, "Andor", row.String(types.JoinShowTitle))
	assert.Equal(t, "Andor episode 1", row.String(types.EpisodeTitle))

	rows, err := b.Query("episodes/ofseason/"+itoa(seasonID)+"/withshow", types.QueryOptions{
		Projection: []string{types.EpisodeID, types.JoinShowTitle},
		SortOrder:  "number DESC",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, eps[1], rows[0].Int64(types.EpisodeID))

	rows, err = b.Query("episodes/ofshow/"+itoa(showID), types.QueryOptions{Projection: []string{"count(*)"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].Int64(types.ColumnCount))

	_, err = b.Get(types.TableShows)
	assert.ErrorIs(t, err, types.ErrUnsupportedOperation, "get needs an item path")
}

func TestQuery_Lists(t *testing.T) {
	b := setupBackend(t)
	showID, _, _ := insertShow(t, b, "Bluey")
	ref := itoa(showID)
	_, err := b.Insert(types.TableListItems, types.Values{
		types.ListItemRefID: ref, types.ListItemType: types.ItemTypeShow, types.ListItemListID: types.DefaultListID,
	})
	require.NoError(t, err)
	_, err = b.Insert(types.TableLists, types.Values{types.ListListID: "other", types.ListName: "Other", types.ListSortOrder: 1})
	require.NoError(t, err)

	rows, err := b.Query("lists/withlistitem/"+ref+"-"+itoa(types.ItemTypeShow), types.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	inList := map[string]bool{}
	for _, r := range rows {
		inList[r.String(types.ListListID)] = r.Bool(types.JoinInList)
	}
	assert.Equal(t, map[string]bool{types.DefaultListID: true, "other": false}, inList)

	rows, err = b.Query("listitems/withdetails", types.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bluey", rows[0].String(types.JoinItemTitle))
}

func TestBulkInsert(t *testing.T) {
	b, rec := setupRecorded(t)
	rows := []types.Values{
		{types.ShowTitle: "One", types.ShowTmdbID: 1396},
		{types.ShowNetwork: "missing title"},
		{types.ShowTitle: "Two", types.ShowTmdbID: 1, types.ShowTvdbID: 2},
		{types.ShowTitle: "One again", types.ShowTmdbID: 1396},
		{types.ShowTitle: "Three"},
	}

	n, err := b.BulkInsert(types.TableShows, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{types.TableShows}, rec.all())

	got, err := b.Query(types.TableShows, types.QueryOptions{Projection: []string{types.ShowTitle}, SortOrder: types.ShowTitle})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "One", got[0].String(types.ShowTitle))
	assert.Equal(t, "Three", got[1].String(types.ShowTitle))

	_, err = b.BulkInsert(types.TableShows, []types.Values{{"bogus": 1}})
	assert.ErrorIs(t, err, types.ErrUnknownColumn, "non-constraint errors abort")
}
