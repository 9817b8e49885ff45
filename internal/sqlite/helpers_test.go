package sqlite

import (
	"database/sql"
	"fmt"
	"hash/crc32"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// fixedNow is the clock every test backend uses.
var fixedNow = time.UnixMilli(1_700_000_000_000)

// recorder collects notified paths in order.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) Notify(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), paths...))
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		out = append(out, c...)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func testConfig(dir string) types.Config {
	return types.Config{Backend: types.BackendSQLite, DataDir: dir}
}

// setupBackend attaches a backend on a fresh data directory.
func setupBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	return attachAt(t, t.TempDir(), opts...)
}

func attachAt(t *testing.T, dir string, opts ...Option) *Backend {
	t.Helper()
	opts = append([]Option{
		WithLogger(zerolog.Nop()),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	b := NewBackend(opts...)
	require.NoError(t, b.Attach(testConfig(dir)))
	t.Cleanup(func() { b.Detach() })
	return b
}

// setupRecorded attaches a backend whose notifications are recorded.
func setupRecorded(t *testing.T) (*Backend, *recorder) {
	t.Helper()
	rec := &recorder{}
	return setupBackend(t, WithNotifier(rec)), rec
}

func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func rawDB(t *testing.T, b *Backend) *sql.DB {
	t.Helper()
	db, err := b.handle()
	require.NoError(t, err)
	return db
}

// dump reads every registry table in _id order.
func dump(t *testing.T, q execQuerier) map[string][]types.Row {
	t.Helper()
	out := make(map[string][]types.Row)
	for _, name := range schema.TableNames() {
		ok, err := tableExists(q, name)
		require.NoError(t, err)
		if !ok {
			continue
		}
		rows, err := q.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY _id", name))
		require.NoError(t, err)
		data, err := scanRows(rows)
		rows.Close()
		require.NoError(t, err)
		out[name] = data
	}
	return out
}

func ptr(v int64) *int64 { return &v }

func dbFile(dir string) string {
	return filepath.Join(dir, types.DefaultDatabaseFile)
}

// insertShow adds a show with one season of episodes released at the
// given instants and returns the show, season and episode ids.
func insertShow(t *testing.T, b *Backend, title string, releases ...int64) (showID, seasonID int64, episodes []int64) {
	t.Helper()
	show := &types.Show{Title: title, TmdbID: ptr(int64(crc32.ChecksumIEEE([]byte(title)))), Status: types.ShowStatusContinuing,
		ReleaseTime: -1, Weekday: types.WeekdayUnknown, Unwatched: -1}
	showID, err := b.Insert(types.TableShows, show.Values())
	require.NoError(t, err)

	season := &types.Season{ShowID: showID, Number: 1}
	seasonID, err = b.Insert(types.TableSeasons, season.Values())
	require.NoError(t, err)

	for i, ms := range releases {
		ep := &types.Episode{
			SeasonID: seasonID, ShowID: showID, Number: i + 1, SeasonNumber: 1,
			Title: fmt.Sprintf("%s episode %d", title, i+1), FirstReleaseMs: ms,
		}
		id, err := b.Insert(types.TableEpisodes, ep.Values())
		require.NoError(t, err)
		episodes = append(episodes, id)
	}
	return showID, seasonID, episodes
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
