package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

func TestMatchStandardRoutes(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	tests := []struct {
		path   string
		route  string
		kind   Kind
		params []string
	}{
		{"shows", "shows", KindCollection, nil},
		{"/shows/", "shows", KindCollection, nil},
		{"shows/42", "shows_id", KindItem, []string{"42"}},
		{"shows/with_last_episode", "shows_with_last_episode", KindCollection, nil},
		{"seasons/ofshow/7", "seasons_ofshow", KindCollection, []string{"7"}},
		{"episodes/ofseason/3/withshow", "episodes_ofseason_withshow", KindCollection, []string{"3"}},
		{"episodes/withshow/9", "episodes_withshow_id", KindItem, []string{"9"}},
		{"lists/list-default", "lists_id", KindItem, []string{"list-default"}},
		{"lists/withlistitem/12-3", "lists_withlistitem", KindCollection, []string{"12-3"}},
		{"listitems/withdetails", "listitems_withdetails", KindCollection, nil},
		{"listitems/12-3-list-default", "listitems_id", KindItem, []string{"12-3-list-default"}},
		{"movies/603", "movies_id", KindItem, []string{"603"}},
		{"close", ControlClose, KindControl, nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := m.Match(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.route, got.Route.Name)
			assert.Equal(t, tt.kind, got.Route.Kind)
			assert.Equal(t, tt.params, got.Params)
		})
	}
}

func TestMatchBacktracksToWildcard(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	// "withlistitem" has a literal child but no route of its own.
	got, err := m.Match("lists/withlistitem")
	require.NoError(t, err)
	assert.Equal(t, "lists_id", got.Route.Name)
	assert.Equal(t, []string{"withlistitem"}, got.Params)

	// A literal wins over "*" when both could end the path.
	got, err = m.Match("listitems/withdetails")
	require.NoError(t, err)
	assert.Equal(t, "listitems_withdetails", got.Route.Name)
}

func TestMatchUnknownPaths(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	for _, p := range []string{"", "/", "nope", "shows//1", "shows/abc", "episodes/ofseason/x", "shows/1/2", "close/now"} {
		_, err := m.Match(p)
		assert.ErrorIs(t, err, types.ErrUnknownPath, p)
	}
}

func TestDuplicatePatternIsRejected(t *testing.T) {
	_, err := NewMatcher([]*Route{
		{Name: "a", Pattern: "x/#"},
		{Name: "b", Pattern: "x/#"},
	})
	assert.Error(t, err)
}

func TestNumberPreferredOverText(t *testing.T) {
	m, err := NewMatcher([]*Route{
		{Name: "text", Pattern: "x/*"},
		{Name: "num", Pattern: "x/#"},
	})
	require.NoError(t, err)

	got, err := m.Match("x/12")
	require.NoError(t, err)
	assert.Equal(t, "num", got.Route.Name)

	got, err = m.Match("x/ab")
	require.NoError(t, err)
	assert.Equal(t, "text", got.Route.Name)
}

func TestEveryRouteBuildsAValidQuery(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	params := map[string][]string{}
	for _, r := range m.Routes() {
		if r.Kind == KindControl {
			_, err := r.Selection(nil)
			assert.ErrorIs(t, err, types.ErrUnsupportedOperation)
			continue
		}
		p := params[r.Name]
		if p == nil {
			p = []string{"1"}
		}
		b, err := r.Selection(p)
		require.NoError(t, err, r.Pattern)
		_, _, err = b.BuildQuery(nil, r.DefaultSort)
		assert.NoError(t, err, r.Pattern)
	}
}

func TestContentType(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	got, err := m.Match("shows")
	require.NoError(t, err)
	assert.Equal(t, "vnd.showstore.dir/show", got.Route.ContentType())

	got, err = m.Match("episodes/5")
	require.NoError(t, err)
	assert.Equal(t, "vnd.showstore.item/episode", got.Route.ContentType())
}

func TestInsertTargets(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	for _, name := range types.StandardTableNames {
		got, err := m.Match(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, got.Route.Table)
	}
	got, err := m.Match("episodes/withshow")
	require.NoError(t, err)
	assert.Empty(t, got.Route.Table)
}
