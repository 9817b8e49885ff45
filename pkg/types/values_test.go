package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowGetters(t *testing.T) {
	r := Row{
		"i":     int64(42),
		"f":     3.5,
		"s":     "text",
		"b":     []byte("17"),
		"flag":  int64(1),
		"null":  nil,
		"numst": "12",
	}

	assert.Equal(t, int64(42), r.Int64("i"))
	assert.Equal(t, 42, r.Int("i"))
	assert.Equal(t, 3.5, r.Float64("f"))
	assert.Equal(t, 42.0, r.Float64("i"))
	assert.Equal(t, "text", r.String("s"))
	assert.Equal(t, "42", r.String("i"))
	assert.Equal(t, int64(17), r.Int64("b"))
	assert.Equal(t, int64(12), r.Int64("numst"))
	assert.True(t, r.Bool("flag"))
	assert.False(t, r.Bool("null"))

	assert.True(t, r.IsNull("null"))
	assert.True(t, r.IsNull("missing"))
	assert.False(t, r.IsNull("i"))
	assert.Nil(t, r.NullInt64("null"))
	if assert.NotNil(t, r.NullInt64("i")) {
		assert.Equal(t, int64(42), *r.NullInt64("i"))
	}
}

func TestValuesColumnsSorted(t *testing.T) {
	v := Values{"title": "x", "_id": int64(1), "network": "y"}
	assert.Equal(t, []string{"_id", "network", "title"}, v.Columns())

	c := v.Clone()
	c["title"] = "z"
	assert.Equal(t, "x", v["title"])
}
