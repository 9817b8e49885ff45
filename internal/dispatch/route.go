package dispatch

import (
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/showstore/internal/selection"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Kind says what a path addresses.
type Kind int

const (
	// KindCollection addresses a set of rows.
	KindCollection Kind = iota
	// KindItem addresses a single row.
	KindItem
	// KindControl addresses an action rather than data.
	KindControl
)

func (k Kind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindItem:
		return "item"
	case KindControl:
		return "control"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ContentTypePrefix is the vendor prefix of route content types.
const ContentTypePrefix = "vnd.showstore"

type buildFunc func(params []string) (*selection.Builder, error)

// Route is one registered path pattern.
type Route struct {
	Name    string
	Pattern string
	Kind    Kind

	// Entity names the row type for content types, e.g. "episode".
	Entity string

	// Table receives inserts. Empty means the route does not accept them.
	Table string

	// DefaultSort orders queries that pass no sort order.
	DefaultSort string

	build buildFunc
}

// ContentType reports the content type of the rows the route yields, such
// as "vnd.showstore.dir/show" or "vnd.showstore.item/show".
func (r *Route) ContentType() string {
	switch r.Kind {
	case KindCollection:
		return ContentTypePrefix + ".dir/" + r.Entity
	case KindItem:
		return ContentTypePrefix + ".item/" + r.Entity
	}
	return ContentTypePrefix + ".control/" + r.Name
}

// Selection builds a fresh selection for the route bound to the wildcard
// values of a match.
func (r *Route) Selection(params []string) (*selection.Builder, error) {
	if r.build == nil {
		return nil, fmt.Errorf("%w: %s does not address data", types.ErrUnsupportedOperation, r.Pattern)
	}
	b, err := r.build(params)
	if err != nil {
		return nil, err
	}
	return b, b.Err()
}

// Selection builds the selection of a resolved path.
func (m Match) Selection() (*selection.Builder, error) {
	return m.Route.Selection(m.Params)
}

func parseID(params []string, i int) (int64, error) {
	if i >= len(params) {
		return 0, fmt.Errorf("%w: missing id", types.ErrUnknownPath)
	}
	id, err := strconv.ParseInt(params[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q", types.ErrUnknownPath, params[i])
	}
	return id, nil
}

func table(name string) buildFunc {
	return func([]string) (*selection.Builder, error) {
		return selection.New().Table(name), nil
	}
}

// byID narrows table to the row whose column equals the numeric parameter.
func byID(name, column string) buildFunc {
	return func(params []string) (*selection.Builder, error) {
		id, err := parseID(params, 0)
		if err != nil {
			return nil, err
		}
		return selection.New().Table(name).Where(column+" = ?", id), nil
	}
}

// byText narrows table to the rows whose column equals the text parameter.
func byText(name, column string) buildFunc {
	return func(params []string) (*selection.Builder, error) {
		return selection.New().Table(name).Where(column+" = ?", params[0]), nil
	}
}
