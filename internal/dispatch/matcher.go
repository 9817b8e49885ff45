// Package dispatch maps resource paths such as "episodes/ofseason/7" onto
// routes. A route knows its kind (collection, item or control), the table
// inserts go to, its default sort order, and how to build the selection
// that reads, updates or deletes its rows.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Wildcard segments of a pattern.
const (
	segNumber = "#"
	segText   = "*"
)

type node struct {
	literal map[string]*node
	number  *node
	text    *node
	route   *Route
}

func newNode() *node { return &node{literal: make(map[string]*node)} }

// Matcher resolves paths against registered route patterns.
type Matcher struct {
	root   *node
	routes []*Route
}

// NewMatcher builds a matcher over routes. Two routes with the same pattern
// are an error.
func NewMatcher(routes []*Route) (*Matcher, error) {
	m := &Matcher{root: newNode()}
	for _, r := range routes {
		if err := m.add(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Matcher) add(r *Route) error {
	segs, ok := split(r.Pattern)
	if !ok {
		return fmt.Errorf("route pattern %q is empty", r.Pattern)
	}
	n := m.root
	for _, s := range segs {
		var next **node
		switch s {
		case segNumber:
			next = &n.number
		case segText:
			next = &n.text
		default:
			child, ok := n.literal[s]
			if !ok {
				child = newNode()
				n.literal[s] = child
			}
			n = child
			continue
		}
		if *next == nil {
			*next = newNode()
		}
		n = *next
	}
	if n.route != nil {
		return fmt.Errorf("route pattern %q registered twice", r.Pattern)
	}
	n.route = r
	m.routes = append(m.routes, r)
	return nil
}

// Match is a resolved path: the route and the values of its wildcard
// segments in order.
type Match struct {
	Route  *Route
	Params []string
	Path   string
}

// Match resolves path. Literal segments win over "#", which wins over "*";
// a dead end backtracks to the next alternative.
func (m *Matcher) Match(path string) (Match, error) {
	segs, ok := split(path)
	if !ok {
		return Match{}, fmt.Errorf("%w: %q", types.ErrUnknownPath, path)
	}
	r, params := walk(m.root, segs, nil)
	if r == nil {
		return Match{}, fmt.Errorf("%w: %q", types.ErrUnknownPath, path)
	}
	return Match{Route: r, Params: params, Path: strings.Join(segs, "/")}, nil
}

// Routes returns the registered routes in registration order.
func (m *Matcher) Routes() []*Route {
	out := make([]*Route, len(m.routes))
	copy(out, m.routes)
	return out
}

func walk(n *node, segs []string, params []string) (*Route, []string) {
	if len(segs) == 0 {
		return n.route, params
	}
	s, rest := segs[0], segs[1:]
	if child, ok := n.literal[s]; ok {
		if r, p := walk(child, rest, params); r != nil {
			return r, p
		}
	}
	if n.number != nil && isNumber(s) {
		if r, p := walk(n.number, rest, append(params[:len(params):len(params)], s)); r != nil {
			return r, p
		}
	}
	if n.text != nil {
		if r, p := walk(n.text, rest, append(params[:len(params):len(params)], s)); r != nil {
			return r, p
		}
	}
	return nil, nil
}

// split trims surrounding slashes and rejects empty paths and empty
// segments.
func split(path string) ([]string, bool) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, false
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return nil, false
		}
	}
	return segs, true
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
