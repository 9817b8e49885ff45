package types

import (
	"fmt"
	"strconv"
	"strings"
)

// List item types.
const (
	ItemTypeShow    = 1
	ItemTypeSeason  = 2
	ItemTypeEpisode = 3
)

// DefaultListID is the id of the list seeded into a fresh database.
const (
	DefaultListID   = "list-default"
	DefaultListName = "First list"
)

// List is a user-defined collection of shows, seasons and episodes.
type List struct {
	ID        int64
	ListID    string
	Name      string
	SortOrder int
}

// Values returns the insertable columns of l. An empty ListID is left out so
// the store generates one.
func (l *List) Values() Values {
	v := Values{
		ListName:      l.Name,
		ListSortOrder: int64(l.SortOrder),
	}
	if l.ListID != "" {
		v[ListListID] = l.ListID
	}
	return v
}

// ListFromRow decodes a lists row.
func ListFromRow(r Row) *List {
	return &List{
		ID:        r.Int64(ListID),
		ListID:    r.String(ListListID),
		Name:      r.String(ListName),
		SortOrder: r.Int(ListSortOrder),
	}
}

// ListItem places one show, season or episode on a list.
type ListItem struct {
	ID       int64
	ItemID   string
	RefID    string
	ItemType int
	ListID   string
}

// Values returns the insertable columns of li. The composite key is
// computed by the store.
func (li *ListItem) Values() Values {
	return Values{
		ListItemRefID:  li.RefID,
		ListItemType:   int64(li.ItemType),
		ListItemListID: li.ListID,
	}
}

// ListItemFromRow decodes a listitems row.
func ListItemFromRow(r Row) *ListItem {
	return &ListItem{
		ID:       r.Int64(ListItemID),
		ItemID:   r.String(ListItemItemID),
		RefID:    r.String(ListItemRefID),
		ItemType: r.Int(ListItemType),
		ListID:   r.String(ListItemListID),
	}
}

// ValidItemType reports whether t is one of the list item types.
func ValidItemType(t int) bool {
	return t == ItemTypeShow || t == ItemTypeSeason || t == ItemTypeEpisode
}

// ListItemKey builds the unique key of a list item:
// "<item_ref_id>-<item_type>-<list_id>".
func ListItemKey(refID string, itemType int, listID string) string {
	return refID + "-" + strconv.Itoa(itemType) + "-" + listID
}

// ParseListItemKey splits a key built by ListItemKey. List ids may contain
// dashes, so the ref id and type are taken from the front.
func ParseListItemKey(key string) (refID string, itemType int, listID string, err error) {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", 0, "", fmt.Errorf("list item key %q: %w", key, ErrInvalidData)
	}
	itemType, err = strconv.Atoi(parts[1])
	if err != nil || !ValidItemType(itemType) {
		return "", 0, "", fmt.Errorf("list item key %q: %w", key, ErrInvalidData)
	}
	return parts[0], itemType, parts[2], nil
}
