package domain

import (
	"strconv"
	"strings"

	"bricklink/cattree/internal/tree"
)

// RootPath is the parent path of a top-level category.
const RootPath = "0"

// Category is one node of a BrickLink catalog tree.
//
// BrickLink addresses a category by its catString, the dot-joined chain of
// category IDs from the top level ("332.124.316"). The same numeric category
// can sit under several parents, so the catString, not the numeric ID, is
// the primary key.
type Category struct {
	Path       string       `json:"id"`          // catString, e.g. "332.124"
	ParentPath string       `json:"parent_id"`   // "332", or RootPath at top level
	CategoryID int          `json:"category_id"` // last segment of Path
	Name       string       `json:"name"`
	ItemType   CategoryType `json:"item_type"`
	Count      int          `json:"count"`
	URL        string       `json:"url"`
	Position   int          `json:"position"` // order of appearance in the catalog tree
}

// NewCategory derives the parent path and numeric ID from a catString.
func NewCategory(itemType CategoryType, catString, name string) (Category, error) {
	catString = strings.Trim(strings.TrimSpace(catString), ".")
	parent := RootPath
	last := catString
	if i := strings.LastIndex(catString, "."); i >= 0 {
		parent = catString[:i]
		last = catString[i+1:]
	}
	id, err := strconv.Atoi(last)
	if err != nil {
		return Category{}, err
	}
	return Category{
		Path:       catString,
		ParentPath: parent,
		CategoryID: id,
		Name:       name,
		ItemType:   itemType,
	}, nil
}

// Depth is the number of ancestors implied by the catString.
func (c Category) Depth() int {
	return strings.Count(c.Path, ".")
}

// Field implements tree.Record.
func (c Category) Field(name string) (any, bool) {
	switch name {
	case "id", "path", "cat_string":
		return c.Path, true
	case "parent_id", "parent_path":
		return c.ParentPath, true
	case "category_id":
		return c.CategoryID, true
	case "name":
		return c.Name, true
	case "item_type":
		return c.ItemType.String(), true
	case "count":
		return c.Count, true
	case "url":
		return c.URL, true
	case "position":
		return c.Position, true
	default:
		return nil, false
	}
}

type Categories []Category

// Records adapts the slice for the tree builder, preserving order.
func (cs Categories) Records() []tree.Record {
	return tree.Records([]Category(cs))
}
