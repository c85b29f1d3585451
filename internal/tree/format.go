package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cast"
	"github.com/yosida95/uritemplate/v3"
)

const (
	indentUnit       = "│ "
	branchMarker     = "├ "
	DefaultDelimiter = "/"
)

// Option is one line of a dropdown list.
type Option struct {
	ID    ID     `json:"id"`
	Label string `json:"label"`
}

// MenuItem is the navigation-widget shape of a tree node.
type MenuItem struct {
	Label    string     `json:"label"`
	URL      string     `json:"url"`
	Children []MenuItem `json:"children,omitempty"`
}

// Dropdown renders flattened entries as indented labels, one indent unit
// per depth level: "│ │ ├ Name" for a node at depth 2.
func Dropdown(entries []Entry, nameField string) []Option {
	opts := make([]Option, 0, len(entries))
	for _, e := range entries {
		opts = append(opts, Option{
			ID:    e.ID,
			Label: strings.Repeat(indentUnit, e.Depth) + branchMarker + nameOf(e.Record, nameField),
		})
	}
	return opts
}

// PathString joins the display names of a path. An empty delimiter means "/".
func PathString(path []Record, nameField, delimiter string) string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	names := make([]string, 0, len(path))
	for _, rec := range path {
		names = append(names, nameOf(rec, nameField))
	}
	return strings.Join(names, delimiter)
}

// EntryIDs projects flattened entries to their identifiers.
func EntryIDs(entries []Entry) []ID {
	ids := make([]ID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// PathIDs projects a path to the primary-key values of its records.
func PathIDs(path []Record, primaryField string) []ID {
	if primaryField == "" {
		primaryField = DefaultPrimaryField
	}
	ids := make([]ID, 0, len(path))
	for _, rec := range path {
		v, _ := Get(rec, primaryField)
		ids = append(ids, Key(v))
	}
	return ids
}

// Menu maps nested nodes to menu items. route is an RFC 6570 template
// expanded with the node identifier as {id}, e.g. "/catalog/{id}".
func Menu(nodes []*Node, nameField, route string) ([]MenuItem, error) {
	tmpl, err := uritemplate.New(route)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu route %q: %w", route, err)
	}
	return menuItems(nodes, nameField, tmpl)
}

func menuItems(nodes []*Node, nameField string, tmpl *uritemplate.Template) ([]MenuItem, error) {
	items := make([]MenuItem, 0, len(nodes))
	for _, n := range nodes {
		vals := uritemplate.Values{}
		vals.Set("id", uritemplate.String(string(n.ID)))
		url, err := tmpl.Expand(vals)
		if err != nil {
			return nil, fmt.Errorf("failed to expand menu route for %q: %w", n.ID, err)
		}

		item := MenuItem{Label: nameOf(n.Record, nameField), URL: url}
		if len(n.Items) > 0 {
			if item.Children, err = menuItems(n.Items, nameField, tmpl); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Bitmap packs numeric identifiers into a roaring bitmap.
func Bitmap(ids []ID) (*roaring.Bitmap, error) {
	bm := roaring.New()
	for _, id := range ids {
		n, err := strconv.ParseUint(string(id), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, id)
		}
		bm.Add(uint32(n))
	}
	return bm, nil
}

// Fingerprint digests the identifier, parent and name of every addressable
// record, in input order, together with the options that shape the tree and
// any further build inputs passed as extra (a menu route, a delimiter).
// Equal fingerprints build the same output, so it is the key under which a
// built tree may be kept.
func Fingerprint(records []Record, opts Options, extra ...string) string {
	opts = opts.withDefaults()
	d := xxhash.New()
	fmt.Fprintf(d, "%s\x00%s\x00%s\x00%s\x00%d\n",
		opts.PrimaryField, opts.ParentField, opts.NameField, opts.Root, opts.MaxDepth)
	for _, e := range extra {
		d.WriteString(e)
		d.WriteString("\x00")
	}
	d.WriteString("\n")
	for _, rec := range records {
		id, ok := opts.primaryOf(rec)
		if !ok {
			continue
		}
		d.WriteString(string(id))
		d.WriteString("\x00")
		d.WriteString(string(opts.parentOf(rec)))
		d.WriteString("\x00")
		d.WriteString(nameOf(rec, opts.NameField))
		d.WriteString("\n")
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

func nameOf(rec Record, field string) string {
	if field == "" {
		field = DefaultNameField
	}
	v, ok := Get(rec, field)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}
