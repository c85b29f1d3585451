package tree

// Child is one entry of a group: a record and its identifier.
type Child struct {
	ID     ID
	Record Record
}

// Index groups records by parent reference. It is built for one
// collection and owned by the caller; nothing is shared between indexes.
type Index struct {
	opts    Options
	groups  map[ID][]Child
	size    int
	skipped int
}

// BuildIndex groups records by their parent reference in a single pass.
// Records without a primary value cannot be addressed and are skipped.
// Order within each group follows input order.
func BuildIndex(records []Record, opts Options) *Index {
	opts = opts.withDefaults()
	idx := &Index{
		opts:   opts,
		groups: make(map[ID][]Child),
	}
	for _, rec := range records {
		id, ok := opts.primaryOf(rec)
		if !ok {
			idx.skipped++
			continue
		}
		parent := opts.parentOf(rec)
		idx.groups[parent] = append(idx.groups[parent], Child{ID: id, Record: rec})
		idx.size++
	}
	return idx
}

// Options returns the options the index was built with, defaults applied.
func (x *Index) Options() Options {
	return x.opts
}

// Children returns the direct children of parent in input order.
func (x *Index) Children(parent ID) []Child {
	return x.groups[x.key(parent)]
}

// Has reports whether parent has at least one child.
func (x *Index) Has(parent ID) bool {
	return len(x.groups[x.key(parent)]) > 0
}

// Len is the number of indexed records.
func (x *Index) Len() int {
	return x.size
}

// Skipped is the number of records dropped for lacking a primary value.
func (x *Index) Skipped() int {
	return x.skipped
}

func (x *Index) key(id ID) ID {
	if id == "" {
		return x.opts.Root
	}
	return id
}
