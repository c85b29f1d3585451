package tree

import "slices"

// PathArray returns the records from the top-level ancestor down to target,
// inclusive. Records are indexed by primary key here, not by parent; on
// duplicate keys the last record wins. An unknown target yields an empty
// path. The upward walk stops at the root sentinel or at a parent that
// does not resolve to any record.
func PathArray(records []Record, target any, opts Options) ([]Record, error) {
	opts = opts.withDefaults()

	byID := make(map[ID]Record, len(records))
	for _, rec := range records {
		if id, ok := opts.primaryOf(rec); ok {
			byID[id] = rec
		}
	}

	id, ok := ToID(target)
	if !ok {
		return nil, nil
	}

	var path []Record
	visited := make(map[ID]struct{})
	for {
		rec, ok := byID[id]
		if !ok {
			break
		}
		if _, seen := visited[id]; seen {
			return nil, &TraversalError{Op: "path", ID: id, Depth: len(path), Err: ErrCycleDetected}
		}
		if len(path) > opts.MaxDepth {
			return nil, &TraversalError{Op: "path", ID: id, Depth: len(path), Err: ErrDepthExceeded}
		}
		visited[id] = struct{}{}
		path = append(path, rec)

		parent := opts.parentOf(rec)
		if opts.isRoot(parent) {
			break
		}
		id = parent
	}

	slices.Reverse(path)
	return path, nil
}
