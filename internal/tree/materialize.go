package tree

// Node is one record placed in the nested tree.
type Node struct {
	ID     ID      `json:"id"`
	Depth  int     `json:"depth"`
	Record Record  `json:"-"`
	Items  []*Node `json:"items,omitempty"`
}

// Entry is one record of the flattened tree.
type Entry struct {
	ID     ID     `json:"id"`
	Depth  int    `json:"depth"`
	Record Record `json:"-"`
}

// Tree materializes the subtree below root as nested nodes. Nodes directly
// under root have depth 0. An unknown root yields an empty tree.
func (x *Index) Tree(root ID) ([]*Node, error) {
	w := x.newWalker("tree")
	return w.nested(x.key(root), 0)
}

// PlaneTree visits the same nodes as Tree, in the same pre-order, but
// appends them to a single flat list annotated with their depth.
func (x *Index) PlaneTree(root ID) ([]Entry, error) {
	w := x.newWalker("plane tree")
	return w.flat(x.key(root), 0, nil)
}

// ChildrenIDs returns every identifier reachable below root, excluding
// root itself, without duplicates.
func (x *Index) ChildrenIDs(root ID) ([]ID, error) {
	entries, err := x.PlaneTree(root)
	if err != nil {
		return nil, err
	}
	seen := make(map[ID]struct{}, len(entries))
	ids := make([]ID, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// Flatten unpacks nested nodes in pre-order.
func Flatten(nodes []*Node) []Entry {
	var out []Entry
	var visit func([]*Node)
	visit = func(ns []*Node) {
		for _, n := range ns {
			out = append(out, Entry{ID: n.ID, Depth: n.Depth, Record: n.Record})
			visit(n.Items)
		}
	}
	visit(nodes)
	return out
}

// walker carries the guards shared by both traversals: the set of group
// keys on the current descent and the depth bound.
type walker struct {
	x      *Index
	op     string
	onPath map[ID]struct{}
}

func (x *Index) newWalker(op string) *walker {
	return &walker{x: x, op: op, onPath: make(map[ID]struct{})}
}

func (w *walker) enter(parent ID, depth int) error {
	if _, ok := w.onPath[parent]; ok {
		return &TraversalError{Op: w.op, ID: parent, Depth: depth, Err: ErrCycleDetected}
	}
	if depth > w.x.opts.MaxDepth {
		return &TraversalError{Op: w.op, ID: parent, Depth: depth, Err: ErrDepthExceeded}
	}
	w.onPath[parent] = struct{}{}
	return nil
}

func (w *walker) leave(parent ID) {
	delete(w.onPath, parent)
}

func (w *walker) nested(parent ID, depth int) ([]*Node, error) {
	group := w.x.groups[parent]
	if len(group) == 0 {
		return nil, nil
	}
	if err := w.enter(parent, depth); err != nil {
		return nil, err
	}
	defer w.leave(parent)

	nodes := make([]*Node, 0, len(group))
	for _, c := range group {
		n := &Node{ID: c.ID, Depth: depth, Record: c.Record}
		if len(w.x.groups[c.ID]) > 0 {
			items, err := w.nested(c.ID, depth+1)
			if err != nil {
				return nil, err
			}
			n.Items = items
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (w *walker) flat(parent ID, depth int, out []Entry) ([]Entry, error) {
	group := w.x.groups[parent]
	if len(group) == 0 {
		return out, nil
	}
	if err := w.enter(parent, depth); err != nil {
		return nil, err
	}
	defer w.leave(parent)

	for _, c := range group {
		out = append(out, Entry{ID: c.ID, Depth: depth, Record: c.Record})
		if len(w.x.groups[c.ID]) > 0 {
			var err error
			if out, err = w.flat(c.ID, depth+1, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
