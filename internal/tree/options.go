package tree

const (
	DefaultPrimaryField = "id"
	DefaultParentField  = "parent_id"
	DefaultNameField    = "name"
	DefaultRoot         = ID("0")
	DefaultMaxDepth     = 1000
)

// Options names the fields of interest and bounds traversal.
type Options struct {
	// PrimaryField holds the record identifier.
	// Default: "id"
	PrimaryField string

	// ParentField references the parent's identifier.
	// Default: "parent_id"
	ParentField string

	// NameField is the display name used by the formatters.
	// Default: "name"
	NameField string

	// Root is the parent value meaning "top level". A missing, nil or
	// empty parent is always treated as Root. The zero Options keeps an
	// empty Root, so "0" stays a legitimate identifier there.
	Root ID

	// MaxDepth is the deepest depth level a traversal may reach.
	// Values <= 0 mean DefaultMaxDepth.
	MaxDepth int
}

// DefaultOptions returns the conventional id/parent_id/name layout with
// root sentinel "0".
func DefaultOptions() Options {
	return Options{
		PrimaryField: DefaultPrimaryField,
		ParentField:  DefaultParentField,
		NameField:    DefaultNameField,
		Root:         DefaultRoot,
		MaxDepth:     DefaultMaxDepth,
	}
}

func (o Options) withDefaults() Options {
	if o.PrimaryField == "" {
		o.PrimaryField = DefaultPrimaryField
	}
	if o.ParentField == "" {
		o.ParentField = DefaultParentField
	}
	if o.NameField == "" {
		o.NameField = DefaultNameField
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

func (o Options) primaryOf(rec Record) (ID, bool) {
	v, ok := Get(rec, o.PrimaryField)
	if !ok {
		return "", false
	}
	id, ok := ToID(v)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func (o Options) parentOf(rec Record) ID {
	v, ok := Get(rec, o.ParentField)
	if !ok {
		return o.Root
	}
	id, ok := ToID(v)
	if !ok || id == "" {
		return o.Root
	}
	return id
}

func (o Options) isRoot(id ID) bool {
	return id == o.Root || id == ""
}
