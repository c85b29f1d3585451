package tree

import (
	"fmt"
	"io"
)

// RenderOptions controls the text tree printer.
type RenderOptions struct {
	// NameField is the display field.
	// Default: "name"
	NameField string

	// MaxDepth limits how many levels are printed (0 = unlimited).
	MaxDepth int

	// ShowIDs appends the identifier to each label.
	ShowIDs bool
}

// DefaultRenderOptions prints every level with identifiers.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		NameField: DefaultNameField,
		ShowIDs:   true,
	}
}

// Render writes nodes as a box-drawn text tree.
func Render(w io.Writer, nodes []*Node, opts RenderOptions) error {
	return renderNodes(w, nodes, "", 0, opts)
}

func renderNodes(w io.Writer, nodes []*Node, prefix string, level int, opts RenderOptions) error {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}

		label := nameOf(n.Record, opts.NameField)
		if opts.ShowIDs {
			label = fmt.Sprintf("%s [%s]", label, n.ID)
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, label); err != nil {
			return err
		}

		if opts.MaxDepth > 0 && level+1 >= opts.MaxDepth {
			continue
		}
		if err := renderNodes(w, n.Items, prefix+next, level+1, opts); err != nil {
			return err
		}
	}
	return nil
}
