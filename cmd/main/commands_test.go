package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/source"
	"bricklink/cattree/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuJSON = `{"categories": [
	{"id": 1, "parent_id": 0, "name": "A"},
	{"id": 2, "parent_id": 1, "name": "B"},
	{"id": 3, "parent_id": 1, "name": "C"},
	{"id": 4, "parent_id": 2, "name": "D"}
]}`

// fileMode points the global flags at a temporary JSON file and captures output.
func fileMode(t *testing.T) (*config.Config, *bytes.Buffer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(menuJSON), 0o600))

	var buf bytes.Buffer
	origStdout, origFile, origSelector, origJSON := stdout, filePath, selector, jsonOut
	stdout, filePath, selector, jsonOut = &buf, path, source.DefaultSelector, false
	t.Cleanup(func() {
		stdout, filePath, selector, jsonOut = origStdout, origFile, origSelector, origJSON
		treeDepth, treeShowIDs, descendantsBitmap = 0, true, false
	})

	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg, &buf
}

func TestTreeCommand(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		ids   bool
		want  string
	}{
		{"full", 0, true, "└── A [1]\n    ├── B [2]\n    │   └── D [4]\n    └── C [3]\n"},
		{"depth 2 without ids", 2, false, "└── A\n    ├── B\n    └── C\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, out := fileMode(t)
			treeDepth, treeShowIDs = tt.depth, tt.ids

			require.NoError(t, runTree(context.Background(), cfg))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestTreeCommand_JSONMenu(t *testing.T) {
	cfg, out := fileMode(t)
	jsonOut = true
	cfg.Tree.MenuRoute = "/menu/{id}"

	require.NoError(t, runTree(context.Background(), cfg))

	var menu []tree.MenuItem
	require.NoError(t, json.Unmarshal(out.Bytes(), &menu))
	require.Len(t, menu, 1)
	assert.Equal(t, "/menu/1", menu[0].URL)
	assert.Equal(t, "D", menu[0].Children[0].Children[0].Label)
}

func TestDropdownCommand(t *testing.T) {
	cfg, out := fileMode(t)

	require.NoError(t, runDropdown(context.Background(), cfg))
	assert.Equal(t, "├ A\n│ ├ B\n│ │ ├ D\n│ ├ C\n", out.String())
}

func TestDropdownCommand_Subtree(t *testing.T) {
	cfg, out := fileMode(t)
	cfg.Tree.Root = "2"

	require.NoError(t, runDropdown(context.Background(), cfg))
	assert.Equal(t, "├ D\n", out.String())
}

func TestPathCommand(t *testing.T) {
	cfg, out := fileMode(t)

	require.NoError(t, runPath(context.Background(), cfg, "4"))
	assert.Equal(t, "A/B/D\n", out.String())

	out.Reset()
	jsonOut = true
	require.NoError(t, runPath(context.Background(), cfg, "4"))
	var bc domain.Breadcrumb
	require.NoError(t, json.Unmarshal(out.Bytes(), &bc))
	assert.Equal(t, []domain.BreadcrumbStep{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "4", Name: "D"}}, bc.Steps)

	assert.Error(t, runPath(context.Background(), cfg, "42"))
}

func TestDescendantsCommand(t *testing.T) {
	cfg, out := fileMode(t)

	require.NoError(t, runDescendants(context.Background(), cfg, "1"))
	assert.Equal(t, "2\n4\n3\n", out.String())

	out.Reset()
	jsonOut, descendantsBitmap = true, true
	require.NoError(t, runDescendants(context.Background(), cfg, "0"))
	var got descendantsOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []tree.ID{"1", "2", "4", "3"}, got.IDs)
	assert.Equal(t, uint64(4), got.Cardinality)
	assert.Equal(t, []uint32{1, 2, 3, 4}, got.Bitmap)
}

func TestParseTypeFlag(t *testing.T) {
	orig := typeFlag
	t.Cleanup(func() { typeFlag = orig })

	typeFlag = "books"
	ct, err := parseTypeFlag()
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryTypeBook, ct)
}
