package tree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropdown(t *testing.T) {
	entries, err := BuildIndex(sampleRecords(), DefaultOptions()).PlaneTree("0")
	require.NoError(t, err)

	got := Dropdown(entries, "name")
	want := []Option{
		{ID: "1", Label: "├ A"},
		{ID: "2", Label: "│ ├ B"},
		{ID: "4", Label: "│ │ ├ D"},
		{ID: "3", Label: "│ ├ C"},
	}
	assert.Equal(t, want, got)
}

func TestDropdown_MissingNameField(t *testing.T) {
	entries := []Entry{{ID: "1", Depth: 1, Record: MapRecord{"id": 1}}}
	assert.Equal(t, "│ ├ ", Dropdown(entries, "title")[0].Label)
}

func TestEntryIDs(t *testing.T) {
	entries, err := BuildIndex(sampleRecords(), DefaultOptions()).PlaneTree("0")
	require.NoError(t, err)
	assert.Equal(t, []ID{"1", "2", "4", "3"}, EntryIDs(entries))
}

func TestMenu(t *testing.T) {
	nodes, err := BuildIndex(sampleRecords(), DefaultOptions()).Tree("0")
	require.NoError(t, err)

	menu, err := Menu(nodes, "name", "/catalog/{id}")
	require.NoError(t, err)

	want := []MenuItem{{
		Label: "A",
		URL:   "/catalog/1",
		Children: []MenuItem{
			{Label: "B", URL: "/catalog/2", Children: []MenuItem{{Label: "D", URL: "/catalog/4"}}},
			{Label: "C", URL: "/catalog/3"},
		},
	}}
	assert.Equal(t, want, menu)
}

func TestMenu_QueryTemplate(t *testing.T) {
	nodes := []*Node{{ID: "332.124", Record: MapRecord{"name": "Train"}}}

	menu, err := Menu(nodes, "name", "/catalogList.asp?catType=P&catString={id}")
	require.NoError(t, err)
	assert.Equal(t, "/catalogList.asp?catType=P&catString=332.124", menu[0].URL)
}

func TestMenu_BadTemplate(t *testing.T) {
	_, err := Menu(nil, "name", "/catalog/{id")
	assert.Error(t, err)
}

func TestBitmap(t *testing.T) {
	bm, err := Bitmap([]ID{"2", "4", "3", "4"})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), bm.GetCardinality())
	assert.True(t, bm.Contains(4))
	assert.False(t, bm.Contains(1))

	_, err = Bitmap([]ID{"332.124"})
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestFingerprint(t *testing.T) {
	opts := DefaultOptions()
	a := Fingerprint(sampleRecords(), opts)
	assert.Equal(t, a, Fingerprint(sampleRecords(), opts))

	renamed := sampleRecords()
	renamed[3] = MapRecord{"id": 4, "parent_id": 2, "name": "D2"}
	assert.NotEqual(t, a, Fingerprint(renamed, opts))

	moved := sampleRecords()
	moved[3] = MapRecord{"id": 4, "parent_id": 3, "name": "D"}
	assert.NotEqual(t, a, Fingerprint(moved, opts))

	// Unaddressable records do not contribute.
	withJunk := append(sampleRecords(), MapRecord{"name": "no id"})
	assert.Equal(t, a, Fingerprint(withJunk, opts))

	// Settings that change the built output change the fingerprint.
	rooted := opts
	rooted.Root = "2"
	assert.NotEqual(t, a, Fingerprint(sampleRecords(), rooted))
	shallow := opts
	shallow.MaxDepth = 1
	assert.NotEqual(t, a, Fingerprint(sampleRecords(), shallow))
	assert.NotEqual(t, a, Fingerprint(sampleRecords(), opts, "/menu/{id}"))
	assert.Equal(t,
		Fingerprint(sampleRecords(), opts, "/menu/{id}"),
		Fingerprint(sampleRecords(), opts, "/menu/{id}"))
}

func TestRender(t *testing.T) {
	nodes, err := BuildIndex(sampleRecords(), DefaultOptions()).Tree("0")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nodes, DefaultRenderOptions()))
	assert.Equal(t, ""+
		"└── A [1]\n"+
		"    ├── B [2]\n"+
		"    │   └── D [4]\n"+
		"    └── C [3]\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, nodes, RenderOptions{MaxDepth: 2}))
	assert.Equal(t, ""+
		"└── A\n"+
		"    ├── B\n"+
		"    └── C\n", buf.String())
}
