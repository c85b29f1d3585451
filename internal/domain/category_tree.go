package domain

import (
	"time"

	"bricklink/cattree/internal/tree"
)

// CategoryTree is a built, serialisable snapshot of one catalog tree.
type CategoryTree struct {
	CategoryType CategoryType    `json:"category_type"` // S, P, M, G, B
	Fingerprint  string          `json:"fingerprint"`   // identity of the source collection and build settings
	BuiltAt      time.Time       `json:"built_at"`
	Total        int             `json:"total"`   // categories reachable from the root
	Skipped      int             `json:"skipped"` // records without an identifier
	Dropdown     []tree.Option   `json:"dropdown"`
	Menu         []tree.MenuItem `json:"menu"`
}
