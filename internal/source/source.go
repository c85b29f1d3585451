// Package source loads tree records from JSON documents.
package source

import (
	"fmt"
	"os"

	"bricklink/cattree/internal/tree"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	log "github.com/sirupsen/logrus"
)

// DefaultSelector matches the records of a {"categories": [...]} document.
const DefaultSelector = "$.categories[*]"

// LoadFile reads a JSON file and selects its records.
func LoadFile(path, selector string) ([]tree.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := Load(data, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return records, nil
}

// Load parses a JSON document and returns the objects matched by a JSONPath
// selector, in document order. Matches that are not objects are skipped.
func Load(data []byte, selector string) ([]tree.Record, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	root, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	matches := x.Get(root)
	records := make([]tree.Record, 0, len(matches))
	skipped := 0
	for _, m := range matches {
		obj, ok := m.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		records = append(records, tree.MapRecord(obj))
	}

	if skipped > 0 {
		log.Debugf("Skipped %d non-object matches for %s", skipped, selector)
	}
	return records, nil
}
