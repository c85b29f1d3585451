package tree

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Record is a flat record whose fields can be read by name.
//
// Field reports false when the record has no such field. Lookups are flat:
// "a.b" names a field called "a.b", not a nested path.
type Record interface {
	Field(name string) (any, bool)
}

// MapRecord adapts a decoded map (JSON object, SQL row map) to Record.
type MapRecord map[string]any

// Field implements Record.
func (m MapRecord) Field(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// StructRecord adapts an arbitrary struct to Record using reflection.
// A field matches by its Go name, its `tree` tag or its `json` tag.
type StructRecord struct {
	v reflect.Value
}

// Struct wraps v, which may be a struct or a pointer to one.
func Struct(v any) StructRecord {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return StructRecord{}
		}
		rv = rv.Elem()
	}
	return StructRecord{v: rv}
}

// Field implements Record.
func (s StructRecord) Field(name string) (any, bool) {
	if !s.v.IsValid() || s.v.Kind() != reflect.Struct || name == "" {
		return nil, false
	}
	t := s.v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name != name && tagName(f, "tree") != name && tagName(f, "json") != name {
			continue
		}
		fv := s.v.Field(i)
		if fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
			if fv.IsNil() {
				return nil, false
			}
			fv = fv.Elem()
		}
		return fv.Interface(), true
	}
	return nil, false
}

func tagName(f reflect.StructField, key string) string {
	tag, ok := f.Tag.Lookup(key)
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// Records converts a slice of concrete record types to []Record.
func Records[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Maps converts decoded maps to []Record.
func Maps(items []map[string]any) []Record {
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = MapRecord(item)
	}
	return out
}

// Get reads a field from rec. It never panics: nil records, nil pointers
// and nil values are all reported as absent.
func Get(rec Record, name string) (any, bool) {
	if rec == nil || name == "" {
		return nil, false
	}
	if rv := reflect.ValueOf(rec); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	v, ok := rec.Field(name)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// ID is a normalised record identifier. Integers, JSON numbers and their
// decimal string forms all normalise to the same ID.
type ID string

// ToID normalises v to an ID.
func ToID(v any) (ID, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case ID:
		return t, true
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return ID(strings.TrimSpace(s)), true
}

// Key is ToID without the ok flag; unconvertible values yield "".
func Key(v any) ID {
	id, _ := ToID(v)
	return id
}

func (id ID) String() string {
	return string(id)
}

// Int parses the ID as a base-10 integer.
func (id ID) Int() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}
