package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RawCatalog is the upstream document: model identifier to metadata, in the
// order the keys appear in the JSON body.
type RawCatalog struct {
	entries *orderedmap.OrderedMap[string, Metadata]
}

// NewRawCatalog returns an empty catalog.
func NewRawCatalog() *RawCatalog {
	return &RawCatalog{entries: orderedmap.New[string, Metadata]()}
}

// ParseRawCatalog decodes a JSON object into a RawCatalog. Anything other
// than a JSON object is an error; the entry values are not inspected.
func ParseRawCatalog(data []byte) (*RawCatalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("body is not valid JSON")
	}

	rc := NewRawCatalog()
	if err := json.Unmarshal(trimmed, rc.entries); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return rc, nil
}

// Set adds or replaces an entry. New keys go to the end.
func (rc *RawCatalog) Set(id string, md Metadata) {
	rc.entries.Set(id, md)
}

// Len returns the number of entries.
func (rc *RawCatalog) Len() int {
	if rc == nil || rc.entries == nil {
		return 0
	}
	return rc.entries.Len()
}

// All iterates entries in document order.
func (rc *RawCatalog) All() iter.Seq2[string, Metadata] {
	return func(yield func(string, Metadata) bool) {
		if rc == nil || rc.entries == nil {
			return
		}
		for id, md := range rc.entries.FromOldest() {
			if !yield(id, md) {
				return
			}
		}
	}
}

// Metadata is one catalog entry, kept as raw JSON. Readers never fail: any
// shape they do not understand reads as absent.
type Metadata json.RawMessage

// MarshalJSON returns m verbatim.
func (m Metadata) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

// UnmarshalJSON stores a copy of data.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = append((*m)[:0], data...)
	return nil
}

// Fields decodes the entry's top-level keys. A value that is not a JSON
// object yields an empty set.
func (m Metadata) Fields() Fields {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m, &fields); err != nil {
		return nil
	}
	return Fields(fields)
}

// Fields is the decoded top level of one entry.
type Fields map[string]json.RawMessage

// Cost returns the numeric value of a per-token cost field, or 0 when the
// field is missing, null, zero, or not a number.
func (f Fields) Cost(name string) float64 {
	raw, ok := f[name]
	if !ok {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// Raw returns the JSON of a field and whether the key is present.
// A present key with a null value returns ("null", true).
func (f Fields) Raw(name string) (json.RawMessage, bool) {
	raw, ok := f[name]
	return raw, ok
}
