package model

import (
	"sort"
	"strings"
)

// RecordType identifies a kind of genealogical record. Values follow the
// GEDCOM tag names used as keys in the weight configuration.
type RecordType string

const (
	Individual RecordType = "indi"
	Family     RecordType = "fam"
	Source     RecordType = "sour"
	Media      RecordType = "media"
)

// RecordTypes lists the built-in record types in the order they are searched.
var RecordTypes = []RecordType{Individual, Family, Source, Media}

// ParseRecordType resolves a record type from its tag or its long name
// ("individual", "family", "source", "media", "obje").
func ParseRecordType(s string) (RecordType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indi", "individual":
		return Individual, true
	case "fam", "family":
		return Family, true
	case "sour", "source":
		return Source, true
	case "media", "obje":
		return Media, true
	}
	return "", false
}

// Fields maps a dotted field path (e.g. "event.place.name") to the text
// values found at that path. A path can hold several values, one per name,
// event or note.
type Fields map[string][]string

// Paths returns the field paths in sorted order.
func (f Fields) Paths() []string {
	paths := make([]string, 0, len(f))
	for path := range f {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a deep copy of the fields.
func (f Fields) Clone() Fields {
	clone := make(Fields, len(f))
	for path, values := range f {
		clone[path] = append([]string(nil), values...)
	}
	return clone
}

// Record is a structured genealogical record as supplied by a record provider.
type Record struct {
	Type   RecordType `json:"type" yaml:"type"`
	ID     string     `json:"id" yaml:"id"`
	Fields Fields     `json:"fields" yaml:"fields"`
}
