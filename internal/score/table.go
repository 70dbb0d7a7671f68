// Package score maps identifier prefixes to priority scores.
//
// A Table is built from an ordered priority list such as
// ["UBERON", "ZFA=0.5", "CL"]: each entry is a prefix with an optional
// explicit score. Entries without a score get an implicit one equal to the
// list length minus their index, so earlier entries rank higher. Prefixes
// that are not listed score Minimum and never win against a listed one.
package score

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/vocabulary"
)

// Minimum is the score of any prefix absent from a table
var Minimum = math.Inf(-1)

// Entry is one configured prefix
type Entry struct {
	Prefix   string  `json:"prefix" yaml:"prefix"`
	Score    float64 `json:"score" yaml:"score"`
	Explicit bool    `json:"explicit" yaml:"explicit"` // score given as PREFIX=SCORE
}

// Table scores identifiers by prefix for one annotation kind, or for
// representative selection
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable builds a table. Each prefix may appear once.
func NewTable(option string, entries ...Entry) (*Table, error) {
	t := &Table{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		prefix := NormalizePrefix(e.Prefix)
		if prefix == "" {
			return nil, errors.NewConfigurationError(option, e.Prefix, "empty prefix")
		}
		if _, dup := t.index[prefix]; dup {
			return nil, errors.NewConfigurationError(option, e.Prefix, "prefix listed more than once")
		}
		e.Prefix = prefix
		t.index[prefix] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// ParsePriorities parses an ordered PREFIX[=SCORE] list. option names the
// flag or config key the values came from and is used in errors.
func ParsePriorities(option string, raw []string) (*Table, error) {
	entries := make([]Entry, 0, len(raw))
	auto := float64(len(raw))
	for _, item := range raw {
		e, err := ParseEntry(option, item, auto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		auto--
	}
	return NewTable(option, entries...)
}

// ParseEntry parses PREFIX or PREFIX=SCORE. auto is the score used when
// none is given.
func ParseEntry(option, raw string, auto float64) (Entry, error) {
	prefix, value, explicit := strings.Cut(strings.TrimSpace(raw), "=")
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return Entry{}, errors.NewConfigurationError(option, raw, "empty prefix")
	}
	if !explicit {
		return Entry{Prefix: prefix, Score: auto}, nil
	}

	s, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(s) {
		return Entry{}, errors.WithHint(
			errors.NewConfigurationError(option, raw,
				"invalid score value for prefix "+prefix+": "+value),
			"scores are decimal numbers, e.g. UBERON=2.5")
	}
	return Entry{Prefix: prefix, Score: s, Explicit: true}, nil
}

// NormalizePrefix accepts "UBERON", "UBERON:", "UBERON_" or the OBO PURL
// namespace form and returns the bare prefix
func NormalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if rest, ok := strings.CutPrefix(p, vocabulary.OBOPurl); ok {
		return strings.TrimSuffix(rest, "_")
	}
	return strings.TrimSuffix(p, ":")
}

// Score returns the score of id and whether its prefix is listed.
// A nil table lists nothing.
func (t *Table) Score(id string) (float64, bool) {
	if t == nil {
		return Minimum, false
	}
	i, ok := t.index[vocabulary.Prefix(id)]
	if !ok {
		return Minimum, false
	}
	return t.entries[i].Score, true
}

// Entries returns the configured entries in priority-list order
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of configured prefixes
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Set holds the identity table and one table per annotation kind
type Set struct {
	Identity    *Table
	annotations map[string]*Table
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{annotations: make(map[string]*Table)}
}

// SetAnnotation registers the table for an annotation kind.
// Empty tables are ignored so that the kind is treated as unscored.
func (s *Set) SetAnnotation(kind string, t *Table) {
	if t.Len() == 0 {
		delete(s.annotations, kind)
		return
	}
	s.annotations[kind] = t
}

// Annotation returns the table for kind, or nil
func (s *Set) Annotation(kind string) *Table {
	return s.annotations[kind]
}

// AnnotationKinds lists the kinds with a table, sorted
func (s *Set) AnnotationKinds() []string {
	kinds := make([]string, 0, len(s.annotations))
	for k := range s.annotations {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// PrefixSet is a set of normalised prefixes
type PrefixSet map[string]struct{}

// NewPrefixSet builds a set from raw prefixes
func NewPrefixSet(prefixes ...string) PrefixSet {
	s := make(PrefixSet, len(prefixes))
	for _, p := range prefixes {
		if n := NormalizePrefix(p); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains reports whether the prefix of id is in the set
func (s PrefixSet) Contains(id string) bool {
	_, ok := s[vocabulary.Prefix(id)]
	return ok
}
