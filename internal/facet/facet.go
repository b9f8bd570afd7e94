// Package facet folds the facet contributions of single tokens into the
// facet queries of a whole search.
package facet

import (
	"sort"
	"strings"
)

// Clause is the facet value one token contributes to one field.
type Clause struct {
	Field string
	Value string
}

// Map accumulates clauses per field, keeping the order in which fields first appear.
type Map struct {
	order  []string
	values map[string]string
}

func NewMap() *Map {
	return &Map{values: make(map[string]string)}
}

// Add folds clauses into the map. A field that already has a value gets the new
// one appended with a single space, which the backend reads as an implicit AND.
func (m *Map) Add(clauses ...Clause) {
	for _, c := range clauses {
		prev, ok := m.values[c.Field]
		if !ok {
			m.order = append(m.order, c.Field)
			m.values[c.Field] = c.Value
			continue
		}
		m.values[c.Field] = prev + " " + c.Value
	}
}

// Get returns the accumulated value of field.
func (m *Map) Get(field string) (string, bool) {
	v, ok := m.values[field]
	return v, ok
}

func (m *Map) Len() int { return len(m.order) }

// Queries finalizes the map. Fields starting with one of the hidden prefixes are
// internal and left out. With a single token the value is used as is, otherwise
// it is parenthesized so that multi-term values stay grouped.
func (m *Map) Queries(tokenCount int, hidden []string) []string {
	queries := make([]string, 0, len(m.order))
	for _, field := range m.order {
		if isHidden(field, hidden) {
			continue
		}
		if tokenCount == 1 {
			queries = append(queries, field+":"+m.values[field])
		} else {
			queries = append(queries, field+":("+m.values[field]+")")
		}
	}
	sort.Strings(queries)
	return queries
}

func isHidden(field string, hidden []string) bool {
	for _, prefix := range hidden {
		if prefix != "" && strings.HasPrefix(field, prefix) {
			return true
		}
	}
	return false
}

// Aggregate folds the per-token contributions in order and finalizes them.
func Aggregate(contributions [][]Clause, tokenCount int, hidden []string) []string {
	m := NewMap()
	for _, clauses := range contributions {
		m.Add(clauses...)
	}
	return m.Queries(tokenCount, hidden)
}
