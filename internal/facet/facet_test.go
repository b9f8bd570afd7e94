package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapAdd(t *testing.T) {
	t.Parallel()

	m := NewMap()
	m.Add(Clause{Field: "lemma", Value: "*a*"}, Clause{Field: "zitat", Value: "*a*"})
	m.Add(Clause{Field: "lemma", Value: "b*"})

	assert.Equal(t, 2, m.Len())
	v, ok := m.Get("lemma")
	assert.True(t, ok)
	assert.Equal(t, "*a* b*", v)

	_, ok = m.Get("def")
	assert.False(t, ok)
}

func TestQueries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		clauses    []Clause
		tokenCount int
		hidden     []string
		expected   []string
	}{
		{
			name:       "single token",
			clauses:    []Clause{{Field: "zitat", Value: "*imbis*"}, {Field: "lemma", Value: "*imbis*"}},
			tokenCount: 1,
			expected:   []string{"lemma:*imbis*", "zitat:*imbis*"},
		},
		{
			name: "several tokens are grouped",
			clauses: []Clause{
				{Field: "lemma", Value: "*a*"},
				{Field: "lemma", Value: "*b*"},
				{Field: "def", Value: "*b*"},
			},
			tokenCount: 3,
			expected:   []string{"def:(*b*)", "lemma:(*a* *b*)"},
		},
		{
			name:       "hidden fields",
			clauses:    []Clause{{Field: "sufo", Value: "a"}, {Field: "sufo_exakt", Value: "a"}, {Field: "lemma", Value: "a"}},
			tokenCount: 1,
			hidden:     []string{"sufo"},
			expected:   []string{"lemma:a"},
		},
		{
			name:       "empty",
			tokenCount: 0,
			expected:   []string{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := NewMap()
			m.Add(tc.clauses...)
			assert.Equal(t, tc.expected, m.Queries(tc.tokenCount, tc.hidden))
		})
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	contributions := [][]Clause{
		{{Field: "lemma", Value: "*imbis*"}, {Field: "zitat", Value: "*imbis*"}},
		nil,
		{{Field: "zitat", Value: `"guten tag"`}},
	}
	assert.Equal(t,
		[]string{"lemma:(*imbis*)", `zitat:(*imbis* "guten tag")`},
		Aggregate(contributions, 3, []string{"sufo"}),
	)
}
