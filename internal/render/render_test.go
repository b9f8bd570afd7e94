package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwb-online/qexpand/internal/facet"
	tt "github.com/fwb-online/qexpand/internal/types"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	fields, err := tt.ParseFieldSpec("lemma^1000 def^70 zitat^50")
	require.NoError(t, err)
	return NewConfig(fields, "lemma, zitat", DefaultOptions())
}

func allFields(value string) []facet.Clause {
	return []facet.Clause{
		{Field: "lemma", Value: value},
		{Field: "def", Value: value},
		{Field: "zitat", Value: value},
	}
}

func TestRenderUnscoped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tok      tt.Token
		expected Fragments
	}{
		{
			name: "plain term",
			tok:  tt.Token{Kind: tt.KindTerm, Text: "imbis"},
			expected: Fragments{
				Main:      "imbis imbis* *imbis* +(artikel:*imbis* zitat:*imbis* sufo:*imbis*)",
				Highlight: "artikel_text:*imbis* zitat_text:*imbis* sufo_text:*imbis*",
				Facets:    allFields("*imbis*"),
			},
		},
		{
			name: "match start",
			tok:  tt.Token{Kind: tt.KindTerm, MatchStart: true, Text: "imbis"},
			expected: Fragments{
				Main:      "imbis imbis* +(artikel:imbis* zitat:imbis*)",
				Highlight: "artikel_text:imbis* zitat_text:imbis*",
				Facets:    allFields("imbis*"),
			},
		},
		{
			name: "match end",
			tok:  tt.Token{Kind: tt.KindTerm, MatchEnd: true, Text: "imbis"},
			expected: Fragments{
				Main:      "*imbis +(artikel:*imbis zitat:*imbis)",
				Highlight: "artikel_text:*imbis zitat_text:*imbis",
				Facets:    allFields("*imbis"),
			},
		},
		{
			name: "exact word",
			tok:  tt.Token{Kind: tt.KindTerm, MatchStart: true, MatchEnd: true, Text: "imbis"},
			expected: Fragments{
				Main:      "imbis +(artikel:imbis zitat:imbis)",
				Highlight: "artikel_text:imbis zitat_text:imbis",
				Facets:    allFields("imbis"),
			},
		},
		{
			name: "fuzzy",
			tok:  tt.Token{Kind: tt.KindFuzzy, Fuzziness: "2", Text: "imbis"},
			expected: Fragments{
				Main:      "imbis~2 +(artikel:imbis~2 zitat:imbis~2)",
				Highlight: "artikel_text:imbis~2 zitat_text:imbis~2",
				Facets:    allFields("imbis~2"),
			},
		},
		{
			name: "phrase",
			tok:  tt.Token{Kind: tt.KindPhrase, Text: "guten tag"},
			expected: Fragments{
				Main:      `"guten tag" +(artikel:"guten tag" zitat:"guten tag")`,
				Highlight: `artikel_text:"guten tag" zitat_text:"guten tag"`,
				Facets:    allFields(`"guten tag"`),
			},
		},
		{
			name: "complex phrase",
			tok:  tt.Token{Kind: tt.KindComplexPhrase, Text: "gut* tag"},
			expected: Fragments{
				Main: `_query_:"{!complexphrase}\"gut* tag\"" +(` +
					`_query_:"{!complexphrase}artikel:\"gut* tag\"" ` +
					`_query_:"{!complexphrase}zitat:\"gut* tag\"")`,
				Highlight: `_query_:"{!complexphrase}artikel_text:\"gut* tag\"" ` +
					`_query_:"{!complexphrase}zitat_text:\"gut* tag\""`,
				Facets: allFields(`"gut* tag"`),
			},
		},
		{
			name: "regex",
			tok:  tt.Token{Kind: tt.KindRegex, Text: "im.is"},
			expected: Fragments{
				Main:      "(artikel:/im.is/ zitat:/im.is/)",
				Highlight: "artikel_text:/im.is/ zitat_text:/im.is/",
				Facets:    allFields("/im.is/"),
			},
		},
	}

	c := testConfig(t)
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, c.Render(tc.tok, false))
		})
	}
}

func TestRenderScoped(t *testing.T) {
	t.Parallel()

	lemma := func(tok tt.Token) tt.Token {
		tok.Field, tok.Boost = "lemma", "1000"
		return tok
	}

	tests := []struct {
		name      string
		tok       tt.Token
		main      string
		highlight string
		facet     string
	}{
		{
			name:      "plain term",
			tok:       tt.Token{Kind: tt.KindTerm, Field: "zitat", Boost: "50", Text: "imbis"},
			main:      "zitat:(imbis imbis* *imbis*)^50",
			highlight: "zitat_text:*imbis*",
			facet:     "*imbis*",
		},
		{
			name:      "match start",
			tok:       lemma(tt.Token{Kind: tt.KindTerm, MatchStart: true, Text: "imbis"}),
			main:      "lemma:(imbis imbis*)^1000",
			highlight: "lemma_text:imbis*",
			facet:     "imbis*",
		},
		{
			name:      "match end",
			tok:       lemma(tt.Token{Kind: tt.KindTerm, MatchEnd: true, Text: "imbis"}),
			main:      "lemma:*imbis^1000",
			highlight: "lemma_text:*imbis",
			facet:     "*imbis",
		},
		{
			name:      "exact word",
			tok:       lemma(tt.Token{Kind: tt.KindTerm, MatchStart: true, MatchEnd: true, Text: "imbis"}),
			main:      "lemma:imbis^1000",
			highlight: "lemma_text:imbis",
			facet:     "imbis",
		},
		{
			name:      "fuzzy",
			tok:       lemma(tt.Token{Kind: tt.KindFuzzy, Fuzziness: "2", Text: "imbis"}),
			main:      "lemma:imbis~2^1000",
			highlight: "lemma_text:imbis~2",
			facet:     "imbis~2",
		},
		{
			name:      "phrase",
			tok:       lemma(tt.Token{Kind: tt.KindPhrase, Text: "guten tag"}),
			main:      `lemma:"guten tag"^1000`,
			highlight: `lemma_text:"guten tag"`,
			facet:     `"guten tag"`,
		},
		{
			name:      "regex",
			tok:       lemma(tt.Token{Kind: tt.KindRegex, Text: "im.is"}),
			main:      "lemma:/im.is/^1000",
			highlight: "lemma_text:/im.is/",
			facet:     "/im.is/",
		},
		{
			name:      "complex phrase",
			tok:       lemma(tt.Token{Kind: tt.KindComplexPhrase, Text: "gut* tag"}),
			main:      `_query_:"{!complexphrase}lemma:\"gut* tag\""^1000`,
			highlight: `_query_:"{!complexphrase}lemma_text:\"gut* tag\""`,
			facet:     `"gut* tag"`,
		},
	}

	c := testConfig(t)
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// scoped fragments never get the group parens
			f := c.Render(tc.tok, true)
			assert.Equal(t, tc.main, f.Main)
			assert.Equal(t, tc.highlight, f.Highlight)
			assert.Equal(t, []facet.Clause{{Field: tc.tok.Field, Value: tc.facet}}, f.Facets)
		})
	}
}

func TestRenderGrouped(t *testing.T) {
	t.Parallel()
	c := testConfig(t)

	term := c.Render(tt.Token{Kind: tt.KindTerm, MatchEnd: true, Text: "imbis"}, true)
	assert.Equal(t, "(*imbis +(artikel:*imbis zitat:*imbis))", term.Main)
	assert.Equal(t, "artikel_text:*imbis zitat_text:*imbis", term.Highlight)

	regex := c.Render(tt.Token{Kind: tt.KindRegex, Text: "a"}, true)
	assert.Equal(t, "(artikel:/a/ zitat:/a/)", regex.Main)
}

func TestRenderStructural(t *testing.T) {
	t.Parallel()
	c := testConfig(t)

	for _, kind := range []tt.Kind{tt.KindAnd, tt.KindOr, tt.KindNot, tt.KindParenLeft, tt.KindParenRight} {
		f := c.Render(tt.Structural(kind), true)
		assert.Equal(t, kind.String(), f.Main)
		assert.Empty(t, f.Highlight)
		assert.Empty(t, f.Facets)
	}
}

func TestRenderExact(t *testing.T) {
	t.Parallel()
	base := testConfig(t)
	c := base.WithExact()

	f := c.Render(tt.Token{Kind: tt.KindTerm, Text: "imbis"}, false)
	assert.Equal(t, "imbis +(artikel_exakt:imbis zitat_exakt:imbis)", f.Main)
	assert.Equal(t, "artikel_text_exakt:imbis zitat_text_exakt:imbis", f.Highlight)
	assert.Equal(t, []facet.Clause{
		{Field: "lemma_exakt", Value: "imbis"},
		{Field: "def_exakt", Value: "imbis"},
		{Field: "zitat_exakt", Value: "imbis"},
	}, f.Facets)

	f = c.Render(tt.Token{Kind: tt.KindTerm, Field: "lemma", Boost: "1000", Text: "imbis"}, false)
	assert.Equal(t, "+lemma_exakt:imbis^1000", f.Main)
	assert.Equal(t, "lemma_text_exakt:imbis", f.Highlight)

	f = c.Render(tt.Token{Kind: tt.KindPhrase, Field: "zitat", Boost: "50", Text: "guten tag"}, false)
	assert.Equal(t, `zitat_exakt:"guten tag"^50`, f.Main)

	assert.False(t, base.Exact(), "WithExact must not change its receiver")
	assert.True(t, c.Exact())
}

func TestConfigFields(t *testing.T) {
	t.Parallel()
	c := testConfig(t)

	assert.Equal(t, "lemma^1000 def^70 zitat^50", c.QueryFields())
	assert.Equal(t, "lemma,zitat", c.HighlightFields())
	assert.Equal(t, "lemma_exakt^1000 def_exakt^70 zitat_exakt^50", c.WithExact().QueryFields())
	assert.Equal(t, "lemma_exakt,zitat_exakt", c.WithExact().HighlightFields())

	empty := NewConfig(c.Fields(), "", DefaultOptions())
	assert.Equal(t, "", empty.HighlightFields())
}
