// Package render expands single query tokens into the clauses of the main
// query, the highlight query and the facet queries.
package render

import (
	"strings"

	"github.com/fwb-online/qexpand/internal/facet"
	tt "github.com/fwb-online/qexpand/internal/types"
)

// Fragments are the three outputs of one token.
type Fragments struct {
	Main      string
	Highlight string
	Facets    []facet.Clause
}

// Render expands tok. When grouped is set, the expansion of an unscoped token is
// parenthesized so that it binds as one operand of the surrounding operators.
func (c Config) Render(tok tt.Token, grouped bool) Fragments {
	switch tok.Kind {
	case tt.KindAnd, tt.KindOr, tt.KindNot, tt.KindParenLeft, tt.KindParenRight:
		return Fragments{Main: tok.Kind.String()}
	}

	v := c.variant(tok)
	if tok.Scoped() {
		return c.scoped(tok, v)
	}

	f := c.unscoped(tok, v)
	if grouped && tok.Kind != tt.KindRegex {
		f.Main = "(" + f.Main + ")"
	}
	return f
}

// variant is the per-kind shape of a search token.
type variant struct {
	words  []string // alternatives searched in the default field
	clause string   // value searched in a named field
	all    bool     // also search the spelling field
}

func (c Config) variant(tok tt.Token) variant {
	w := tok.Text
	switch tok.Kind {
	case tt.KindFuzzy:
		s := w + "~" + tok.Fuzziness
		return variant{words: []string{s}, clause: s}
	case tt.KindPhrase, tt.KindComplexPhrase:
		s := `"` + w + `"`
		return variant{words: []string{s}, clause: s}
	case tt.KindRegex:
		s := "/" + w + "/"
		return variant{words: []string{s}, clause: s}
	}

	if c.exact {
		return variant{words: []string{w}, clause: w}
	}
	switch {
	case tok.MatchStart && tok.MatchEnd:
		return variant{words: []string{w}, clause: w}
	case tok.MatchStart:
		return variant{words: []string{w, w + "*"}, clause: w + "*"}
	case tok.MatchEnd:
		return variant{words: []string{"*" + w}, clause: "*" + w}
	default:
		return variant{words: []string{w, w + "*", "*" + w + "*"}, clause: "*" + w + "*", all: true}
	}
}

func (c Config) unscoped(tok tt.Token, v variant) Fragments {
	d := c.opts.Defaults
	targets := []string{d.Article, d.Citation}
	if v.all && d.Spelling != "" {
		targets = append(targets, d.Spelling)
	}

	main := make([]string, 0, len(targets))
	hl := make([]string, 0, len(targets))
	for _, name := range targets {
		if tok.Kind == tt.KindComplexPhrase {
			main = append(main, complexPhrase(c.field(name), tok.Text))
			hl = append(hl, complexPhrase(c.highlightField(name), tok.Text))
			continue
		}
		main = append(main, c.field(name)+":"+v.clause)
		hl = append(hl, c.highlightField(name)+":"+v.clause)
	}

	f := Fragments{
		Highlight: strings.Join(hl, " "),
		Facets:    c.facets(tok, v.clause),
	}
	switch tok.Kind {
	case tt.KindRegex:
		f.Main = "(" + strings.Join(main, " ") + ")"
	case tt.KindComplexPhrase:
		f.Main = complexPhrase("", tok.Text) + " +(" + strings.Join(main, " ") + ")"
	default:
		f.Main = strings.Join(v.words, " ") + " +(" + strings.Join(main, " ") + ")"
	}
	return f
}

func (c Config) scoped(tok tt.Token, v variant) Fragments {
	name := c.field(tok.Field)
	boost := "^" + tok.Boost

	f := Fragments{
		Highlight: c.highlightField(tok.Field) + ":" + v.clause,
		Facets:    c.facets(tok, v.clause),
	}
	switch {
	case tok.Kind == tt.KindComplexPhrase:
		f.Main = complexPhrase(name, tok.Text) + boost
		f.Highlight = complexPhrase(c.highlightField(tok.Field), tok.Text)
	case tok.Kind == tt.KindTerm && c.exact:
		f.Main = "+" + name + ":" + v.clause + boost
	case len(v.words) > 1:
		f.Main = name + ":(" + strings.Join(v.words, " ") + ")" + boost
	default:
		f.Main = name + ":" + v.clause + boost
	}
	return f
}

// facets returns the contribution of tok: its own field when scoped, every
// query field otherwise.
func (c Config) facets(tok tt.Token, clause string) []facet.Clause {
	if tok.Scoped() {
		return []facet.Clause{{Field: c.field(tok.Field), Value: clause}}
	}
	clauses := make([]facet.Clause, 0, len(c.fields))
	for _, f := range c.fields {
		clauses = append(clauses, facet.Clause{Field: c.field(f.Name), Value: clause})
	}
	return clauses
}

// complexPhrase wraps a wildcard phrase into a nested query for the complex phrase parser.
func complexPhrase(field, phrase string) string {
	prefix := ""
	if field != "" {
		prefix = field + ":"
	}
	return `_query_:"{!complexphrase}` + prefix + `\"` + phrase + `\""`
}
