package types

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a query token.
type Kind int

const (
	KindTerm          Kind = iota // plain word, optionally anchored with ^ and $
	KindPhrase                    // "multi word phrase"
	KindComplexPhrase             // "phrase with wild?cards*"
	KindRegex                     // /regex/
	KindFuzzy                     // word~1 or word~2
	KindAnd                       // AND
	KindOr                        // OR
	KindNot                       // NOT
	KindParenLeft                 // (
	KindParenRight                // )
)

func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "Term"
	case KindPhrase:
		return "Phrase"
	case KindComplexPhrase:
		return "ComplexPhrase"
	case KindRegex:
		return "Regex"
	case KindFuzzy:
		return "Fuzzy"
	case KindAnd:
		return "AND"
	case KindOr:
		return "OR"
	case KindNot:
		return "NOT"
	case KindParenLeft:
		return "("
	case KindParenRight:
		return ")"
	default:
		return "Unknown"
	}
}

// Searchable reports whether the kind carries search text.
func (k Kind) Searchable() bool {
	return k <= KindFuzzy
}

// Operator reports whether the kind is one of AND, OR, NOT.
func (k Kind) Operator() bool {
	return k == KindAnd || k == KindOr || k == KindNot
}

// Token is a single classified element of a query.
type Token struct {
	Kind Kind

	Field string // "" when the token is not scoped to a field
	Boost string // weight of Field taken from the field spec

	MatchStart bool   // leading ^: the match must start with Text
	MatchEnd   bool   // trailing $: the match must end with Text
	Fuzziness  string // "1" or "2" for KindFuzzy

	Text string // escaped literal without markers, quotes or slashes
	Raw  string // token as typed by the user
	Pos  int    // rune offset of Raw in the query
}

// Scoped reports whether the token is restricted to a single field.
func (t Token) Scoped() bool { return t.Field != "" }

func (t Token) String() string {
	if !t.Kind.Searchable() {
		return t.Kind.String()
	}
	if t.Scoped() {
		return fmt.Sprintf("%s(%s:%s)", t.Kind, t.Field, t.Text)
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Structural returns a token that is inserted by the normalizer, not typed by users.
func Structural(kind Kind) Token {
	return Token{Kind: kind, Raw: kind.String(), Pos: -1}
}

// FieldBoost is one "name^weight" entry of a query field spec.
type FieldBoost struct {
	Name  string
	Boost string
}

// FieldSpec is the ordered list of fields that can be searched, with their weights.
type FieldSpec []FieldBoost

// ParseFieldSpec parses a whitespace separated "field^weight" list.
// An entry without a weight gets the weight "1".
func ParseFieldSpec(spec string) (FieldSpec, error) {
	var fields FieldSpec
	for _, entry := range strings.Fields(spec) {
		name, boost, found := strings.Cut(entry, "^")
		if name == "" {
			return nil, fmt.Errorf("invalid field spec entry %q", entry)
		}
		if !found || boost == "" {
			boost = "1"
		}
		fields = append(fields, FieldBoost{Name: name, Boost: boost})
	}
	return fields, nil
}

// Lookup returns the entry for the named field.
func (s FieldSpec) Lookup(name string) (FieldBoost, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldBoost{}, false
}

// String renders the spec back to its "field^weight ..." form.
func (s FieldSpec) String() string {
	return s.WithSuffix("")
}

// WithSuffix renders the spec with suffix appended to every field name.
func (s FieldSpec) WithSuffix(suffix string) string {
	parts := make([]string, 0, len(s))
	for _, f := range s {
		parts = append(parts, f.Name+suffix+"^"+f.Boost)
	}
	return strings.Join(parts, " ")
}

// ParserMode tells the search backend which query parser the main query needs.
type ParserMode int

const (
	ParserDefault ParserMode = iota
	ParserComplexPhrase
)

func (m ParserMode) String() string {
	if m == ParserComplexPhrase {
		return "complexPhrase"
	}
	return "default"
}

func (m ParserMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ParserMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "default":
		*m = ParserDefault
	case "complexPhrase":
		*m = ParserComplexPhrase
	default:
		return fmt.Errorf("unknown parser mode %q", text)
	}
	return nil
}

// Bundle is the result of expanding one query.
type Bundle struct {
	MainQuery       string     `json:"q" yaml:"q"`
	HighlightQuery  string     `json:"hl_q" yaml:"hl_q"`
	QueryFields     string     `json:"qf" yaml:"qf"`
	HighlightFields string     `json:"hl_fl" yaml:"hl_fl"`
	ParserMode      ParserMode `json:"parser_mode" yaml:"parser_mode"`
	FacetQueries    []string   `json:"facet_queries" yaml:"facet_queries"`
}
