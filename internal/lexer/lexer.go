package lexer

import (
	"strings"
	"unicode/utf8"

	tt "github.com/fwb-online/qexpand/internal/types"
)

// DefaultMaxTokenLength is the longest word, in runes, a query may contain.
const DefaultMaxTokenLength = 50

// rawLengthFactor bounds a whitespace separated chunk, parens and quoted words
// included, to this many times the max token length.
const rawLengthFactor = 10

// Options controls tokenization.
type Options struct {
	MaxTokenLength int
}

func (o Options) maxTokenLength() int {
	if o.MaxTokenLength <= 0 {
		return DefaultMaxTokenLength
	}
	return o.MaxTokenLength
}

// rawToken is a whitespace separated chunk of the query before classification.
type rawToken struct {
	text string
	pos  int
}

// Tokenize splits query into classified tokens. Field prefixes are resolved
// against fields; a prefix naming a field that is not listed fails.
func Tokenize(query string, fields tt.FieldSpec, opts Options) ([]tt.Token, error) {
	src, offsets := addSpaces(query)

	raws, err := split(src, offsets)
	if err != nil {
		return nil, err
	}

	c := classifier{fields: fields, maxLen: opts.maxTokenLength()}
	tokens := make([]tt.Token, 0, len(raws))
	for _, raw := range raws {
		if utf8.RuneCountInString(raw.text) > rawLengthFactor*c.maxLen {
			return nil, tt.NewQueryError(tt.TokenTooLong, raw.text, raw.pos)
		}
		toks, err := c.classify(raw)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, toks...)
	}
	return tokens, nil
}

// glued lists the operator and paren combinations users tend to type without a space.
var glued = []struct {
	pattern string
	split   int // number of runes kept before the inserted space
}{
	{")(", 1},
	{"NOT(", 3},
	{"AND(", 3},
	{"OR(", 2},
	{")NOT", 1},
	{")AND", 1},
	{")OR", 1},
}

// addSpaces separates glued parens and operators. It returns the new runes and,
// for each of them, the rune offset in the original query.
func addSpaces(query string) ([]rune, []int) {
	in := []rune(query)
	out := make([]rune, 0, len(in))
	offsets := make([]int, 0, len(in))

	for i := 0; i < len(in); {
		matched := false
		for _, g := range glued {
			p := []rune(g.pattern)
			if !hasRunePrefix(in[i:], p) {
				continue
			}
			for k := 0; k < g.split; k++ {
				out = append(out, p[k])
				offsets = append(offsets, i+k)
			}
			out = append(out, ' ')
			offsets = append(offsets, i+g.split)
			i += g.split
			matched = true
			break
		}
		if !matched {
			out = append(out, in[i])
			offsets = append(offsets, i)
			i++
		}
	}
	return out, offsets
}

func hasRunePrefix(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

// split cuts src at whitespace, keeping quoted phrases and /regexes/ in one piece.
// A regex only opens when '/' is the first rune of the token body, that is after
// any leading parens and the field prefix.
func split(src []rune, offsets []int) ([]rawToken, error) {
	var raws []rawToken
	n := len(src)

	for i := 0; i < n; {
		if isWhitespace(src[i]) {
			i++
			continue
		}

		start := i
		bodyStart := i
		colonSeen := false
		inQuote, inRegex := false, false

	scan:
		for i < n {
			r := src[i]
			switch {
			case r == '\\' && i+1 < n:
				i += 2
				continue
			case inRegex:
				if r == '/' {
					inRegex = false
				}
			case inQuote:
				if r == '"' {
					inQuote = false
				}
			case isWhitespace(r):
				break scan
			case r == '"':
				inQuote = true
			case r == '/' && i == bodyStart:
				inRegex = true
			case r == '(' && i == bodyStart:
				bodyStart = i + 1
			case r == ':' && !colonSeen:
				colonSeen = true
				bodyStart = i + 1
			}
			i++
		}

		text := string(src[start:i])
		pos := offsets[start]
		if inQuote {
			return nil, tt.NewQueryError(tt.UnterminatedPhrase, text, pos)
		}
		if inRegex {
			return nil, tt.NewQueryError(tt.UnterminatedRegex, text, pos)
		}
		raws = append(raws, rawToken{text: text, pos: pos})
	}
	return raws, nil
}

// bare returns the indexes of unescaped runes of body that are outside quotes and regexes.
func bare(body []rune) []int {
	var idx []int
	inQuote, inRegex := false, false
	bodyStart := 0
	colonSeen := false
	for i := 0; i < len(body); i++ {
		r := body[i]
		switch {
		case r == '\\' && i+1 < len(body):
			i++
			continue
		case inRegex:
			if r == '/' {
				inRegex = false
			}
			continue
		case inQuote:
			if r == '"' {
				inQuote = false
			}
			continue
		case r == '"':
			inQuote = true
			continue
		case r == '/' && i == bodyStart:
			inRegex = true
			continue
		case r == ':' && !colonSeen:
			colonSeen = true
			bodyStart = i + 1
		}
		idx = append(idx, i)
	}
	return idx
}

func isOperator(s string) (tt.Kind, bool) {
	switch strings.TrimSpace(s) {
	case "AND":
		return tt.KindAnd, true
	case "OR":
		return tt.KindOr, true
	case "NOT":
		return tt.KindNot, true
	}
	return 0, false
}
