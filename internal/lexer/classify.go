package lexer

import (
	"strings"
	"unicode/utf8"

	tt "github.com/fwb-online/qexpand/internal/types"
)

type classifier struct {
	fields tt.FieldSpec
	maxLen int
}

// classify turns one raw chunk into tokens: leading parens, the search token
// itself (unless its text is empty after cleaning) and trailing parens.
func (c classifier) classify(raw rawToken) ([]tt.Token, error) {
	body := []rune(raw.text)
	pos := raw.pos

	var out []tt.Token
	for len(body) > 0 && body[0] == '(' {
		out = append(out, tt.Token{Kind: tt.KindParenLeft, Raw: "(", Pos: pos})
		body = body[1:]
		pos++
	}

	n := surplusClose(body)
	closing := make([]tt.Token, 0, n)
	for i := len(body) - n; i < len(body); i++ {
		closing = append(closing, tt.Token{Kind: tt.KindParenRight, Raw: ")", Pos: pos + i})
	}
	body = body[:len(body)-n]

	if len(body) > 0 {
		tok, ok, err := c.classifyBody(body, pos)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, tok)
		}
	}
	return append(out, closing...), nil
}

// surplusClose returns how many bare ')' at the end of body have no matching
// '(' inside body.
func surplusClose(body []rune) int {
	idx := bare(body)
	depth := 0
	for _, i := range idx {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}

	trailing := 0
	for j := len(idx) - 1; j >= 0; j-- {
		if idx[j] != len(body)-1-trailing || body[idx[j]] != ')' {
			break
		}
		trailing++
	}
	return min(trailing, max(-depth, 0))
}

func (c classifier) classifyBody(body []rune, pos int) (tt.Token, bool, error) {
	text := string(body)
	if kind, ok := isOperator(text); ok {
		return tt.Token{Kind: kind, Raw: text, Pos: pos}, true, nil
	}

	field, value, err := splitField(body, pos)
	if err != nil {
		return tt.Token{}, false, err
	}

	tok := tt.Token{Raw: text, Pos: pos}
	if field != "" {
		fb, ok := c.fields.Lookup(field)
		if !ok {
			return tt.Token{}, false, tt.NewQueryError(tt.UnknownField, text, pos)
		}
		tok.Field = fb.Name
		tok.Boost = fb.Boost
	}

	switch {
	case strings.HasPrefix(value, `"`):
		if len(value) < 2 {
			return tt.Token{}, false, tt.NewQueryError(tt.UnterminatedPhrase, text, pos)
		}
		if !strings.HasSuffix(value, `"`) {
			return tt.Token{}, false, tt.NewQueryError(tt.MisplacedQuote, text, pos)
		}
		return c.phrase(tok, value[1:len(value)-1])
	case strings.HasPrefix(value, "/"):
		if len(value) < 2 || !strings.HasSuffix(value, "/") {
			return tt.Token{}, false, tt.NewQueryError(tt.UnterminatedRegex, text, pos)
		}
		return c.regex(tok, value[1:len(value)-1])
	case strings.Contains(value, `"`):
		// split has already rejected unclosed quotes
		return tt.Token{}, false, tt.NewQueryError(tt.MisplacedQuote, text, pos)
	default:
		return c.term(tok, value)
	}
}

// splitField separates an optional "field:" prefix from the token value.
func splitField(body []rune, pos int) (string, string, error) {
	var colons []int
	for _, i := range bare(body) {
		if body[i] == ':' {
			colons = append(colons, i)
		}
	}

	text := string(body)
	switch {
	case len(colons) == 0:
		return "", text, nil
	case colons[len(colons)-1] == len(body)-1:
		return "", "", tt.NewQueryError(tt.EmptyFieldValue, text, pos)
	case len(colons) > 1:
		return "", "", tt.NewQueryError(tt.MultipleColons, text, pos)
	case colons[0] == 0:
		return "", "", tt.NewQueryError(tt.UnknownField, text, pos)
	}
	return string(body[:colons[0]]), string(body[colons[0]+1:]), nil
}

func (c classifier) term(tok tt.Token, value string) (tt.Token, bool, error) {
	w := StripNoise(value)

	if f, ok := fuzziness(w); ok {
		tok.Kind = tt.KindFuzzy
		tok.Fuzziness = f
		w = strings.TrimPrefix(w[:len(w)-2], "^")
		w = strings.TrimSuffix(w, "$")
	} else {
		tok.Kind = tt.KindTerm
		if strings.HasPrefix(w, "^") {
			tok.MatchStart = true
			w = w[1:]
		}
		if strings.HasSuffix(w, "$") && !strings.HasSuffix(w, `\$`) {
			tok.MatchEnd = true
			w = w[:len(w)-1]
		}
	}

	if w == "" {
		return tt.Token{}, false, nil
	}
	if err := c.checkLength(tok, w); err != nil {
		return tt.Token{}, false, err
	}
	tok.Text = Escape(w)
	return tok, true, nil
}

func fuzziness(w string) (string, bool) {
	for _, f := range []string{"1", "2"} {
		if strings.HasSuffix(w, "~"+f) && !strings.HasSuffix(w, `\~`+f) {
			return f, true
		}
	}
	return "", false
}

// phrase classifies the inside of a quoted value. A single word is searched as an
// exact word; several words containing '?' or '*' form a complex phrase.
func (c classifier) phrase(tok tt.Token, inner string) (tt.Token, bool, error) {
	if len(strings.Fields(inner)) <= 1 {
		return c.exactWord(tok, StripNoise(strings.TrimSpace(inner)))
	}

	cleaned := CleanPhrase(inner)
	words := strings.Fields(cleaned)
	for _, w := range words {
		if err := c.checkLength(tok, w); err != nil {
			return tt.Token{}, false, err
		}
	}

	if strings.ContainsAny(cleaned, "?*") {
		if len(words) < 2 {
			return tt.Token{}, false, tt.NewQueryError(tt.SingleWordComplexPhrase, tok.Raw, tok.Pos)
		}
		tok.Kind = tt.KindComplexPhrase
		tok.Text = cleaned
		return tok, true, nil
	}

	switch len(words) {
	case 0:
		return tt.Token{}, false, nil
	case 1:
		return c.exactWord(tok, words[0])
	}
	tok.Kind = tt.KindPhrase
	tok.Text = cleaned
	return tok, true, nil
}

func (c classifier) exactWord(tok tt.Token, w string) (tt.Token, bool, error) {
	if w == "" {
		return tt.Token{}, false, nil
	}
	if err := c.checkLength(tok, w); err != nil {
		return tt.Token{}, false, err
	}
	tok.Kind = tt.KindTerm
	tok.MatchStart = true
	tok.MatchEnd = true
	tok.Text = Escape(w)
	return tok, true, nil
}

func (c classifier) regex(tok tt.Token, inner string) (tt.Token, bool, error) {
	if inner == "" {
		return tt.Token{}, false, nil
	}
	for _, w := range strings.Fields(inner) {
		if err := c.checkLength(tok, w); err != nil {
			return tt.Token{}, false, err
		}
	}
	tok.Kind = tt.KindRegex
	tok.Text = inner
	return tok, true, nil
}

func (c classifier) checkLength(tok tt.Token, word string) error {
	if utf8.RuneCountInString(word) > c.maxLen {
		return tt.NewQueryError(tt.TokenTooLong, tok.Raw, tok.Pos)
	}
	return nil
}
