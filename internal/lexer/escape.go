package lexer

import (
	"strings"
	"unicode"
)

// noise holds punctuation and diacritic marks found in the legacy source texts.
// They carry no meaning for searching and are removed from terms and phrases.
const noise = "‒&<>′`″”∣%«»‛⅓⅙⅔·⅕#˄˚{}¼¾©@‚°=½§…℔₰¶⸗˺˹„“+–!;›‹.,’·‘'"

// phraseBrackets cannot be escaped inside a quoted phrase, so they are dropped there.
const phraseBrackets = "()[]"

// special characters of the target query language that must be escaped inside a term.
const special = `()[]|/~:^`

// StripNoise removes all noise characters from s.
func StripNoise(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(noise, r) {
			return -1
		}
		return r
	}, s)
}

// CleanPhrase strips noise and brackets from the inside of a phrase and collapses
// its whitespace to single spaces.
func CleanPhrase(s string) string {
	s = StripNoise(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(phraseBrackets, r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Escape backslash-escapes the special characters of s and a leading hyphen.
// Characters that are already escaped are kept as they are, so applying Escape
// twice gives the same result as applying it once.
func Escape(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' {
			b.WriteRune(r)
			if i+1 < len(rs) {
				i++
				b.WriteRune(rs[i])
			} else {
				// a lone trailing backslash would escape whatever follows the term
				b.WriteRune('\\')
			}
			continue
		}
		if strings.ContainsRune(special, r) || (i == 0 && r == '-') {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWhitespace(r rune) bool {
	return unicode.IsSpace(r)
}
