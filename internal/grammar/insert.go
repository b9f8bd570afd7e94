package grammar

import (
	tt "github.com/fwb-online/qexpand/internal/types"
)

// InsertImplicitAnd adds an AND between an operand end (a search token or ')')
// and a following operand start (a search token, '(' or NOT).
func InsertImplicitAnd(tokens []tt.Token) []tt.Token {
	out := make([]tt.Token, 0, 2*len(tokens))
	for i, tok := range tokens {
		if i > 0 && endsOperand(tokens[i-1].Kind) && startsOperand(tok.Kind) {
			out = append(out, tt.Structural(tt.KindAnd))
		}
		out = append(out, tok)
	}
	return out
}

func endsOperand(k tt.Kind) bool {
	return k.Searchable() || k == tt.KindParenRight
}

func startsOperand(k tt.Kind) bool {
	return k.Searchable() || k == tt.KindParenLeft || k == tt.KindNot
}

// ScopeNot turns every "NOT x" into "NOT ( x )". The operand ends before the
// first AND, OR or ')' found at its own nesting depth, or at the end.
func ScopeNot(tokens []tt.Token) []tt.Token {
	p := newPlan(len(tokens))
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != tt.KindNot {
			continue
		}
		end := walkRight(tokens, i, tt.KindAnd, tt.KindOr)
		p.insert(end, tt.KindParenRight)
		p.insert(i+1, tt.KindParenLeft)
	}
	return p.apply(tokens)
}

// GroupAnd parenthesizes the operands of every AND, bounded by OR or the
// enclosing parens, so that AND binds tighter than OR.
func GroupAnd(tokens []tt.Token) []tt.Token {
	p := newPlan(len(tokens))
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != tt.KindAnd {
			continue
		}
		p.insert(walkRight(tokens, i, tt.KindOr), tt.KindParenRight)
		p.insert(walkLeft(tokens, i, tt.KindOr), tt.KindParenLeft)
	}
	return p.apply(tokens)
}

// walkRight returns the index of the first token right of from that is a ')'
// or one of stops at depth zero, or len(tokens) when there is none.
func walkRight(tokens []tt.Token, from int, stops ...tt.Kind) int {
	depth := 0
	for j := from + 1; j < len(tokens); j++ {
		k := tokens[j].Kind
		if depth == 0 && (k == tt.KindParenRight || oneOf(k, stops)) {
			return j
		}
		switch k {
		case tt.KindParenLeft:
			depth++
		case tt.KindParenRight:
			depth--
		}
	}
	return len(tokens)
}

// walkLeft returns the index just after the first token left of from that is
// a '(' or one of stops at depth zero, or 0 when there is none.
func walkLeft(tokens []tt.Token, from int, stops ...tt.Kind) int {
	depth := 0
	for j := from - 1; j >= 0; j-- {
		k := tokens[j].Kind
		if depth == 0 && (k == tt.KindParenLeft || oneOf(k, stops)) {
			return j + 1
		}
		switch k {
		case tt.KindParenRight:
			depth++
		case tt.KindParenLeft:
			depth--
		}
	}
	return 0
}

func oneOf(k tt.Kind, kinds []tt.Kind) bool {
	for _, c := range kinds {
		if k == c {
			return true
		}
	}
	return false
}

// plan collects structural tokens to insert into a sequence of n tokens.
// gaps[i] holds what goes right before token i; gaps[n] is appended at the end.
type plan struct {
	gaps [][]tt.Kind
}

func newPlan(n int) *plan {
	return &plan{gaps: make([][]tt.Kind, n+1)}
}

func (p *plan) insert(gap int, kind tt.Kind) {
	p.gaps[gap] = append(p.gaps[gap], kind)
}

// apply builds a new sequence from tokens and the planned insertions.
func (p *plan) apply(tokens []tt.Token) []tt.Token {
	size := len(tokens)
	for _, g := range p.gaps {
		size += len(g)
	}
	out := make([]tt.Token, 0, size)
	for i, tok := range tokens {
		out = appendStructural(out, p.gaps[i])
		out = append(out, tok)
	}
	return appendStructural(out, p.gaps[len(tokens)])
}

func appendStructural(out []tt.Token, kinds []tt.Kind) []tt.Token {
	for _, k := range kinds {
		out = append(out, tt.Structural(k))
	}
	return out
}
