/*
Package grammar validates a token sequence and makes its structure explicit.

The target query language has no operator precedence, so the normalizer turns

	a b OR NOT c

into

	(a AND b) OR NOT (c)

in the following steps:

 1. CheckParens rejects unbalanced and empty parentheses.
 2. CheckOperators rejects AND/OR at the edges, NOT at the end and operators
    without a valid neighbour.
 3. InsertImplicitAnd adds the AND users leave out between two operands.
 4. ScopeNot parenthesizes the operand of every NOT.
 5. GroupAnd, only when the query contains an OR, parenthesizes both operands
    of every AND so that AND binds tighter than OR.

Steps 4 and 5 scan the operators from the last to the first one. Each scan
records where structural parens go and a fresh sequence is built from that
plan; the input slice is never modified.
*/
package grammar

import (
	tt "github.com/fwb-online/qexpand/internal/types"
)

// Normalize runs all validation and rewriting steps on tokens.
func Normalize(tokens []tt.Token) ([]tt.Token, error) {
	if err := CheckParens(tokens); err != nil {
		return nil, err
	}
	if err := CheckOperators(tokens); err != nil {
		return nil, err
	}

	out := InsertImplicitAnd(tokens)
	out = ScopeNot(out)
	if Contains(out, tt.KindOr) {
		out = GroupAnd(out)
	}
	return out, nil
}

// CheckParens verifies that every ')' closes an earlier '(' and that no group is empty.
func CheckParens(tokens []tt.Token) error {
	var stack []tt.Token
	for i, tok := range tokens {
		switch tok.Kind {
		case tt.KindParenLeft:
			stack = append(stack, tok)
		case tt.KindParenRight:
			if len(stack) == 0 {
				return parenError(tok)
			}
			if tokens[i-1].Kind == tt.KindParenLeft {
				return parenError(tok)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return parenError(stack[len(stack)-1])
	}
	return nil
}

func parenError(tok tt.Token) error {
	return tt.NewQueryError(tt.UnbalancedParens, tok.Raw, tok.Pos)
}

// CheckOperators verifies the neighbours of every operator.
func CheckOperators(tokens []tt.Token) error {
	last := len(tokens) - 1
	for i, tok := range tokens {
		if !tok.Kind.Operator() {
			continue
		}
		andOr := tok.Kind == tt.KindAnd || tok.Kind == tt.KindOr

		if (i == 0 && andOr) || i == last {
			return operatorError(tok)
		}
		if i == 0 {
			continue
		}

		prev, next := tokens[i-1].Kind, tokens[i+1].Kind
		validPrev := prev.Searchable() || prev == tt.KindParenRight
		validNext := next.Searchable() || next == tt.KindParenLeft || (andOr && next == tt.KindNot)
		if (andOr && !validPrev) || !validNext {
			return operatorError(tok)
		}
	}
	return nil
}

func operatorError(tok tt.Token) error {
	return tt.NewQueryError(tt.MisplacedOperator, tok.Raw, tok.Pos)
}

// Contains reports whether any token is of the given kind.
func Contains(tokens []tt.Token, kind tt.Kind) bool {
	for _, tok := range tokens {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}
