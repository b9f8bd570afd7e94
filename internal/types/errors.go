package types

import "fmt"

// ErrorKind enumerates the ways a query can be rejected.
type ErrorKind int

const (
	UnbalancedParens ErrorKind = iota + 1
	MisplacedOperator
	UnknownField
	EmptyFieldValue
	MultipleColons
	UnterminatedPhrase
	MisplacedQuote
	UnterminatedRegex
	SingleWordComplexPhrase
	TokenTooLong
	EmptyExpansion
)

// Category groups error kinds the way they are reported to users.
type Category int

const (
	CategorySyntax Category = iota + 1
	CategoryField
	CategoryPhrase
	CategoryLength
	CategoryResult
)

// User facing messages. Every error kind maps to exactly one of them.
const (
	MsgParentheses = "parentheses not correctly set"
	MsgOperators   = "operators not correctly set"
	MsgInvalid     = "query invalid"
	MsgTooLong     = "query too long"
)

var kindNames = map[ErrorKind]string{
	UnbalancedParens:        "unbalanced parentheses",
	MisplacedOperator:       "misplaced operator",
	UnknownField:            "unknown field",
	EmptyFieldValue:         "empty field value",
	MultipleColons:          "multiple colons",
	UnterminatedPhrase:      "unterminated phrase",
	MisplacedQuote:          "misplaced quote",
	UnterminatedRegex:       "unterminated regex",
	SingleWordComplexPhrase: "single word complex phrase",
	TokenTooLong:            "token too long",
	EmptyExpansion:          "empty expansion",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown error"
}

func (k ErrorKind) Category() Category {
	switch k {
	case UnbalancedParens, MisplacedOperator:
		return CategorySyntax
	case UnknownField, EmptyFieldValue, MultipleColons:
		return CategoryField
	case UnterminatedPhrase, MisplacedQuote, UnterminatedRegex, SingleWordComplexPhrase:
		return CategoryPhrase
	case TokenTooLong:
		return CategoryLength
	default:
		return CategoryResult
	}
}

// Message returns the user facing message for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case UnbalancedParens:
		return MsgParentheses
	case MisplacedOperator:
		return MsgOperators
	case TokenTooLong:
		return MsgTooLong
	default:
		return MsgInvalid
	}
}

// QueryError is returned for every query that cannot be expanded.
// Token and Pos point at the offending input when it is known; Pos is -1 otherwise.
type QueryError struct {
	Kind  ErrorKind
	Token string
	Pos   int
}

func NewQueryError(kind ErrorKind, token string, pos int) *QueryError {
	return &QueryError{Kind: kind, Token: token, Pos: pos}
}

func (e *QueryError) Error() string {
	return e.Kind.Message()
}

// Detail describes the error for logs, including the offending token.
func (e *QueryError) Detail() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %s", e.Kind.Message(), e.Kind)
	}
	return fmt.Sprintf("%s: %s %q at %d", e.Kind.Message(), e.Kind, e.Token, e.Pos)
}

// Is matches any QueryError of the same kind, so the sentinels below work with errors.Is.
func (e *QueryError) Is(target error) bool {
	t, ok := target.(*QueryError)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnbalancedParens        = &QueryError{Kind: UnbalancedParens, Pos: -1}
	ErrMisplacedOperator       = &QueryError{Kind: MisplacedOperator, Pos: -1}
	ErrUnknownField            = &QueryError{Kind: UnknownField, Pos: -1}
	ErrEmptyFieldValue         = &QueryError{Kind: EmptyFieldValue, Pos: -1}
	ErrMultipleColons          = &QueryError{Kind: MultipleColons, Pos: -1}
	ErrUnterminatedPhrase      = &QueryError{Kind: UnterminatedPhrase, Pos: -1}
	ErrMisplacedQuote          = &QueryError{Kind: MisplacedQuote, Pos: -1}
	ErrUnterminatedRegex       = &QueryError{Kind: UnterminatedRegex, Pos: -1}
	ErrSingleWordComplexPhrase = &QueryError{Kind: SingleWordComplexPhrase, Pos: -1}
	ErrTokenTooLong            = &QueryError{Kind: TokenTooLong, Pos: -1}
	ErrEmptyExpansion          = &QueryError{Kind: EmptyExpansion, Pos: -1}
)
