// Package calc implements the arithmetic expression pipeline: validation into
// tokens, shunting-yard conversion to postfix, and stack evaluation.
package calc

import "strings"

// TokenKind represents the kind of a lexical token.
type TokenKind int

const (
	TokenNumber   TokenKind = iota // floating-point literal
	TokenOperator                  // + - * / ^ %
	TokenLParen                    // (
	TokenRParen                    // )
)

// Token represents a single lexical token.
type Token struct {
	Kind  TokenKind
	Value string // literal text
	Pos   int    // byte offset in the cleaned expression
}

// String returns a debug-friendly representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenOperator:
		return "OPERATOR"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	default:
		return "UNKNOWN"
	}
}

// IsParen reports whether the token is an opening or closing parenthesis.
func (t Token) IsParen() bool {
	return t.Kind == TokenLParen || t.Kind == TokenRParen
}

// FormatTokens joins token values with single spaces, e.g. "2 3 4 * +".
func FormatTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Value
	}
	return strings.Join(parts, " ")
}

func isDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || ch == '.'
}

func isOperator(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '^', '%':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isParen(ch byte) bool {
	return ch == '(' || ch == ')'
}
