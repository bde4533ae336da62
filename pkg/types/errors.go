// Package types holds the error values shared by the calculator pipeline and
// the surfaces built on top of it.
package types

import (
	"errors"
	"fmt"
)

// Kind classifies a calculator error.
type Kind string

// Error kinds.
const (
	KindMalformedExpression Kind = "MalformedExpression"
	KindStructuralError     Kind = "StructuralError"
	KindUnknownOperator     Kind = "UnknownOperator"
)

// Report categories used by the command line front end.
const (
	CategoryInvalidArgument = "Invalid argument"
	CategoryRuntimeError    = "Runtime error"
)

// NoPos marks an error that is not tied to a character position.
const NoPos = -1

// CalcError is a terminal evaluation error with a kind, a message and,
// where applicable, the offending byte offset in the cleaned expression.
type CalcError struct {
	Kind    Kind
	Message string
	Pos     int
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	return e.Message
}

// HasKind returns true if the error is of the given kind.
func (e *CalcError) HasKind(kind Kind) bool {
	return e.Kind == kind
}

// Category returns the report prefix for the error. Empty input and broken
// parenthesis structure are runtime errors; everything else is an invalid
// argument.
func (e *CalcError) Category() string {
	if e.Kind == KindStructuralError || e.Message == msgNotAnExpression {
		return CategoryRuntimeError
	}
	return CategoryInvalidArgument
}

// ToMap converts the error into the JSON shape served by the HTTP API.
func (e *CalcError) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"kind":    string(e.Kind),
		"message": e.Message,
	}
	if e.Pos != NoPos {
		m["position"] = e.Pos
	}
	return m
}

// AsCalcError unwraps err into a *CalcError, if it holds one.
func AsCalcError(err error) (*CalcError, bool) {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

const msgNotAnExpression = "not an expression"

// Common error constructors.

// NewUnexpectedSymbol reports a character that is illegal at pos.
func NewUnexpectedSymbol(pos int) *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: fmt.Sprintf("unexpected symbol: %d", pos), Pos: pos}
}

// NewUnexpectedOperator reports an operator that is illegal at pos.
func NewUnexpectedOperator(pos int) *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: fmt.Sprintf("unexpected operator: %d", pos), Pos: pos}
}

// NewTrailingOperator reports an expression that ends in an operator.
func NewTrailingOperator() *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: "unexpected operator in the end of expression", Pos: NoPos}
}

// NewNotAnExpression reports input with no content.
func NewNotAnExpression() *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: msgNotAnExpression, Pos: NoPos}
}

// NewUnclosedParentheses reports an expression with open groups left at the end.
func NewUnclosedParentheses() *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: "unclosed parentheses", Pos: NoPos}
}

// NewInvalidNumber reports a numeric literal that does not parse as a float.
func NewInvalidNumber(literal string, pos int) *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: fmt.Sprintf("invalid number %q at position %d", literal, pos), Pos: pos}
}

// NewTooLong reports input over the maximum expression length.
func NewTooLong(max int) *CalcError {
	return &CalcError{Kind: KindMalformedExpression, Message: fmt.Sprintf("expression exceeds maximum length of %d characters", max), Pos: NoPos}
}

// NewParenthesesMissed reports a closing parenthesis with no open group during
// postfix conversion.
func NewParenthesesMissed() *CalcError {
	return &CalcError{Kind: KindStructuralError, Message: "parentheses missed", Pos: NoPos}
}

// NewStackUnderflow reports a postfix sequence that does not reduce to a value.
func NewStackUnderflow(op string) *CalcError {
	return &CalcError{Kind: KindStructuralError, Message: fmt.Sprintf("not enough operands for %q", op), Pos: NoPos}
}

// NewUnknownOperator reports an operator symbol missing from a lookup table.
func NewUnknownOperator(op string) *CalcError {
	return &CalcError{Kind: KindUnknownOperator, Message: fmt.Sprintf("invalid argument: %s", op), Pos: NoPos}
}
