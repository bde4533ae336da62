package calc

import (
	"errors"
	"math"
	"strconv"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// BinaryFunc applies an operator to its left and right operands.
type BinaryFunc func(a, b float64) float64

// operators maps each operator symbol to its semantics. Division by zero and
// similar cases follow IEEE-754 and produce Inf or NaN.
var operators = map[string]BinaryFunc{
	"+": func(a, b float64) float64 { return a + b },
	"-": func(a, b float64) float64 { return a - b },
	"*": func(a, b float64) float64 { return a * b },
	"/": func(a, b float64) float64 { return a / b },
	"^": math.Pow,
	"%": math.Mod,
}

// EvalPostfix reduces a postfix token sequence to a single value with a
// value stack.
func EvalPostfix(postfix []Token) (float64, error) {
	stack := make([]float64, 0, len(postfix))

	for _, tok := range postfix {
		if tok.Kind == TokenNumber {
			v, err := strconv.ParseFloat(tok.Value, 64)
			// Literals too large for float64 evaluate to Inf.
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return 0, types.NewInvalidNumber(tok.Value, tok.Pos)
			}
			stack = append(stack, v)
			continue
		}

		fn, ok := operators[tok.Value]
		if !ok {
			return 0, types.NewUnknownOperator(tok.Value)
		}
		if len(stack) < 2 {
			return 0, types.NewStackUnderflow(tok.Value)
		}
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		stack = append(stack, fn(left, right))
	}

	if len(stack) == 0 {
		return 0, types.NewNotAnExpression()
	}
	return stack[len(stack)-1], nil
}
