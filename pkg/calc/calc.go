package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// MaxExpressionLength is the maximum allowed length of a cleaned expression.
const MaxExpressionLength = 4096

// Result carries the intermediate stages of one evaluation alongside its value.
type Result struct {
	Cleaned string
	Tokens  []Token
	Postfix []Token
	Value   float64
}

// Clean removes ASCII whitespace and double quotes from a raw expression.
// Other characters, including non-ASCII spaces, are left for the lexer to
// reject.
func Clean(raw string) string {
	return strings.Map(func(r rune) rune {
		if isSpace(r) || r == '"' {
			return -1
		}
		return r
	}, raw)
}

// Evaluate cleans, validates, converts and evaluates a raw expression.
func Evaluate(raw string) (float64, error) {
	res, err := Run(raw)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// Run is Evaluate but also returns the stages produced along the way. On
// error the returned Result holds whatever stages completed.
func Run(raw string) (*Result, error) {
	res := &Result{Cleaned: Clean(raw)}

	tokens, err := Tokenize(res.Cleaned)
	if err != nil {
		return res, err
	}
	res.Tokens = tokens

	postfix, err := ToPostfix(tokens)
	if err != nil {
		return res, err
	}
	res.Postfix = postfix

	v, err := EvalPostfix(postfix)
	if err != nil {
		return res, err
	}
	res.Value = v
	return res, nil
}

// Tokenize validates a cleaned expression and returns its tokens.
func Tokenize(cleaned string) ([]Token, error) {
	if len(cleaned) > MaxExpressionLength {
		return nil, types.NewTooLong(MaxExpressionLength)
	}
	if cleaned == "" {
		return nil, types.NewNotAnExpression()
	}
	return NewLexer(cleaned).Tokenize()
}

// FormatValue renders a result the way a default C++ output stream does: %g
// with the given number of significant digits.
func FormatValue(v float64, precision int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', precision, 64)
}
