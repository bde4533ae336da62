package calc

import "github.com/lemonberrylabs/rpncalc/pkg/types"

// precedence ranks operators. Parentheses sit below every operator so they
// stop the pop loop.
var precedence = map[string]int{
	"+": 1,
	"-": 1,
	"*": 2,
	"/": 2,
	"^": 2,
	"%": 2,
	"(": 0,
	")": 0,
}

// ToPostfix converts a validated infix token sequence to postfix order using
// the shunting-yard algorithm. Operators of equal precedence are popped
// before the new one is pushed, so every operator is left-associative,
// including "^".
func ToPostfix(tokens []Token) ([]Token, error) {
	output := make([]Token, 0, len(tokens))
	var stack []Token

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenNumber:
			output = append(output, tok)

		case TokenLParen:
			stack = append(stack, tok)

		case TokenRParen:
			found := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Kind == TokenLParen {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, types.NewParenthesesMissed()
			}

		default:
			prec, ok := precedence[tok.Value]
			if !ok {
				return nil, types.NewUnknownOperator(tok.Value)
			}
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.IsParen() {
					break
				}
				topPrec, ok := precedence[top.Value]
				if !ok {
					return nil, types.NewUnknownOperator(top.Value)
				}
				if topPrec < prec {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}

	for len(stack) > 0 {
		output = append(output, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return output, nil
}
