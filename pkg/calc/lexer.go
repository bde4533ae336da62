package calc

import "github.com/lemonberrylabs/rpncalc/pkg/types"

// parseState tracks what the scanner saw last.
type parseState struct {
	notAnExpression bool
	inNumber        bool
	prevOp          bool
	prevOpen        bool
	prevClose       bool
}

// Lexer validates and tokenizes a cleaned expression string. A Lexer is used
// for a single Tokenize call.
type Lexer struct {
	input  string
	state  parseState
	depth  int
	number []byte
	numPos int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, state: parseState{notAnExpression: true}}
}

// Tokenize scans the entire input and returns the token sequence, or the
// first validation error found.
func (l *Lexer) Tokenize() ([]Token, error) {
	for pos := 0; pos < len(l.input); pos++ {
		ch := l.input[pos]
		var err error
		switch {
		case isDigit(ch):
			err = l.digit(ch, pos)
		case isOperator(ch):
			err = l.operator(ch, pos)
		case isParen(ch):
			if ch == '(' {
				err = l.open(pos)
			} else {
				err = l.close(pos)
			}
		default:
			err = types.NewUnexpectedSymbol(pos)
		}
		if err != nil {
			return nil, err
		}
	}

	l.flush()
	if l.state.notAnExpression {
		return nil, types.NewNotAnExpression()
	}
	if l.state.prevOp {
		return nil, types.NewTrailingOperator()
	}
	if l.depth > 0 {
		return nil, types.NewUnclosedParentheses()
	}
	return l.tokens, nil
}

func (l *Lexer) digit(ch byte, pos int) error {
	if l.state.prevClose {
		return types.NewUnexpectedSymbol(pos)
	}
	l.state.prevOpen = false
	l.state.notAnExpression = false
	l.state.prevOp = false
	if !l.state.inNumber {
		l.state.inNumber = true
		l.numPos = pos
	}
	l.number = append(l.number, ch)
	return nil
}

func (l *Lexer) operator(ch byte, pos int) error {
	l.state.prevOpen = false
	l.state.prevClose = false
	l.state.notAnExpression = false
	l.flush()
	if len(l.tokens) == 0 {
		return types.NewUnexpectedOperator(pos)
	}
	if l.state.prevOp {
		return types.NewUnexpectedSymbol(pos)
	}
	l.state.prevOp = true
	l.emit(TokenOperator, string(ch), pos)
	return nil
}

func (l *Lexer) open(pos int) error {
	// A number directly before "(" would be implicit multiplication.
	if l.state.inNumber {
		return types.NewUnexpectedSymbol(pos)
	}
	l.state.prevOpen = true
	l.depth++
	l.emit(TokenLParen, "(", pos)
	return nil
}

func (l *Lexer) close(pos int) error {
	switch {
	case l.state.prevOpen:
		return types.NewUnexpectedSymbol(pos)
	case l.state.prevOp:
		return types.NewUnexpectedOperator(pos)
	case l.depth == 0:
		return types.NewUnexpectedSymbol(pos)
	}
	l.state.prevClose = true
	l.depth--
	l.flush()
	l.emit(TokenRParen, ")", pos)
	return nil
}

// flush emits the pending number buffer, if any.
func (l *Lexer) flush() {
	if !l.state.inNumber {
		return
	}
	l.emit(TokenNumber, string(l.number), l.numPos)
	l.number = l.number[:0]
	l.state.inNumber = false
}

func (l *Lexer) emit(kind TokenKind, value string, pos int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Value: value, Pos: pos})
}
