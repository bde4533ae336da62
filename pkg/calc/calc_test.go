package calc

import (
	"math"
	"sync"
	"testing"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

func TestArithmeticExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{".5", 0.5},
		{"1.", 1},
		{"1+2", 3},
		{"10-3", 7},
		{"4*5", 20},
		{"10/4", 2.5},
		{"10%3", 1},
		{"2^10", 1024},
		{"2+3*4", 14},         // precedence
		{"(2+3)*4", 20},       // parens
		{"8-3-2", 3},          // left-associative
		{"16/4/2", 2},         // left-associative
		{"2^3^2", 64},         // "^" is left-associative too
		{"(3*(1+2))/2", 4.5},  // nested groups
		{"((7))", 7},          // redundant groups
		{"1.5+2.5", 4},        // float math
		{"7.5%2", 1.5},        // float remainder
		{"2*3%4", 2},          // equal precedence, left to right
		{"100-2^3*2", 84},     // mixed
		{"(1+2)*(3+4)-5", 16}, // sibling groups
		{"  2 + 3  ", 5},      // whitespace is stripped
		{"\"2+3\"", 5},        // quotes are stripped
		{"2\t*\n3", 6},        // any whitespace
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Evaluate(tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMalformedExpressions(t *testing.T) {
	tests := []struct {
		input   string
		message string
		pos     int
	}{
		{"", "not an expression", types.NoPos},
		{"   ", "not an expression", types.NoPos},
		{"(", "not an expression", types.NoPos},
		{"2++3", "unexpected symbol: 2", 2},
		{"2*-3", "unexpected symbol: 2", 2},
		{"+2", "unexpected operator: 0", 0},
		{"-2", "unexpected operator: 0", 0},
		{"(2+3", "unclosed parentheses", types.NoPos},
		{"((2)", "unclosed parentheses", types.NoPos},
		{"2+3)", "unexpected symbol: 3", 3},
		{"()", "unexpected symbol: 1", 1},
		{"2(3)", "unexpected symbol: 1", 1},
		{"(2)3", "unexpected symbol: 3", 3},
		{"(1)(2)", "unexpected symbol: 4", 4},
		{"(2+)", "unexpected operator: 3", 3},
		{"2+", "unexpected operator in the end of expression", types.NoPos},
		{"2+(", "unexpected operator in the end of expression", types.NoPos},
		{"2a", "unexpected symbol: 1", 1},
		{"x", "unexpected symbol: 0", 0},
		{"2 + 3 = 5", "unexpected symbol: 3", 3},
		{"1.2.3", `invalid number "1.2.3" at position 0`, 0},
		{"4*.", `invalid number "." at position 2`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Evaluate(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			ce, ok := err.(*types.CalcError)
			if !ok {
				t.Fatalf("expected CalcError, got %T", err)
			}
			if !ce.HasKind(types.KindMalformedExpression) {
				t.Errorf("expected MalformedExpression, got %s", ce.Kind)
			}
			if ce.Message != tt.message {
				t.Errorf("got message %q, want %q", ce.Message, tt.message)
			}
			if ce.Pos != tt.pos {
				t.Errorf("got position %d, want %d", ce.Pos, tt.pos)
			}
		})
	}
}

func TestPositionsAreInCleanedInput(t *testing.T) {
	_, err := Evaluate("2 + + 3")
	ce, ok := types.AsCalcError(err)
	if !ok {
		t.Fatalf("expected CalcError, got %v", err)
	}
	if ce.Pos != 2 {
		t.Errorf("got position %d, want 2", ce.Pos)
	}
}

func TestIEEESpecialResults(t *testing.T) {
	tests := []struct {
		input string
		check func(float64) bool
	}{
		{"1/0", func(v float64) bool { return math.IsInf(v, 1) }},
		{"0-1/0", func(v float64) bool { return math.IsInf(v, -1) }},
		{"0/0", math.IsNaN},
		{"5%0", math.IsNaN},
		{"0^(0-1)", func(v float64) bool { return math.IsInf(v, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Evaluate(tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}
			if !tt.check(got) {
				t.Errorf("unexpected result %v", got)
			}
		})
	}
}

func TestCleaningIsIdempotent(t *testing.T) {
	a, err := Evaluate("  2 + 3  ")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	b, err := Evaluate("2+3")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if a != b {
		t.Errorf("got %v and %v", a, b)
	}
	if got := Clean(Clean(` "1 + 2" `)); got != "1+2" {
		t.Errorf("Clean = %q", got)
	}
	if got := Clean("1\t+\r\n2\v\f"); got != "1+2" {
		t.Errorf("Clean = %q", got)
	}
}

func TestNonASCIISpaceIsRejected(t *testing.T) {
	_, err := Evaluate("2\u00a0+3")
	ce, ok := types.AsCalcError(err)
	if !ok || !ce.HasKind(types.KindMalformedExpression) {
		t.Fatalf("expected MalformedExpression, got %v", err)
	}
	if ce.Pos != 1 {
		t.Errorf("got position %d, want 1", ce.Pos)
	}
}

func TestSequentialCallsDoNotLeakState(t *testing.T) {
	bad := []string{"(2+", "2+", "(", "2(", "1)", "()"}
	for _, in := range bad {
		if _, err := Evaluate(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
		got, err := Evaluate("4*2")
		if err != nil {
			t.Fatalf("after %q: eval error: %v", in, err)
		}
		if got != 8 {
			t.Fatalf("after %q: got %v, want 8", in, got)
		}
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if v, err := Evaluate("(1+2)*3"); err != nil || v != 9 {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := Evaluate("(1+2"); err == nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	if len(errs) > 0 {
		t.Fatalf("%d evaluations returned the wrong outcome", len(errs))
	}
}

func TestRunStages(t *testing.T) {
	res, err := Run("2 + 3 * 4")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if res.Cleaned != "2+3*4" {
		t.Errorf("cleaned = %q", res.Cleaned)
	}
	if got := FormatTokens(res.Tokens); got != "2 + 3 * 4" {
		t.Errorf("tokens = %q", got)
	}
	if got := FormatTokens(res.Postfix); got != "2 3 4 * +" {
		t.Errorf("postfix = %q", got)
	}
	if res.Value != 14 {
		t.Errorf("value = %v", res.Value)
	}

	res, err = Run("(1+2")
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Cleaned != "(1+2" || res.Postfix != nil {
		t.Errorf("unexpected partial result %+v", res)
	}
}

func TestMaxExpressionLength(t *testing.T) {
	long := make([]byte, MaxExpressionLength+1)
	for i := range long {
		long[i] = '1'
	}
	_, err := Evaluate(string(long))
	ce, ok := types.AsCalcError(err)
	if !ok || !ce.HasKind(types.KindMalformedExpression) {
		t.Fatalf("expected MalformedExpression, got %v", err)
	}

	_, err = Tokenize(string(long))
	ce, ok = types.AsCalcError(err)
	if !ok || !ce.HasKind(types.KindMalformedExpression) {
		t.Fatalf("Tokenize: expected MalformedExpression, got %v", err)
	}

	if _, err := Tokenize(string(long[:MaxExpressionLength])); err != nil {
		t.Errorf("Tokenize at the limit: %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	a, b := 0.1, 0.2
	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{14, 6, "14"},
		{4.5, 6, "4.5"},
		{1.0 / 3.0, 6, "0.333333"},
		{1000000, 6, "1e+06"},
		{123456, 6, "123456"},
		{a + b, -1, "0.30000000000000004"},
		{math.Inf(1), 6, "inf"},
		{math.Inf(-1), 6, "-inf"},
		{math.NaN(), 6, "nan"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.v, tt.prec); got != tt.want {
			t.Errorf("FormatValue(%v, %d) = %q, want %q", tt.v, tt.prec, got, tt.want)
		}
	}
}
