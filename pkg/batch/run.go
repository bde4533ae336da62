package batch

import "github.com/lemonberrylabs/rpncalc/pkg/calc"

// Outcome is the result of evaluating one entry.
type Outcome struct {
	Entry Entry
	Value float64
	Err   error
}

// Evaluator evaluates a single expression. calc.Evaluate satisfies it; a
// history store can be plugged in through EvaluatorFunc.
type Evaluator interface {
	Evaluate(expression string) (float64, error)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(expression string) (float64, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(expression string) (float64, error) {
	return f(expression)
}

// Default evaluates with the calculator pipeline directly.
var Default Evaluator = EvaluatorFunc(calc.Evaluate)

// Run evaluates every entry of f in order. A failed entry does not stop the
// rest of the file.
func Run(f *File, ev Evaluator) []Outcome {
	if ev == nil {
		ev = Default
	}
	out := make([]Outcome, len(f.Entries))
	for i, e := range f.Entries {
		v, err := ev.Evaluate(e.Expression)
		out[i] = Outcome{Entry: e, Value: v, Err: err}
	}
	return out
}

// Failed counts the outcomes that ended in an error.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
