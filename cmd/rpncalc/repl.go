package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/lemonberrylabs/rpncalc/pkg/calc"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

type replOptions struct {
	precision   int
	showRPN     bool
	stopOnError bool
}

// repl evaluates expressions one at a time and prints "= <value>" or an
// error line for each.
type repl struct {
	out    io.Writer
	opts   replOptions
	failed int

	errColor *color.Color
	rpnColor *color.Color
}

func newREPL(out io.Writer, opts replOptions) *repl {
	return &repl{
		out:      out,
		opts:     opts,
		errColor: color.New(color.FgRed),
		rpnColor: color.New(color.Faint),
	}
}

// eval evaluates one expression and reports whether it succeeded.
func (r *repl) eval(expression string) bool {
	res, err := calc.Run(expression)
	if err != nil {
		r.failed++
		r.errColor.Fprintln(r.out, formatError(err))
		return false
	}
	if r.opts.showRPN {
		r.rpnColor.Fprintf(r.out, "rpn: %s\n", calc.FormatTokens(res.Postfix))
	}
	fmt.Fprintf(r.out, "= %s\n", calc.FormatValue(res.Value, r.opts.precision))
	return true
}

// loop evaluates every line of in until EOF. Lines that are empty after
// cleaning are skipped.
func (r *repl) loop(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if calc.Clean(line) == "" {
			continue
		}
		if !r.eval(line) && r.opts.stopOnError {
			return errFailed
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func (r *repl) result() error {
	if r.failed > 0 {
		return errFailed
	}
	return nil
}

// formatError prefixes an error with its report category.
func formatError(err error) string {
	if ce, ok := types.AsCalcError(err); ok {
		return ce.Category() + ": " + ce.Message
	}
	return "Error: " + err.Error()
}

// joinArgs concatenates command line arguments into one expression.
func joinArgs(args []string) string {
	return strings.Join(args, "")
}
