package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/lemonberrylabs/rpncalc/pkg/batch"
	"github.com/lemonberrylabs/rpncalc/pkg/calc"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file-or-dir>...",
	Short: "Evaluate the named expressions in YAML/JSON batch files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	applyColor(cmd)

	files, err := batch.FindFiles(args)
	if err != nil {
		return err
	}

	prec := precision(cmd)
	flagSet := cmd.Flags().Changed("precision")

	failed := 0
	for _, path := range files {
		f, err := batch.ParseFile(path)
		if err != nil {
			return err
		}
		p := prec
		if f.Precision != 0 && !flagSet {
			p = f.Precision
		}
		outcomes := batch.Run(f, nil)
		printOutcomes(cmd.OutOrStdout(), f, outcomes, p, len(files) > 1)
		failed += batch.Failed(outcomes)
	}

	if failed > 0 {
		return errFailed
	}
	return nil
}

func printOutcomes(w io.Writer, f *batch.File, outcomes []batch.Outcome, precision int, withPath bool) {
	errColor := color.New(color.FgRed)
	for _, o := range outcomes {
		name := o.Entry.Name
		if withPath {
			name = f.Path + ":" + name
		}
		if o.Err != nil {
			errColor.Fprintf(w, "%s: %s (line %d)\n", name, formatError(o.Err), o.Entry.Line)
			continue
		}
		fmt.Fprintf(w, "%s = %s\n", name, calc.FormatValue(o.Value, precision))
	}
}
