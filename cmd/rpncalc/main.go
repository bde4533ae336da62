// Package main is the entry point for the rpncalc command.
package main

import (
	"errors"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var errFailed = errors.New("one or more expressions failed")

var rootCmd = &cobra.Command{
	Use:   "rpncalc [expression...]",
	Short: "Evaluate arithmetic expressions",
	Long: `rpncalc evaluates arithmetic expressions with + - * / ^ % and parentheses.

Arguments are joined into a single expression and evaluated first. Lines read
from standard input are then evaluated one at a time until EOF. Standard input
is always read when no arguments are given, and otherwise only when it is not
a terminal.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("rpncalc version {{.Version}}\n")

	rootCmd.PersistentFlags().Int("precision", 0, "Significant digits in printed results (default 6, env PRECISION)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.Flags().Bool("rpn", false, "Also print the postfix form of each expression")
	rootCmd.Flags().Bool("stop-on-error", false, "Stop at the first expression that fails")

	rootCmd.AddCommand(serveCmd, batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	applyColor(cmd)

	opts := replOptions{precision: precision(cmd)}
	opts.showRPN, _ = cmd.Flags().GetBool("rpn")
	opts.stopOnError, _ = cmd.Flags().GetBool("stop-on-error")

	r := newREPL(cmd.OutOrStdout(), opts)

	if len(args) > 0 {
		if !r.eval(joinArgs(args)) && opts.stopOnError {
			return errFailed
		}
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return r.result()
		}
	}

	if err := r.loop(cmd.InOrStdin()); err != nil {
		return err
	}
	return r.result()
}

// precision resolves the --precision flag, then PRECISION, then 6.
func precision(cmd *cobra.Command) int {
	p, _ := strconv.Atoi(envOrDefault("PRECISION", "6"))
	if v, _ := cmd.Flags().GetInt("precision"); v != 0 {
		p = v
	}
	if p <= 0 {
		p = 6
	}
	return p
}

func applyColor(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetBool("no-color"); v {
		color.NoColor = true
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
