// Command tapeopt compiles implicit-function expressions into tapes,
// evaluates them, and reports how much a prior evaluation's min/max
// resolutions let the simplifier shrink them.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oisee/tapeopt/pkg/expr"
	"github.com/oisee/tapeopt/pkg/schedule"
	"github.com/oisee/tapeopt/pkg/tape"
)

var log = logrus.WithField("cmd", "tapeopt")

func main() {
	rootCmd := &cobra.Command{
		Use:   "tapeopt",
		Short: "tapeopt — compile, simplify, and evaluate implicit-function tapes",
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	}

	rootCmd.AddCommand(newEvalCmd(), newBenchCmd(), newDumpCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEvalCmd() *cobra.Command {
	var x, y, z float64
	var regLimit uint8

	cmd := &cobra.Command{
		Use:   "eval [expr]",
		Short: "Evaluate an expression at (x, y, z)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := compile(args[0], regLimit)
			if err != nil {
				return err
			}
			slots := make([]float32, len(tp.SSA.Ops))
			got := tp.SSA.Eval(float32(x), float32(y), float32(z), slots, nil)
			fmt.Printf("%g\n", got)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "y coordinate")
	cmd.Flags().Float64Var(&z, "z", 0, "z coordinate")
	cmd.Flags().Uint8Var(&regLimit, "reg-limit", 255, "register budget for the asm tape")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var regLimit uint8
	var asm bool

	cmd := &cobra.Command{
		Use:   "dump [expr]",
		Short: "Print the compiled tape for an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := compile(args[0], regLimit)
			if err != nil {
				return err
			}
			if asm {
				for i, in := range tp.Asm.Instrs {
					fmt.Printf("%4d: %-10s out=%d lhs=%d rhs=%d\n", i, in.Op, in.Out, in.Lhs, in.Rhs)
				}
				return nil
			}
			di := 0
			for i, op := range tp.SSA.Ops {
				n := tape.WordsPerOp(op)
				fmt.Printf("%4d: %-10s %v\n", i, op, tp.SSA.Data[di:di+n])
				di += n
			}
			return nil
		},
	}
	cmd.Flags().Uint8Var(&regLimit, "reg-limit", 255, "register budget for the asm tape")
	cmd.Flags().BoolVar(&asm, "asm", false, "dump the register-allocated asm tape instead of the SSA tape")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var samples int
	var regLimit uint8
	var lo, hi float64
	var workers int

	cmd := &cobra.Command{
		Use:   "bench [expr]",
		Short: "Sample an expression on a grid and report how much simplification shrinks the tape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, root, err := expr.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "tapeopt: parse expression")
			}
			sched := schedule.Schedule(ctx, root)
			tp := tape.NewWithRegLimit(sched, regLimit)
			log.WithFields(logrus.Fields{
				"ssa_ops":      len(tp.SSA.Ops),
				"choice_count": tp.SSA.ChoiceCount,
			}).Info("compiled canonical tape")

			points := make([]tape.Point, samples)
			for i := range points {
				frac := float64(i) / float64(len(points))
				v := float32(lo + frac*(hi-lo))
				points[i] = tape.Point{X: v, Y: v, Z: v}
			}

			start := time.Now()
			stats := tape.RunGrid(tp, workers, points)
			elapsed := time.Since(start)
			log.WithFields(logrus.Fields{
				"samples": stats.Samples,
				"elapsed": elapsed,
				"ns_op":   elapsed.Nanoseconds() / max64(stats.Checked, 1),
			}).Info("grid sweep complete")

			// One more pass, single-threaded, to report how much the last
			// sample's min/max resolutions let the tape shrink.
			pe := tape.NewPointEval(tp)
			last := points[len(points)-1]
			pe.Eval(last.X, last.Y, last.Z)
			simplified := pe.Simplify(regLimit)

			fmt.Printf("checked %d/%d samples across up to %d workers\n", stats.Checked, stats.Samples, workers)
			fmt.Printf("canonical ops: %d, simplified ops (at last sample): %d (%.1f%% shorter)\n",
				len(tp.SSA.Ops), len(simplified.SSA.Ops),
				100*(1-float64(len(simplified.SSA.Ops))/float64(len(tp.SSA.Ops))))
			return nil
		},
	}
	cmd.Flags().IntVar(&samples, "samples", 1000, "number of grid samples to evaluate")
	cmd.Flags().Uint8Var(&regLimit, "reg-limit", 255, "register budget for the asm tape")
	cmd.Flags().Float64Var(&lo, "lo", -1, "grid lower bound")
	cmd.Flags().Float64Var(&hi, "hi", 1, "grid upper bound")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of worker goroutines (0 = NumCPU)")
	return cmd
}

func compile(src string, regLimit uint8) (*tape.Tape, error) {
	ctx, root, err := expr.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "tapeopt: parse expression")
	}
	sched := schedule.Schedule(ctx, root)
	return tape.NewWithRegLimit(sched, regLimit), nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
