package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benchkit/benchkit"
)

func newRunCmd() *cobra.Command {
	var (
		all        bool
		minSamples int
		maxTime    time.Duration
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "run [scenarios...]",
		Short: "Run one or more registered benchmark scenarios",
		Long: "Run drives the named scenarios (or every registered scenario with --all)\n" +
			"to completion and prints a results table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if all {
				names = scenarioNames()
			}
			if len(names) == 0 {
				return fmt.Errorf("no scenarios named; pass names or --all")
			}

			runID := uuid.NewString()
			log := newLogger(logLevel)

			suite := benchkit.NewSuite("benchctl-run")
			for _, name := range names {
				sc, ok := lookupScenario(name)
				if !ok {
					return fmt.Errorf("unknown scenario %q (see: benchctl list)", name)
				}
				b := sc.New()
				if minSamples > 0 {
					benchkit.WithMinSamples(minSamples)(&b.Config)
				}
				if maxTime > 0 {
					benchkit.WithMaxTime(maxTime)(&b.Config)
				}
				attachProgress(log, runID, b)
				suite.Add(b)
			}

			results := suite.Run()
			fmt.Fprint(cmd.OutOrStdout(), renderReport(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "run every registered scenario")
	cmd.Flags().IntVar(&minSamples, "min-samples", 0, "override the minimum sample count")
	cmd.Flags().DurationVar(&maxTime, "max-time", 0, "override the maximum clocking-time budget")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

// runToCompletion drives b through a full sampling run and blocks until
// its complete event fires, the same completion-blocking pattern
// Invoker.runOne uses internally, needed here because compare measures
// two standalone benchmarks outside of a Suite.
func runToCompletion(b *benchkit.Benchmark) {
	done := make(chan struct{})
	b.PrependOn(benchkit.EventComplete, func(e *benchkit.Event) bool {
		close(done)
		return true
	})
	benchkit.NewSamplingController(b).Run()
	<-done
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered benchmark scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scenarioNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newCompareCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "compare <scenario-a> <scenario-b>",
		Short: "Run two scenarios and report which is faster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sa, ok := lookupScenario(args[0])
			if !ok {
				return fmt.Errorf("unknown scenario %q", args[0])
			}
			sb, ok := lookupScenario(args[1])
			if !ok {
				return fmt.Errorf("unknown scenario %q", args[1])
			}

			runID := uuid.NewString()
			log := newLogger(logLevel)

			a := sa.New()
			b := sb.New()
			attachProgress(log, runID, a)
			attachProgress(log, runID, b)

			runToCompletion(a)
			runToCompletion(b)

			fmt.Fprint(cmd.OutOrStdout(), renderReport([]*benchkit.Benchmark{a, b}))
			fmt.Fprintln(cmd.OutOrStdout(), renderCompare(a, b))
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}
