package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/k0kubun/go-ansi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/bar"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/session"
	"github.com/roffe/j1939/pkg/sim"
	"github.com/roffe/j1939/pkg/steps"
)

var errStepsFailed = errors.New("one or more steps failed")

func init() {
	runCmd.Flags().BoolP("progress", "P", false, "show a progress bar instead of streaming the report")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run test steps against the vehicle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		progress, err := cmd.Flags().GetBool("progress")
		if err != nil {
			return err
		}
		return runSteps(cmd.Context(), progress)
	},
}

func runSteps(ctx context.Context, progress bool) error {
	if cfg.Vehicle == "" {
		return fmt.Errorf("no vehicle given, set --%s or vehicle in the configuration", flagVehicle)
	}
	selected, err := steps.Select(cfg.Steps)
	if err != nil {
		return err
	}
	vehicle, err := sim.LoadVehicle(cfg.Vehicle)
	if err != nil {
		return err
	}

	color.NoColor = !cfg.Colors
	out := ansi.NewAnsiStdout()
	var lopts []ledger.Opt
	if !progress {
		lopts = append(lopts, ledger.OptWriter(out, cfg.Colors))
	}
	l := ledger.New(lopts...)

	bus := sim.New(vehicle, logger.Named("bus"))
	if err := bus.Open(ctx); err != nil {
		return err
	}
	defer bus.Close()

	q, err := j1939.NewRequester(bus,
		j1939.OptAttempts(uint(cfg.Attempts)),
		j1939.OptRetryDelay(cfg.RetryDelay),
		j1939.OptLogger(logger.Named("requester")),
	)
	if err != nil {
		return err
	}

	sopts := []session.Opt{session.OptStepTimeout(cfg.StepTimeout)}
	if cfg.Interactive {
		sopts = append(sopts, session.OptOperator(&promptOperator{}))
	}
	sess := session.New(q, l, logger, sopts...)
	logger.Info("starting", zap.Stringer("session", sess.ID()), zap.String("vehicle", vehicle.Name), zap.Int("steps", len(selected)))

	results := make(chan session.StepResult)
	var summary []session.StepResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(results)
		_, err := sess.Run(gctx, selected, func(res session.StepResult) {
			results <- res
		})
		return err
	})
	g.Go(func() error {
		var pb interface {
			Describe(string)
			Add(int) error
			Finish() error
		}
		if progress {
			pb = bar.New(len(selected), "running")
		}
		for res := range results {
			summary = append(summary, res)
			if pb == nil {
				continue
			}
			outcome := res.Outcome.String()
			if res.Aborted() {
				outcome = "ABORTED"
			}
			pb.Describe(bar.Describe(res.Part, res.Step, outcome))
			if err := pb.Add(1); err != nil {
				logger.Debug("progress", zap.Error(err))
			}
		}
		if pb != nil {
			return pb.Finish()
		}
		return nil
	})
	runErr := g.Wait()

	if progress {
		fmt.Fprintln(out)
		for _, line := range l.Lines() {
			fmt.Fprintln(out, line)
		}
	}
	printSummary(summary)

	if runErr != nil {
		return runErr
	}
	threshold := cfg.FailThreshold()
	for _, res := range summary {
		if res.Outcome >= threshold {
			return errStepsFailed
		}
	}
	return nil
}

func printSummary(results []session.StepResult) {
	fmt.Println()
	fmt.Println("Summary:")
	for _, res := range results {
		line := "  " + res.String()
		switch {
		case res.Aborted(), res.Outcome == ledger.Fail:
			line = color.RedString(line)
		case res.Outcome == ledger.Warn:
			line = color.YellowString(line)
		default:
			line = color.GreenString(line)
		}
		fmt.Println(line)
	}
}
