package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/marblesim/sim/scenario"
)

// errScenariosFailed makes the process exit non-zero without printing usage.
var errScenariosFailed = errors.New("scenarios failed")

// runCmd executes scenario files
var runCmd = &cobra.Command{
	Use:   "run FILE...",
	Short: "Run marble scenario files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		passed, err := runOnce(ctx, cmd.OutOrStdout(), args)
		if err != nil {
			return err
		}
		if !watchFiles {
			if !passed {
				return errScenariosFailed
			}
			return nil
		}

		w, err := newWatcher(args)
		if err != nil {
			return err
		}
		w.onChange = func() {
			if _, err := runOnce(ctx, cmd.OutOrStdout(), args); err != nil {
				logrus.Warnf("rerun: %v", err)
			}
		}
		logrus.Infof("watching %d scenario files", len(args))
		if err := w.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// runOnce runs every file and prints a report. It reports whether all
// scenarios passed.
func runOnce(ctx context.Context, out io.Writer, paths []string) (bool, error) {
	results, err := scenario.RunFiles(ctx, paths, parallelFiles)
	if err != nil {
		return false, err
	}
	return printResults(out, results), nil
}

func printResults(out io.Writer, results []scenario.FileResult) bool {
	var passed, failed int
	for _, fr := range results {
		fmt.Fprintln(out, titleStyle.Render(fr.Path))
		if fr.Err != nil {
			failed++
			fmt.Fprintf(out, "  %s %v\n", failStyle.Render("ERROR"), fr.Err)
			continue
		}
		for _, r := range fr.Results {
			if r.Passed() {
				passed++
				fmt.Fprintf(out, "  %s %s\n", passStyle.Render("PASS"), r.Name)
				continue
			}
			failed++
			fmt.Fprintf(out, "  %s %s\n", failStyle.Render("FAIL"), r.Name)
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("    %v", r.Err)))
		}
	}
	fmt.Fprintf(out, "%d passed, %d failed\n", passed, failed)
	return failed == 0
}
