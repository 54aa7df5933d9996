package cmd

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/marblesim/sim/marble"
	"github.com/inference-sim/marblesim/sim/marbletest"
	"github.com/inference-sim/marblesim/sim/trace"
)

// replayCmd subscribes once to a cold source and prints what the subscriber saw
var replayCmd = &cobra.Command{
	Use:   "replay [flags] -- DIAGRAM",
	Short: "Replay a cold source under a subscription window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := symbolValues(valueFlags)
		if err != nil {
			return err
		}
		h := marbletest.New(
			marbletest.WithErrorValue(errorReason()),
			marbletest.WithHorizon(horizon),
			marbletest.WithLogger(logrus.WithField("cmd", "replay")),
		)
		src, err := h.Cold(args[0], values)
		if err != nil {
			return err
		}
		sub, err := h.Subscribe(src, windowFlag)
		if err != nil {
			return err
		}
		if err := h.Run(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Received"))
		events := sub.Events()
		for _, e := range events {
			fmt.Fprintf(out, "%6d  %s\n", e.Frame, e.Notification)
		}
		if d, err := marble.Render(events, values); err == nil {
			fmt.Fprintf(out, "diagram: %s\n", d)
		} else {
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("diagram: not renderable (%v)", err)))
		}

		fmt.Fprintln(out, titleStyle.Render("Subscriptions"))
		for _, w := range h.Trace.Windows(src.Name()) {
			fmt.Fprintf(out, "  %s %s\n", src.Name(), w)
		}
		printSummary(cmd, trace.Summarize(h.Trace))
		return nil
	},
}

func printSummary(cmd *cobra.Command, s *trace.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Trace"))
	fmt.Fprintf(out, "  activations: %d  deactivations: %d  open: %d\n", s.Activations, s.Deactivations, s.Open)
	names := make([]string, 0, len(s.Sources))
	for name := range s.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %d\n", name, s.Sources[name])
	}
}
