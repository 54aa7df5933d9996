package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inference-sim/marblesim/sim/marble"
)

// compileCmd prints the timed events a conventional diagram stands for
var compileCmd = &cobra.Command{
	Use:   "compile [flags] -- DIAGRAM",
	Short: "Compile a marble diagram into timed notifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := symbolValues(valueFlags)
		if err != nil {
			return err
		}
		events, err := marble.Compile(args[0], values, errorReason())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range events {
			fmt.Fprintf(out, "%6d  %s\n", e.Frame, e.Notification)
		}
		return nil
	},
}

// windowCmd prints the window a subscription diagram stands for
var windowCmd = &cobra.Command{
	Use:   "window [flags] -- DIAGRAM",
	Short: "Compile a subscription marble diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := marble.CompileWindow(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), w)
		return nil
	},
}
