package cmd

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/marblesim/sim/marble"
)

var (
	logLevel string // Log verbosity level

	// compile / replay flags
	valueFlags map[string]string // symbol=value substitutions
	errorValue string            // reason '#' stands for
	windowFlag string            // subscription diagram for replay
	horizon    int64             // last frame processed by replay

	// run flags
	parallelFiles int  // scenario files in flight at once
	watchFiles    bool // rerun on change
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "marblesim",
	Short: "Deterministic virtual-time marble testing",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// symbolValues turns --value flags into marble.Values keyed by symbol.
// Every key must be exactly one character.
func symbolValues(flags map[string]string) (marble.Values, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	values := make(marble.Values, len(flags))
	for k, v := range flags {
		if utf8.RuneCountInString(k) != 1 {
			return nil, fmt.Errorf("--value %s=%s: symbol must be a single character", k, v)
		}
		values[k] = v
	}
	return values, nil
}

// errorReason maps an empty --error to the default reason.
func errorReason() any {
	if errorValue == "" {
		return nil
	}
	return errorValue
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	for _, c := range []*cobra.Command{compileCmd, replayCmd} {
		c.Flags().StringToStringVar(&valueFlags, "value", nil, "Symbol substitution as symbol=value (repeatable)")
		c.Flags().StringVar(&errorValue, "error", "", "Reason carried by '#' (default \"error\")")
	}
	replayCmd.Flags().StringVar(&windowFlag, "subscription", "", "Subscription diagram, e.g. \"--^---!\"")
	replayCmd.Flags().Int64Var(&horizon, "horizon", 0, "Last frame to process (0 means unbounded)")

	runCmd.Flags().IntVar(&parallelFiles, "parallel", 4, "Scenario files run concurrently (0 means unlimited)")
	runCmd.Flags().BoolVar(&watchFiles, "watch", false, "Rerun scenario files whenever they change")

	rootCmd.AddCommand(compileCmd, windowCmd, replayCmd, runCmd)
}
