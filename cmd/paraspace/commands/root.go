package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:     "paraspace",
	Short:   "paraspace - timeline-based temporal planning over an SMT backend",
	Long:    `paraspace solves timeline-based temporal planning problems by reducing them to a sequence of SAT/SMT queries, growing the plan graph only as far as each unsat core demands.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level: debug, info, warn, or error")
	rootCmd.AddCommand(solveCmd)
}

// HandleError prints msg/err to stderr and exits non-zero.
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
