package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "trajexecd",
	Short: "Trajectory execution manager for an articulated robot",
	Long: `trajexecd dispatches joint trajectories to controllers: it
selects a cover of active controllers for a trajectory's joints,
splits the trajectory across them, validates the robot's start state,
and drives execution with a deadline derived from the trajectory's own
duration.

Commands:
  serve    - run the demo daemon (HTTP control API + websocket event bus)
  version  - print build information`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults, no file read)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
