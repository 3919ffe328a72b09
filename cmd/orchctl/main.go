// Command orchctl is the command-line client for orcd's HTTP control API:
// it registers nodes, submits and stops workloads, and reports cluster and
// recovery health, colorized the way an operator staring at a terminal
// wants status to stand out.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverAddr string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "orchctl",
		Short: "Command-line client for the orcd micro-orchestrator",
	}

	root.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "scheduler HTTP address")

	root.AddCommand(
		newStatusCmd(),
		newNodesCmd(),
		newRegisterCmd(),
		newWorkloadsCmd(),
		newSubmitCmd(),
		newStopCmd(),
		newHealthCmd(),
		newCheckCmd(),
		newRecoveryCmd(),
	)
	return root
}
