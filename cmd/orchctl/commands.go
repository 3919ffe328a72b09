package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dreamware/orcd/internal/domain"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scheduler reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := fetchNodes(); err != nil {
				color.Red("scheduler unreachable at %s: %v", serverAddr, err)
				return err
			}
			color.Green("scheduler OK at %s", serverAddr)
			return nil
		},
	}
}

func newNodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List registered nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := fetchNodes()
			if err != nil {
				return err
			}
			for _, n := range nodes {
				printNodeLine(n)
			}
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "register <host>",
		Short: "Register a new node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := registerNode(args[0], port)
			if err != nil {
				return err
			}
			printNodeLine(node)
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 9000, "node agent port")
	return cmd
}

func printNodeLine(n domain.Node) {
	statusFn := color.YellowString
	switch n.Status {
	case domain.NodeOnline:
		statusFn = color.GreenString
	case domain.NodeOffline:
		statusFn = color.RedString
	}
	fmt.Printf("%-22s %-10s cpu=%.1f%% mem=%.1f%% procs=%d\n",
		n.Key(), statusFn(string(n.Status)), n.CPUUsage, n.MemoryUsage, n.RunningProcesses)
}

func newWorkloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workloads",
		Short: "List tracked workloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			workloads, err := fetchWorkloads()
			if err != nil {
				return err
			}
			for _, w := range workloads {
				printWorkloadLine(w)
			}
			return nil
		},
	}
}

func printWorkloadLine(w domain.Workload) {
	statusFn := color.YellowString
	switch w.Status {
	case domain.WorkloadRunning:
		statusFn = color.GreenString
	case domain.WorkloadFailed:
		statusFn = color.RedString
	}
	fmt.Printf("%-36s %-10s %s pid=%d node=%s:%d\n",
		w.ID, statusFn(string(w.Status)), w.ScriptPath, w.PID, w.NodeHost, w.NodePort)
}

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <script_path>",
		Short: "Submit a new workload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workload, err := submitWorkload(args[0])
			if err != nil {
				color.Red("submit failed: %v", err)
				return err
			}
			color.Green("submitted %s on %s:%d (pid %d)", workload.ID, workload.NodeHost, workload.NodePort, workload.PID)
			return nil
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <workload_id>",
		Short: "Stop a running workload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := stopWorkload(args[0]); err != nil {
				color.Red("stop failed: %v", err)
				return err
			}
			color.Green("stopped %s", args[0])
			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show per-node health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := fetchHealthSummary()
			if err != nil {
				return err
			}
			fmt.Printf("nodes: %d total, %d online, %d offline, %d degraded\n",
				summary.TotalNodes, summary.OnlineNodes, summary.OfflineNodes, summary.DegradedNodes)
			fmt.Printf("workloads: %d failed, %d desired\n", summary.FailedWorkloads, summary.DesiredWorkloads)
			for _, d := range summary.NodeDetails {
				statusFn := color.YellowString
				switch d.Status {
				case domain.NodeOnline:
					statusFn = color.GreenString
				case domain.NodeOffline:
					statusFn = color.RedString
				}
				fmt.Printf("%-22s %-10s cpu=%.1f%% mem=%.1f%% consecutive_failures=%d\n",
					d.NodeKey, statusFn(string(d.Status)), d.CPUUsage, d.MemoryUsage, d.ConsecutiveFailures)
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Force an immediate health check of all nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := forceHealthCheck(); err != nil {
				return err
			}
			color.Green("health check triggered")
			return nil
		},
	}
}

func newRecoveryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recovery",
		Short: "Show recovery engine metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := fetchRecoveryMetrics()
			if err != nil {
				return err
			}
			fmt.Printf("failed_workloads=%s desired_state_count=%s\n",
				strconv.Itoa(len(m.FailedWorkloads)), strconv.Itoa(m.DesiredStateCount))
			for _, id := range m.FailedWorkloads {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}
