// Package domain defines the core data types shared across orcd's control
// plane: the node, health-check, workload, and desired-state records that the
// registries, health monitor, recovery engine, and scheduler façade all read
// and mutate. See doc.go for the package overview.
package domain

import (
	"strconv"
	"time"
)

// NodeStatus is the liveness classification of a registered node.
type NodeStatus string

const (
	NodeUnknown  NodeStatus = "unknown"
	NodeOnline   NodeStatus = "online"
	NodeOffline  NodeStatus = "offline"
	NodeDegraded NodeStatus = "degraded"
)

// WorkloadStatus is the lifecycle state of a workload as tracked by the
// Workload Registry. It reflects what the scheduler believes is actually
// happening on a node, as distinct from DesiredState.Status which reflects
// intent.
type WorkloadStatus string

const (
	WorkloadPending WorkloadStatus = "pending"
	WorkloadRunning WorkloadStatus = "running"
	WorkloadStopped WorkloadStatus = "stopped"
	WorkloadFailed  WorkloadStatus = "failed"
)

// DesiredStatus is the intent state carried in the Desired-State Table.
type DesiredStatus string

const (
	DesiredRunning DesiredStatus = "running"
	DesiredFailed  DesiredStatus = "failed"
)

// NodeKey returns the canonical identity of a node, host:port. It is used as
// the map key in the Node Registry and as the target_node value persisted in
// Desired-State entries.
func NodeKey(host string, port int) string {
	return host + ":" + strconv.Itoa(port)
}

// Node is a worker machine registered with the scheduler. It is mutated by
// the Node Registry (on registration) and by the Health Monitor (status and
// utilization, on every probe).
type Node struct {
	Host             string     `json:"host"`
	Port             int        `json:"port"`
	Status           NodeStatus `json:"status"`
	CPUUsage         float64    `json:"cpu_usage"`
	MemoryUsage      float64    `json:"memory_usage"`
	TotalMemory      uint64     `json:"total_memory"`
	AvailableMemory  uint64     `json:"available_memory"`
	RunningProcesses int        `json:"running_processes"`
	LastSeen         time.Time  `json:"last_seen"`
}

// Key returns the node's host:port identity.
func (n Node) Key() string { return NodeKey(n.Host, n.Port) }

// HealthCheck is the Health Monitor's per-node probe bookkeeping.
type HealthCheck struct {
	LastCheck           time.Time     `json:"last_check"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	ResponseTime        time.Duration `json:"response_time"`
	Status              NodeStatus    `json:"status"`
}

// Workload is a single placed unit of work, as tracked by the Workload
// Registry. It reflects the scheduler's best knowledge of what is actually
// running, which can briefly lag the Desired-State Table during recovery.
type Workload struct {
	ID         string         `json:"workload_id"`
	ScriptPath string         `json:"script_path"`
	NodeHost   string         `json:"node_host"`
	NodePort   int            `json:"node_port"`
	PID        int            `json:"pid"`
	Status     WorkloadStatus `json:"status"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time,omitempty"`
}

// DesiredState is one entry of the Desired-State Table: the declared intent
// for a workload's placement, independent of what is currently observed to
// be running. It is the unit that gets persisted to the State Store.
type DesiredState struct {
	WorkloadID string        `json:"workload_id"`
	ScriptPath string        `json:"script_path"`
	TargetNode string        `json:"target_node"`
	Status     DesiredStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	RetryCount int           `json:"retry_count"`
	MaxRetries int           `json:"max_retries"`
}

// DefaultMaxRetries is the number of recovery attempts permitted for a
// workload before its Desired-State entry is given up on and marked failed.
const DefaultMaxRetries = 3
