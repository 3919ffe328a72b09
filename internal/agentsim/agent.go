// Package agentsim is a reference implementation of the node agent
// interface the scheduler talks to: GET /status, POST /start, POST /stop.
// It simulates a small fleet of "processes" in memory instead of actually
// forking scripts, so cmd/agentsim can stand in for a real worker node in
// local development and in this repo's own integration tests.
package agentsim

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ProcessState is the simulated lifecycle state of one started script.
type ProcessState string

const (
	ProcessRunning ProcessState = "running"
	ProcessStopped ProcessState = "stopped"
)

// Process is one simulated running script.
type Process struct {
	PID        int          `json:"pid"`
	ScriptPath string       `json:"script_path"`
	State      ProcessState `json:"state"`
}

// Agent simulates a worker node: it tracks a small table of "running"
// processes and reports synthetic CPU/memory figures that increase with the
// number of processes, so a scheduler driving many workloads onto one agent
// will eventually see it cross the CPU eligibility threshold, exercising
// the same placement logic a real fleet would.
type Agent struct {
	mu          sync.RWMutex
	processes   map[int]*Process
	nextPID     int64
	baseCPU     float64
	perProcCPU  float64
	totalMemory uint64
	unhealthy   atomic.Bool
}

// New returns an Agent with no processes running yet. baseCPU is the
// reported cpu_usage with zero processes; perProcCPU is added per running
// process to synthesize load.
func New(baseCPU, perProcCPU float64, totalMemory uint64) *Agent {
	return &Agent{
		processes:   make(map[int]*Process),
		baseCPU:     baseCPU,
		perProcCPU:  perProcCPU,
		totalMemory: totalMemory,
	}
}

// SetUnhealthy forces /status to fail, simulating a node that has stopped
// answering. Used by integration tests to drive a node-failure scenario
// without actually killing a process.
func (a *Agent) SetUnhealthy(unhealthy bool) {
	a.unhealthy.Store(unhealthy)
}

// Status reports the agent's simulated CPU usage, memory usage, and
// running process count. Returns an error when SetUnhealthy(true) has been
// called, simulating an unreachable node.
func (a *Agent) Status() (cpuUsage, memUsage float64, totalMemory, availableMemory uint64, runningProcesses int, err error) {
	if a.unhealthy.Load() {
		return 0, 0, 0, 0, 0, fmt.Errorf("agent is simulated unhealthy")
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	running := len(a.processes)
	cpu := a.baseCPU + a.perProcCPU*float64(running)
	if cpu > 100 {
		cpu = 100
	}
	memUsed := uint64(running) * (a.totalMemory / 20)
	if memUsed > a.totalMemory {
		memUsed = a.totalMemory
	}
	memPct := float64(memUsed) / float64(a.totalMemory) * 100

	return cpu, memPct, a.totalMemory, a.totalMemory - memUsed, running, nil
}

// Start records a new simulated process for scriptPath and returns its pid.
func (a *Agent) Start(scriptPath string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextPID++
	pid := int(a.nextPID)
	a.processes[pid] = &Process{PID: pid, ScriptPath: scriptPath, State: ProcessRunning}
	return pid
}

// Stop removes pid from the running-process table. Returns an error if pid
// is not currently tracked.
func (a *Agent) Stop(pid int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.processes[pid]
	if !ok {
		return fmt.Errorf("pid %d not found", pid)
	}
	p.State = ProcessStopped
	delete(a.processes, pid)
	return nil
}

// Processes returns a snapshot of currently running processes.
func (a *Agent) Processes() []*Process {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*Process, 0, len(a.processes))
	for _, p := range a.processes {
		out = append(out, p)
	}
	return out
}
