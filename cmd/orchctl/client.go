package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dreamware/orcd/internal/domain"
	"github.com/dreamware/orcd/internal/scheduler"
	"github.com/dreamware/orcd/internal/transport"
)

func newDeleteRequest(ctx context.Context, url string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
}

const clientTimeout = 5 * time.Second

func fetchNodes() ([]domain.Node, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	var nodes []domain.Node
	if err := transport.GetJSON(ctx, serverAddr+"/nodes", &nodes); err != nil {
		return nil, fmt.Errorf("fetch nodes: %w", err)
	}
	return nodes, nil
}

func registerNode(host string, port int) (domain.Node, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	var node domain.Node
	req := map[string]any{"host": host, "port": port}
	if err := transport.PostJSON(ctx, serverAddr+"/nodes", req, &node); err != nil {
		return domain.Node{}, fmt.Errorf("register node: %w", err)
	}
	return node, nil
}

func fetchWorkloads() ([]domain.Workload, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	var workloads []domain.Workload
	if err := transport.GetJSON(ctx, serverAddr+"/workloads", &workloads); err != nil {
		return nil, fmt.Errorf("fetch workloads: %w", err)
	}
	return workloads, nil
}

func submitWorkload(scriptPath string) (domain.Workload, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	var workload domain.Workload
	req := map[string]any{"script_path": scriptPath}
	if err := transport.PostJSON(ctx, serverAddr+"/workloads", req, &workload); err != nil {
		return domain.Workload{}, fmt.Errorf("submit workload: %w", err)
	}
	return workload, nil
}

func stopWorkload(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	url := serverAddr + "/workloads/" + id
	req, err := newDeleteRequest(ctx, url)
	if err != nil {
		return err
	}
	resp, err := transport.Client.Do(req)
	if err != nil {
		return fmt.Errorf("stop workload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 204 {
		return fmt.Errorf("stop workload: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func fetchHealthSummary() (scheduler.HealthSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	var summary scheduler.HealthSummary
	if err := transport.GetJSON(ctx, serverAddr+"/health/summary", &summary); err != nil {
		return scheduler.HealthSummary{}, fmt.Errorf("fetch health summary: %w", err)
	}
	return summary, nil
}

func forceHealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()
	return transport.PostJSON(ctx, serverAddr+"/health/check", nil, nil)
}

func fetchRecoveryMetrics() (scheduler.RecoveryMetrics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	var m scheduler.RecoveryMetrics
	if err := transport.GetJSON(ctx, serverAddr+"/recovery/metrics", &m); err != nil {
		return scheduler.RecoveryMetrics{}, fmt.Errorf("fetch recovery metrics: %w", err)
	}
	return m, nil
}
