// Command scheduler runs orcd's control plane: the HTTP API, the Health
// Monitor, the Recovery Engine, and the Persistence Flusher, all wired
// together against one in-memory Node Registry, Workload Registry, and
// Desired-State Table.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/orcd/internal/config"
	"github.com/dreamware/orcd/internal/health"
	"github.com/dreamware/orcd/internal/metrics"
	"github.com/dreamware/orcd/internal/obslog"
	"github.com/dreamware/orcd/internal/recovery"
	"github.com/dreamware/orcd/internal/registry"
	"github.com/dreamware/orcd/internal/scheduler"
	"github.com/dreamware/orcd/internal/statestore"
)

// logFatal is a variable so tests can override a fatal exit path instead of
// exercising a real os.Exit.
var logFatal = func(msg string, err error) {
	obslog.WithComponent("main").Fatal().Err(err).Msg(msg)
}

type server struct {
	facade *scheduler.Facade
}

func main() {
	cfg, err := config.Load(os.Getenv("ORCD_CONFIG_FILE"))
	if err != nil {
		logFatal("failed to load configuration", err)
		return
	}

	logLevel := obslog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = obslog.DebugLevel
	case "warn":
		logLevel = obslog.WarnLevel
	case "error":
		logLevel = obslog.ErrorLevel
	}
	obslog.Init(obslog.Config{Level: logLevel, JSONOutput: cfg.LogJSON})
	log := obslog.WithComponent("main")

	nodes := registry.NewNodeRegistry()
	workloads := registry.NewWorkloadRegistry()
	desired := statestore.NewDesiredStateTable()

	store := statestore.New(cfg.StateFile)
	entries, err := store.Load()
	if err != nil {
		log.Error().Err(err).Str("state_file", cfg.StateFile).Msg("failed to load persisted desired state, starting with an empty table")
		entries = nil
	}
	desired.Restore(entries)
	log.Info().Int("entries", len(entries)).Str("state_file", cfg.StateFile).Msg("restored desired-state table")

	healthMonitor := health.New(nodes, desired, workloads, cfg.HealthCheckInterval, cfg.StatusTimeout, cfg.FailureThreshold)
	recoveryEngine := recovery.New(nodes, workloads, desired, cfg.RecoveryCadence, cfg.StartStopTimeout, cfg.CPUEligibilityThreshold)
	facade := scheduler.New(nodes, workloads, desired, healthMonitor, recoveryEngine, cfg.StartStopTimeout, cfg.CPUEligibilityThreshold, cfg.MaxRetries)
	flusher := statestore.NewFlusher(desired, store, cfg.PersistenceInterval)

	ctx, cancel := context.WithCancel(context.Background())
	go healthMonitor.Run(ctx)
	go recoveryEngine.Run(ctx)
	go flusher.Run(ctx)

	srv := &server{facade: facade}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/nodes", srv.handleNodes)
	mux.HandleFunc("/workloads", srv.handleWorkloads)
	mux.HandleFunc("/workloads/", srv.handleWorkloadByID)
	mux.HandleFunc("/health/summary", srv.handleHealthSummary)
	mux.HandleFunc("/health/check", srv.handleHealthCheck)
	mux.HandleFunc("/recovery/metrics", srv.handleRecoveryMetrics)
	mux.Handle("/metrics", metrics.Handler())

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("scheduler listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("scheduler HTTP server failed", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("scheduler shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("scheduler HTTP shutdown error")
	}

	// Final best-effort flush so a clean shutdown never loses the last
	// PersistenceInterval worth of desired-state changes.
	if err := store.Save(desired.SnapshotForPersistence()); err != nil {
		log.Error().Err(err).Msg("final desired-state flush failed")
	}
}
