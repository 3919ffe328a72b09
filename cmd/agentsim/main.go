// Command agentsim runs a single simulated node agent, answering the
// scheduler's /status, /start, and /stop contract over HTTP.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dreamware/orcd/internal/agentsim"
)

// logFatal is a variable so tests can override it instead of exercising a
// real os.Exit.
var logFatal = log.Fatalf

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func main() {
	addr := getenv("AGENTSIM_ADDR", ":9000")
	baseCPU := getenvFloat("AGENTSIM_BASE_CPU", 5.0)
	perProcCPU := getenvFloat("AGENTSIM_PER_PROCESS_CPU", 12.0)
	totalMemory := uint64(getenvFloat("AGENTSIM_TOTAL_MEMORY_MB", 8192)) * 1024 * 1024

	agent := agentsim.New(baseCPU, perProcCPU, totalMemory)
	srv := agentsim.NewServer(agent)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("agentsim listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("agentsim server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("agentsim shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("agentsim shutdown error: %v", err)
	}
}
