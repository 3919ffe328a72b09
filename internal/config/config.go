// Package config loads the scheduler's single flat configuration record.
// Every tunable named in the external-interfaces contract — intervals,
// timeouts, thresholds, file paths — is a named field here; the scheduler's
// components receive these values from cmd/scheduler and never read env
// vars or a config file themselves.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete set of knobs the scheduler process accepts. Loaded
// once at startup by Load; cmd/scheduler passes its fields to the
// constructors of the components that need them, and components never
// re-read the environment themselves.
type Config struct {
	// ListenAddr is the address the HTTP control API binds to.
	ListenAddr string

	// StateFile is the path the State Store snapshots the Desired-State
	// Table to and loads it back from on startup.
	StateFile string

	// HealthCheckInterval is how often the Health Monitor probes every
	// registered node.
	HealthCheckInterval time.Duration

	// StatusTimeout bounds a single /status probe.
	StatusTimeout time.Duration

	// FailureThreshold is the number of consecutive failed probes before
	// a node is marked offline and its workloads queued for recovery.
	FailureThreshold int

	// RecoveryCadence is how often the Recovery Engine drains the
	// failure set.
	RecoveryCadence time.Duration

	// StartStopTimeout bounds a single /start or /stop call to a node.
	StartStopTimeout time.Duration

	// PersistenceInterval is how often the Persistence Flusher snapshots
	// the Desired-State Table to the State Store.
	PersistenceInterval time.Duration

	// MaxRetries is the default retry budget for a new Desired-State
	// entry before it is given up on.
	MaxRetries int

	// CPUEligibilityThreshold is the cpu_usage ceiling, in percent,
	// above which a node is ineligible for new placement or recovery.
	CPUEligibilityThreshold float64

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogJSON selects structured JSON logging instead of console output.
	LogJSON bool
}

// Defaults returns the configuration spec.md's external-interfaces section
// names as defaults: a 3s health check interval, failure threshold 2, 1s
// recovery cadence, 30s persistence interval, max 3 retries, 2s status
// timeout, 10s start/stop timeout, and an 80% CPU eligibility ceiling.
func Defaults() Config {
	return Config{
		ListenAddr:              ":8080",
		StateFile:               "./orcd-state.json",
		HealthCheckInterval:     3 * time.Second,
		StatusTimeout:           2 * time.Second,
		FailureThreshold:        2,
		RecoveryCadence:         1 * time.Second,
		StartStopTimeout:        10 * time.Second,
		PersistenceInterval:     30 * time.Second,
		MaxRetries:              3,
		CPUEligibilityThreshold: 80.0,
		LogLevel:                "info",
		LogJSON:                 false,
	}
}

// Load builds a Config from Defaults, an optional YAML file, and environment
// variables prefixed ORCD_ (e.g. ORCD_LISTEN_ADDR), with env taking
// precedence over the file and the file taking precedence over defaults.
// configFile may be empty, in which case only defaults and env are used.
func Load(configFile string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetEnvPrefix("orcd")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("state_file", cfg.StateFile)
	v.SetDefault("health_check_interval", cfg.HealthCheckInterval.String())
	v.SetDefault("status_timeout", cfg.StatusTimeout.String())
	v.SetDefault("failure_threshold", cfg.FailureThreshold)
	v.SetDefault("recovery_cadence", cfg.RecoveryCadence.String())
	v.SetDefault("start_stop_timeout", cfg.StartStopTimeout.String())
	v.SetDefault("persistence_interval", cfg.PersistenceInterval.String())
	v.SetDefault("max_retries", cfg.MaxRetries)
	v.SetDefault("cpu_eligibility_threshold", cfg.CPUEligibilityThreshold)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_json", cfg.LogJSON)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	healthInterval, err := time.ParseDuration(v.GetString("health_check_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("parse health_check_interval: %w", err)
	}
	statusTimeout, err := time.ParseDuration(v.GetString("status_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("parse status_timeout: %w", err)
	}
	recoveryCadence, err := time.ParseDuration(v.GetString("recovery_cadence"))
	if err != nil {
		return Config{}, fmt.Errorf("parse recovery_cadence: %w", err)
	}
	startStopTimeout, err := time.ParseDuration(v.GetString("start_stop_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("parse start_stop_timeout: %w", err)
	}
	persistenceInterval, err := time.ParseDuration(v.GetString("persistence_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("parse persistence_interval: %w", err)
	}

	out := Config{
		ListenAddr:              v.GetString("listen_addr"),
		StateFile:               v.GetString("state_file"),
		HealthCheckInterval:     healthInterval,
		StatusTimeout:           statusTimeout,
		FailureThreshold:        v.GetInt("failure_threshold"),
		RecoveryCadence:         recoveryCadence,
		StartStopTimeout:        startStopTimeout,
		PersistenceInterval:     persistenceInterval,
		MaxRetries:              v.GetInt("max_retries"),
		CPUEligibilityThreshold: v.GetFloat64("cpu_eligibility_threshold"),
		LogLevel:                v.GetString("log_level"),
		LogJSON:                 v.GetBool("log_json"),
	}

	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// Validate checks that every field holds a usable value. Called once by
// Load; nothing downstream re-validates.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state_file must not be empty")
	}
	if c.FailureThreshold < 1 {
		return fmt.Errorf("failure_threshold must be >= 1")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0")
	}
	if c.CPUEligibilityThreshold <= 0 || c.CPUEligibilityThreshold > 100 {
		return fmt.Errorf("cpu_eligibility_threshold must be in (0, 100]")
	}
	if c.HealthCheckInterval <= 0 || c.StatusTimeout <= 0 || c.RecoveryCadence <= 0 ||
		c.StartStopTimeout <= 0 || c.PersistenceInterval <= 0 {
		return fmt.Errorf("all interval and timeout fields must be positive")
	}
	return nil
}
