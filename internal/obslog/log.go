// Package obslog wires the process-wide structured logger used by every
// other orcd package. Subsystems don't log to the bare zerolog.Logger;
// they obtain a child logger from WithComponent, WithNode, or WithWorkload
// at the point where they log, the way the Health Monitor and Recovery
// Engine tag their lines with the subsystem or workload involved.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance. The package's init gives it a
// default info-level console configuration; a later call to Init replaces
// it.
var Logger zerolog.Logger

// Level is a recognized logging verbosity.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config controls how Init configures the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init configures the global Logger. Called once from cmd/scheduler's main
// after the configuration is loaded.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent returns a child logger tagging every line with component.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithNode returns a child logger tagging every line with the node key a
// subsystem is currently acting on.
func WithNode(nodeKey string) zerolog.Logger {
	return Logger.With().Str("node", nodeKey).Logger()
}

// WithWorkload returns a child logger tagging every line with the workload
// id a subsystem is currently acting on.
func WithWorkload(workloadID string) zerolog.Logger {
	return Logger.With().Str("workload_id", workloadID).Logger()
}

func init() {
	// Sensible default so packages that log before Init is called (tests,
	// library usage) still produce readable output instead of panicking.
	Init(Config{Level: InfoLevel})
}
