// Command lwm2m-agent is a reference LwM2M client agent.
//
// It registers the Server, Device, Firmware Update and Software Update
// objects in a registry, evaluates observations periodically and offers an
// interactive shell for reading, writing, executing and observing resources.
//
// Usage:
//
//	lwm2m-agent [flags]
//
// Flags:
//
//	-config string       Configuration file path (YAML)
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-log-format string   Log format: text, json (default "text")
//	-trace string        Write CBOR trace events to this file
//	-interactive         Start the interactive shell (default true)
//	-simulate            Drain the battery level over time
//
// Examples:
//
//	# Start with defaults and the interactive shell
//	lwm2m-agent
//
//	# Run headless with a config file and a trace
//	lwm2m-agent -config agent.yaml -interactive=false -trace agent.rlog
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/cmd/lwm2m-agent/interactive"
	"github.com/lwm2m-agent/lwm2mcore/pkg/inspect"
	"github.com/lwm2m-agent/lwm2mcore/pkg/observe"
)

const simulationInterval = 5 * time.Second

var (
	configFile = flag.String("config", "", "Configuration file path (YAML)")
	logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log-format", "text", "Log format: text, json")
	tracePath  = flag.String("trace", "", "Write CBOR trace events to this file")
	useShell   = flag.Bool("interactive", true, "Start the interactive shell")
	simulate   = flag.Bool("simulate", false, "Drain the battery level over time")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agent, err := NewAgent(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}
	logger.Info("LwM2M agent started",
		"objects", agent.Registry().ObjectCount(),
		"registry", agent.Registry().ID())

	var shell *interactive.Shell
	if cfg.Interactive {
		shell, err = interactive.New(agent.Registry(), agent.Observer(), agent.Locker())
		if err != nil {
			logger.Error("Failed to start interactive shell", "error", err)
			os.Exit(1)
		}
		logger, _ = newLogger(cfg.LogLevel, cfg.LogFormat, shell.Stdout())
		agent.SetLogger(logger)
		agent.Observer().OnNotification(shell.Notify)
	} else {
		agent.Observer().OnNotification(func(n observe.Notification) {
			logger.Info("Notification",
				"uri", inspect.FormatURI(n.URI),
				"reason", n.Reason.String(),
				"size", len(n.Value))
		})
	}

	go agent.Run(ctx, func(err error) {
		logger.Warn("Observation poll failed", "error", err)
	})
	if *simulate {
		go agent.Simulate(ctx, simulationInterval)
	}

	if shell != nil {
		go shell.Run(ctx, cancel)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	cancel()

	if err := agent.Close(); err != nil {
		logger.Error("Error closing agent", "error", err)
	}
}

// loadConfig reads the config file, if any, and applies flags that were
// set explicitly on the command line.
func loadConfig() (Config, error) {
	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = LoadConfig(*configFile); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "trace":
			cfg.Trace = *tracePath
		case "interactive":
			cfg.Interactive = *useShell
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}
