package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/examples"
	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/observe"
)

// serverInstance is the instance ID of the single server object.
const serverInstance = 0

// Agent owns the registry and the managed objects registered in it.
//
// The registry is not safe for concurrent use; every access goes through
// the agent's lock.
type Agent struct {
	mu sync.Mutex

	reg      *model.Registry
	server   *examples.Server
	device   *examples.Device
	firmware *examples.Firmware
	software *examples.SoftwareUpdate
	observer *observe.Manager

	logger *slog.Logger
	trace  *log.FileLogger

	pollInterval time.Duration
}

// NewAgent builds the registry described by cfg.
func NewAgent(ctx context.Context, cfg Config, logger *slog.Logger) (*Agent, error) {
	a := &Agent{
		reg:          model.NewRegistry(),
		pollInterval: cfg.Observe.PollInterval,
	}

	if cfg.Trace != "" {
		trace, err := log.NewFileLogger(cfg.Trace)
		if err != nil {
			return nil, fmt.Errorf("open trace: %w", err)
		}
		a.trace = trace
	}
	a.logger = logger
	a.reg.SetLogger(logger)
	a.reg.SetEventLogger(a.eventLogger(logger))

	var err error
	a.server, err = examples.NewServer(a.reg, serverInstance, examples.ServerConfig{
		ShortServerID:    cfg.Server.ShortServerID,
		Lifetime:         cfg.Server.Lifetime,
		DefaultMinPeriod: cfg.Server.DefaultMinPeriod,
		DefaultMaxPeriod: cfg.Server.DefaultMaxPeriod,
		Binding:          cfg.Server.Binding,
	})
	if err != nil {
		a.closeTrace()
		return nil, fmt.Errorf("server object: %w", err)
	}

	a.device, err = examples.NewDevice(a.reg, examples.DeviceConfig{
		Manufacturer:    cfg.Device.Manufacturer,
		ModelNumber:     cfg.Device.Model,
		SerialNumber:    cfg.Device.Serial,
		FirmwareVersion: cfg.Device.FirmwareVersion,
		Timezone:        cfg.Device.Timezone,
		PowerSources: []examples.PowerSource{
			{Type: examples.PowerInternal, VoltageMV: 3700, CurrentMA: 120},
		},
		OnReboot: func() { a.logger.Info("Reboot requested") },
	})
	if err != nil {
		a.reg.Teardown()
		a.closeTrace()
		return nil, fmt.Errorf("device object: %w", err)
	}
	if err := a.device.SetBatteryLevel(cfg.Device.BatteryLevel); err != nil {
		a.reg.Teardown()
		a.closeTrace()
		return nil, err
	}

	a.firmware, err = examples.NewFirmware(a.reg, examples.FirmwareConfig{
		MaxPackageSize: cfg.Firmware.MaxPackageSize,
		Apply:          a.applyFirmware,
		Protocols:      []int64{0},
	})
	if err != nil {
		a.reg.Teardown()
		a.closeTrace()
		return nil, fmt.Errorf("firmware object: %w", err)
	}

	a.software, err = examples.NewSoftwareUpdate(a.reg)
	if err == nil {
		for _, sw := range cfg.Software {
			if _, err = a.software.Add(sw.Name, sw.Version); err != nil {
				break
			}
		}
	}
	if err != nil {
		a.reg.Teardown()
		a.closeTrace()
		return nil, fmt.Errorf("software update: %w", err)
	}

	obsCfg, err := observe.ConfigFromServer(ctx, a.reg, serverInstance)
	if err != nil {
		a.reg.Teardown()
		a.closeTrace()
		return nil, fmt.Errorf("observation config: %w", err)
	}
	obsCfg.MaxObservations = cfg.Observe.MaxObservations
	a.observer = observe.NewManagerWithConfig(a.reg, obsCfg)
	a.observer.SetEventLogger(a.eventLogger(logger))
	return a, nil
}

// SetLogger routes diagnostics and trace events to logger.
func (a *Agent) SetLogger(logger *slog.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.logger = logger
	events := a.eventLogger(logger)
	a.reg.SetLogger(logger)
	a.reg.SetEventLogger(events)
	a.observer.SetEventLogger(events)
}

// Registry returns the registry. Callers must hold Locker.
func (a *Agent) Registry() *model.Registry {
	return a.reg
}

// Observer returns the observation manager. Callers must hold Locker.
func (a *Agent) Observer() *observe.Manager {
	return a.observer
}

// Device returns the device object.
func (a *Agent) Device() *examples.Device {
	return a.device
}

// Locker returns the lock guarding the registry.
func (a *Agent) Locker() sync.Locker {
	return &a.mu
}

// Run polls observations until ctx is cancelled.
func (a *Agent) Run(ctx context.Context, onError func(error)) {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := a.Poll(ctx, now); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// Poll evaluates all observations once.
func (a *Agent) Poll(ctx context.Context, now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.observer.Poll(ctx, now)
	return err
}

// Simulate drains the battery by one percent per interval, recharging to
// full once empty.
func (a *Agent) Simulate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	level := int64(100)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			level--
			if level < 0 {
				level = 100
			}
			if err := a.device.SetBatteryLevel(level); err != nil {
				a.logger.Warn("Battery simulation failed", "error", err)
				return
			}
			a.logger.Debug("[SIM] Battery level", "percent", level)
		}
	}
}

// Close removes every object and closes the trace file.
func (a *Agent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.observer.ClearAll()
	a.reg.Teardown()
	return a.closeTrace()
}

func (a *Agent) eventLogger(logger *slog.Logger) log.Logger {
	var events log.Logger = log.NewSlogAdapter(logger)
	if a.trace != nil {
		events = log.NewMultiLogger(events, a.trace)
	}
	return events
}

func (a *Agent) closeTrace() error {
	if a.trace == nil {
		return nil
	}
	if n := a.trace.Dropped(); n > 0 {
		a.logger.Warn("Trace events dropped", "count", n)
	}
	err := a.trace.Close()
	a.trace = nil
	return err
}

func (a *Agent) applyFirmware(_ context.Context, pkg []byte) (string, string, error) {
	a.logger.Info("Applying firmware", "size", len(pkg))
	return "firmware", time.Now().UTC().Format("2006.01.02"), nil
}
