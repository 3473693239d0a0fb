package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/lwm2m"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/observe"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

func newTestAgent(t *testing.T, modify func(*Config)) (*Agent, string) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Trace = filepath.Join(t.TempDir(), "agent.rlog")
	cfg.Software = []SoftwareConfig{{Name: "app", Version: "1.0.0"}}
	if modify != nil {
		modify(&cfg)
	}
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agent, err := NewAgent(context.Background(), cfg, logger)
	require.NoError(t, err)
	return agent, cfg.Trace
}

func readTrace(t *testing.T, path string) []log.Event {
	t.Helper()
	r, err := log.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var events []log.Event
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

func TestNewAgent(t *testing.T) {
	agent, _ := newTestAgent(t, nil)
	defer agent.Close()

	reg := agent.Registry()
	assert.Equal(t, 4, reg.ObjectCount())

	for _, id := range []lwm2m.ObjectID{lwm2m.ObjectServer, lwm2m.ObjectDevice, lwm2m.ObjectFirmwareUpdate, lwm2m.ObjectSoftwareUpdate} {
		_, err := reg.FindObject(uint16(id), 0)
		assert.NoError(t, err, "object %d", id)
	}

	raw, err := reg.Read(context.Background(), model.ResourceURI(3, 0, lwm2m.DeviceBatteryLevel))
	require.NoError(t, err)
	level, err := wire.BytesToInt(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(100), level)
}

func TestNewAgentObservationPeriods(t *testing.T) {
	agent, _ := newTestAgent(t, func(c *Config) {
		c.Server.DefaultMinPeriod = 5 * time.Second
		c.Server.DefaultMaxPeriod = time.Minute
		c.Observe.MaxObservations = 4
	})
	defer agent.Close()

	cfg := agent.Observer().Config()
	assert.Equal(t, 5*time.Second, cfg.DefaultMinPeriod)
	assert.Equal(t, time.Minute, cfg.DefaultMaxPeriod)
	assert.Equal(t, 4, cfg.MaxObservations)
}

func TestNewAgentDuplicateSoftware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Software = []SoftwareConfig{{Name: "app", Version: "1"}, {Name: "app", Version: "2"}}

	_, err := NewAgent(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestNewAgentRefusesForeignTraceFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trace = filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(cfg.Trace, []byte("poll: 1s\n"), 0o600))

	_, err := NewAgent(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, err, log.ErrNotTrace)

	data, err := os.ReadFile(cfg.Trace)
	require.NoError(t, err)
	assert.Equal(t, "poll: 1s\n", string(data))
}

func TestAgentPoll(t *testing.T) {
	agent, _ := newTestAgent(t, nil)
	defer agent.Close()

	var got []observe.Notification
	agent.Observer().OnNotification(func(n observe.Notification) {
		got = append(got, n)
	})

	uri := model.ResourceURI(3, 0, lwm2m.DeviceBatteryLevel)
	_, err := agent.Observer().Observe(context.Background(), uri)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, observe.ReasonInitial, got[0].Reason)

	require.NoError(t, agent.Device().SetBatteryLevel(55))
	require.NoError(t, agent.Poll(context.Background(), time.Now().Add(2*time.Second)))

	require.Len(t, got, 2)
	assert.Equal(t, observe.ReasonChanged, got[1].Reason)
	assert.Equal(t, wire.IntToBytes(55), got[1].Value)
}

func TestAgentRunStopsOnCancel(t *testing.T) {
	agent, _ := newTestAgent(t, func(c *Config) {
		c.Observe.PollInterval = 10 * time.Millisecond
	})
	defer agent.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		agent.Run(ctx, nil)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAgentCloseWritesTrace(t *testing.T) {
	agent, trace := newTestAgent(t, nil)

	_, err := agent.Observer().Observe(context.Background(), model.ResourceURI(3, 0, lwm2m.DeviceBatteryLevel))
	require.NoError(t, err)
	require.NoError(t, agent.Close())
	assert.Equal(t, 0, agent.Registry().ObjectCount())
	assert.Equal(t, 0, agent.Observer().Count())

	counts := make(map[log.Category]int)
	for _, e := range readTrace(t, trace) {
		counts[e.Category]++
		assert.Equal(t, agent.Registry().ID(), e.RegistryID)
	}
	assert.NotZero(t, counts[log.CategoryLifecycle])
	assert.NotZero(t, counts[log.CategoryDispatch])
	assert.NotZero(t, counts[log.CategoryObserve])
}
