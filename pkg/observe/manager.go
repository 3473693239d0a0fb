package observe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lwm2m-agent/lwm2mcore/pkg/log"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
)

// Observation errors.
var (
	ErrObservationNotFound = errors.New("observation not found")
	ErrResourceExhausted   = errors.New("maximum observations reached")
	ErrNotObservable       = errors.New("resource is not observable")
)

// Notification is a value to push to the observer.
type Notification struct {
	// ObservationID identifies the observation.
	ObservationID string

	// URI is the observed resource.
	URI model.URI

	// Value is the raw resource value.
	Value []byte

	// Reason explains why the notification was sent.
	Reason Reason

	// Timestamp is when the notification was generated.
	Timestamp time.Time
}

// Observation is an active observation of one resource.
type Observation struct {
	// ID is the unique observation identifier (UUID).
	ID string

	// URI is the observed resource.
	URI model.URI

	// Started is when the observation was established.
	Started time.Time

	// LastNotified is when the last notification was sent.
	LastNotified time.Time

	// Notifications counts the notifications sent, including the initial one.
	Notifications int
}

// Manager tracks observations and produces notifications when polled.
type Manager struct {
	mu sync.Mutex

	config Config
	reg    *model.Registry

	observations map[string]*Observation

	onNotification func(Notification)
	events         log.Logger
	clock          func() time.Time
}

// NewManager creates an observation manager with default configuration.
func NewManager(reg *model.Registry) *Manager {
	return NewManagerWithConfig(reg, DefaultConfig())
}

// NewManagerWithConfig creates an observation manager with custom configuration.
func NewManagerWithConfig(reg *model.Registry, config Config) *Manager {
	if config.MaxObservations <= 0 {
		config.MaxObservations = DefaultMaxObservations
	}
	return &Manager{
		config:       config,
		reg:          reg,
		observations: make(map[string]*Observation),
		events:       log.NoopLogger{},
		clock:        time.Now,
	}
}

// Config returns the manager configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// SetConfig replaces the configuration, e.g. after the server's default
// periods changed.
func (m *Manager) SetConfig(config Config) {
	if config.MaxObservations <= 0 {
		config.MaxObservations = DefaultMaxObservations
	}
	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
}

// SetEventLogger sets the trace event logger.
func (m *Manager) SetEventLogger(logger log.Logger) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	m.mu.Lock()
	m.events = logger
	m.mu.Unlock()
}

// SetClock replaces the time source used by Observe.
func (m *Manager) SetClock(clock func() time.Time) {
	m.mu.Lock()
	m.clock = clock
	m.mu.Unlock()
}

// OnNotification sets the callback for notifications.
func (m *Manager) OnNotification(fn func(Notification)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onNotification = fn
}

// Observe starts observing the readable resource at uri. The current value is
// read, cached and delivered as the initial notification. Observing a
// resource that is already observed refreshes that observation and returns
// its ID.
func (m *Manager) Observe(ctx context.Context, uri model.URI) (string, error) {
	_, r, err := m.reg.Resolve(uri)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", fmt.Errorf("%w: %s is not a resource", ErrNotObservable, uri)
	}
	if !r.CanRead() {
		return "", fmt.Errorf("%w: %s", ErrNotObservable, uri)
	}

	m.mu.Lock()
	existing := m.findLocked(uri)
	if existing == nil && len(m.observations) >= m.config.MaxObservations {
		m.mu.Unlock()
		return "", ErrResourceExhausted
	}
	now := m.clock()
	m.mu.Unlock()

	value, err := m.reg.Read(ctx, uri)
	if err != nil {
		return "", err
	}
	if err := r.UpdateCache(value); err != nil {
		return "", err
	}

	m.mu.Lock()
	obs := m.findLocked(uri)
	if obs == nil {
		if len(m.observations) >= m.config.MaxObservations {
			m.mu.Unlock()
			return "", ErrResourceExhausted
		}
		obs = &Observation{
			ID:      uuid.New().String(),
			URI:     uri,
			Started: now,
		}
		m.observations[obs.ID] = obs
	}
	obs.LastNotified = now
	obs.Notifications++
	onNotify := m.onNotification
	events := m.events
	m.mu.Unlock()

	m.trace(events, obs, log.ObserveStarted, ReasonInitial, len(value), now)
	if onNotify != nil {
		onNotify(Notification{
			ObservationID: obs.ID,
			URI:           uri,
			Value:         value,
			Reason:        ReasonInitial,
			Timestamp:     now,
		})
	}
	return obs.ID, nil
}

// Cancel stops an observation and clears the resource's cache.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	obs, ok := m.observations[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrObservationNotFound, id)
	}
	delete(m.observations, id)
	events := m.events
	now := m.clock()
	m.mu.Unlock()

	if _, r, err := m.reg.Resolve(obs.URI); err == nil && r != nil {
		r.ClearCache()
	}
	m.trace(events, obs, log.ObserveCancelled, ReasonNone, 0, now)
	return nil
}

// Poll evaluates every observation at time now and sends the notifications
// that are due. It returns how many were sent. Observations whose resource
// disappeared are dropped. Read failures are collected and returned after
// all observations were processed.
func (m *Manager) Poll(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	observations := make([]*Observation, 0, len(m.observations))
	for _, obs := range m.observations {
		observations = append(observations, obs)
	}
	onNotify := m.onNotification
	config := m.config
	events := m.events
	m.mu.Unlock()

	slices.SortFunc(observations, func(a, b *Observation) int {
		return a.Started.Compare(b.Started)
	})

	sent := 0
	var errs []error
	for _, obs := range observations {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		o, r, err := m.reg.Resolve(obs.URI)
		if err != nil {
			m.drop(obs.ID)
			m.traceError(events, obs, err, now)
			continue
		}

		value, err := m.reg.Read(ctx, obs.URI)
		if err != nil {
			m.traceError(events, obs, err, now)
			errs = append(errs, fmt.Errorf("observation %s: %w", obs.ID, err))
			continue
		}

		m.mu.Lock()
		since := now.Sub(obs.LastNotified)
		m.mu.Unlock()

		d := config.Evaluate(o, r, value, since)
		if !d.Notify {
			continue
		}
		if err := r.UpdateCache(value); err != nil {
			m.traceError(events, obs, err, now)
			errs = append(errs, fmt.Errorf("observation %s: %w", obs.ID, err))
			continue
		}

		m.mu.Lock()
		obs.LastNotified = now
		obs.Notifications++
		m.mu.Unlock()

		sent++
		m.trace(events, obs, log.ObserveNotified, d.Reason, len(value), now)
		if onNotify != nil {
			onNotify(Notification{
				ObservationID: obs.ID,
				URI:           obs.URI,
				Value:         value,
				Reason:        d.Reason,
				Timestamp:     now,
			})
		}
	}
	return sent, errors.Join(errs...)
}

// Run polls every interval until ctx is done. Poll errors are reported to
// onError when it is non-nil.
func (m *Manager) Run(ctx context.Context, interval time.Duration, onError func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := m.Poll(ctx, now); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// Get returns a copy of an observation.
func (m *Manager) Get(id string) (Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obs, ok := m.observations[id]
	if !ok {
		return Observation{}, fmt.Errorf("%w: %s", ErrObservationNotFound, id)
	}
	return *obs, nil
}

// List returns copies of all observations, oldest first.
func (m *Manager) List() []Observation {
	m.mu.Lock()
	out := make([]Observation, 0, len(m.observations))
	for _, obs := range m.observations {
		out = append(out, *obs)
	}
	m.mu.Unlock()

	slices.SortFunc(out, func(a, b Observation) int {
		return a.Started.Compare(b.Started)
	})
	return out
}

// Count returns the number of active observations.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.observations)
}

// ClearAll removes all observations and clears the cached values of the
// observed resources.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	observations := m.observations
	m.observations = make(map[string]*Observation)
	m.mu.Unlock()

	for _, obs := range observations {
		if _, r, err := m.reg.Resolve(obs.URI); err == nil && r != nil {
			r.ClearCache()
		}
	}
}

func (m *Manager) findLocked(uri model.URI) *Observation {
	for _, obs := range m.observations {
		if obs.URI == uri {
			return obs
		}
	}
	return nil
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	delete(m.observations, id)
	m.mu.Unlock()
}

func (m *Manager) trace(events log.Logger, obs *Observation, action log.ObserveAction, reason Reason, size int, now time.Time) {
	ev := &log.ObserveEvent{
		Action:        action,
		ObservationID: obs.ID,
		Size:          size,
	}
	if reason != ReasonNone {
		ev.Reason = reason.String()
	}
	events.Log(log.Event{
		Timestamp:  now,
		RegistryID: m.reg.ID(),
		Category:   log.CategoryObserve,
		URI:        obs.URI.String(),
		Observe:    ev,
	})
}

func (m *Manager) traceError(events log.Logger, obs *Observation, err error, now time.Time) {
	events.Log(log.Event{
		Timestamp:  now,
		RegistryID: m.reg.ID(),
		Category:   log.CategoryError,
		URI:        obs.URI.String(),
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: "observation " + obs.ID,
		},
	})
}
