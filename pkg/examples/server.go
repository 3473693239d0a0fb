package examples

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/lwm2m"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/objdef"
)

// ErrInvalidBinding is returned when a binding mode other than U, UQ, S, SQ,
// US or UQS is written.
var ErrInvalidBinding = errors.New("invalid binding mode")

// ServerConfig contains configuration for creating a Server instance.
type ServerConfig struct {
	ShortServerID int64
	Lifetime      time.Duration

	// Default observation periods; zero leaves the resource unset.
	DefaultMinPeriod time.Duration
	DefaultMaxPeriod time.Duration

	DisableTimeout        time.Duration
	StoreNotifWhenOffline bool
	Binding               string
}

// DefaultServerConfig returns a UDP server account with a one day lifetime.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ShortServerID:  1,
		Lifetime:       24 * time.Hour,
		DisableTimeout: 24 * time.Hour,
		Binding:        "U",
	}
}

// Server is an instance of the LwM2M Server object (1).
type Server struct {
	mu sync.Mutex

	object *model.Object
	cfg    ServerConfig

	disabledAt      time.Time
	updateTriggered int
	now             func() time.Time
}

// NewServer creates server instance instanceID and adds it to reg.
func NewServer(reg *model.Registry, instanceID uint16, cfg ServerConfig) (*Server, error) {
	def, err := objdef.Load(uint16(lwm2m.ObjectServer))
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, now: time.Now}

	handlers := map[uint16]model.Handlers{
		lwm2m.ServerShortID: {
			Read: readInt(&s.mu, func() int64 { return s.cfg.ShortServerID }),
		},
		lwm2m.ServerLifetime: {
			Read:  readInt(&s.mu, seconds(&s.cfg.Lifetime)),
			Write: writeInt(&s.mu, setSeconds(&s.cfg.Lifetime)),
		},
		lwm2m.ServerDisable: {
			Execute: model.ExecuteFunc(s.disable),
		},
		lwm2m.ServerDisableTimeout: {
			Read:  readInt(&s.mu, seconds(&s.cfg.DisableTimeout)),
			Write: writeInt(&s.mu, setSeconds(&s.cfg.DisableTimeout)),
		},
		lwm2m.ServerStoreNotifWhenOffline: {
			Read:  readBool(&s.mu, func() bool { return s.cfg.StoreNotifWhenOffline }),
			Write: writeBool(&s.mu, func(v bool) { s.cfg.StoreNotifWhenOffline = v }),
		},
		lwm2m.ServerBinding: {
			Read:  readString(&s.mu, func() string { return s.cfg.Binding }),
			Write: writeString(&s.mu, s.setBinding),
		},
		lwm2m.ServerRegUpdateTrigger: {
			Execute: model.ExecuteFunc(s.triggerUpdate),
		},
	}
	if cfg.DefaultMinPeriod > 0 {
		handlers[lwm2m.ServerDefaultMinPeriod] = model.Handlers{
			Read:  readInt(&s.mu, seconds(&s.cfg.DefaultMinPeriod)),
			Write: writeInt(&s.mu, setSeconds(&s.cfg.DefaultMinPeriod)),
		}
	}
	if cfg.DefaultMaxPeriod > 0 {
		handlers[lwm2m.ServerDefaultMaxPeriod] = model.Handlers{
			Read:  readInt(&s.mu, seconds(&s.cfg.DefaultMaxPeriod)),
			Write: writeInt(&s.mu, setSeconds(&s.cfg.DefaultMaxPeriod)),
		}
	}

	s.object, err = def.Instantiate(reg, instanceID, handlers)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Object returns the registry object backing the server.
func (s *Server) Object() *model.Object {
	return s.object
}

// Config returns the current server settings.
func (s *Server) Config() ServerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Disabled reports whether the server is within its disable timeout.
func (s *Server) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabledAt.IsZero() {
		return false
	}
	return s.now().Before(s.disabledAt.Add(s.cfg.DisableTimeout))
}

// UpdateTriggers returns how often a registration update was requested.
func (s *Server) UpdateTriggers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateTriggered
}

func (s *Server) disable(context.Context, model.URI, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabledAt = s.now()
	return nil
}

func (s *Server) triggerUpdate(context.Context, model.URI, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateTriggered++
	return nil
}

func (s *Server) setBinding(b string) error {
	switch b {
	case "U", "UQ", "S", "SQ", "US", "UQS":
		s.cfg.Binding = b
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidBinding, b)
}

func seconds(d *time.Duration) func() int64 {
	return func() int64 { return int64(*d / time.Second) }
}

func setSeconds(d *time.Duration) func(int64) error {
	return func(v int64) error {
		if v < 0 {
			return fmt.Errorf("%w: negative duration %d", model.ErrInvalidAttribute, v)
		}
		*d = time.Duration(v) * time.Second
		return nil
	}
}
