package observe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/lwm2m"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Default observation limits.
const (
	DefaultMinPeriod       = 1 * time.Second
	DefaultMaxObservations = 32
)

// Config holds observation manager configuration.
type Config struct {
	// DefaultMinPeriod applies when neither resource nor object sets pmin.
	DefaultMinPeriod time.Duration

	// DefaultMaxPeriod applies when neither resource nor object sets pmax.
	// Zero disables periodic notifications.
	DefaultMaxPeriod time.Duration

	// MaxObservations is the maximum number of concurrent observations.
	MaxObservations int
}

// DefaultConfig returns the default observation configuration.
func DefaultConfig() Config {
	return Config{
		DefaultMinPeriod: DefaultMinPeriod,
		MaxObservations:  DefaultMaxObservations,
	}
}

// ConfigFromServer returns DefaultConfig with the default periods taken from
// the server object instance's Default Minimum Period and Default Maximum
// Period resources, when present.
func ConfigFromServer(ctx context.Context, reg *model.Registry, serverInstance uint16) (Config, error) {
	cfg := DefaultConfig()
	uri := model.ObjectURI(uint16(lwm2m.ObjectServer), serverInstance)

	periods := []struct {
		rid uint16
		dst *time.Duration
	}{
		{lwm2m.ServerDefaultMinPeriod, &cfg.DefaultMinPeriod},
		{lwm2m.ServerDefaultMaxPeriod, &cfg.DefaultMaxPeriod},
	}
	for _, p := range periods {
		raw, err := reg.Read(ctx, model.ResourceURI(uri.ObjectID, uri.InstanceID, p.rid))
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrOperationNotSupported) {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("server %d resource %d: %w", serverInstance, p.rid, err)
		}
		secs, err := wire.BytesToInt(raw)
		if err != nil {
			return cfg, fmt.Errorf("server %d resource %d: %w", serverInstance, p.rid, err)
		}
		if secs < 0 {
			return cfg, fmt.Errorf("server %d resource %d: negative period %d", serverInstance, p.rid, secs)
		}
		*p.dst = time.Duration(secs) * time.Second
	}
	return cfg, nil
}
