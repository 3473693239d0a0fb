package examples

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/lwm2m-agent/lwm2mcore/pkg/lwm2m"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/objdef"
)

// ErrPackageExists is returned when a package name is already installed.
var ErrPackageExists = errors.New("software package already exists")

// SoftwareState is the value of the software Update State resource.
type SoftwareState int64

// Software update states.
const (
	SoftwareInitial SoftwareState = iota
	SoftwareDownloadStarted
	SoftwareDownloaded
	SoftwareDelivered
	SoftwareInstalled
)

// Software update results.
const (
	SoftwareResultInitial     int64 = 0
	SoftwareResultDownloading int64 = 1
	SoftwareResultInstalled   int64 = 2
	SoftwareResultDelivered   int64 = 3
	SoftwareResultUninstalled int64 = 4
	SoftwareResultNoStorage   int64 = 50
)

// SoftwarePackage is one software update object instance.
type SoftwarePackage struct {
	mu sync.Mutex

	object     *model.Object
	instanceID uint16
	name       string
	version    string
	data       []byte
	digest     [blake2b.Size256]byte
	state      SoftwareState
	result     int64
	active     bool
}

// InstanceID returns the object instance ID of the package.
func (p *SoftwarePackage) InstanceID() uint16 { return p.instanceID }

// Name returns the package name.
func (p *SoftwarePackage) Name() string { return p.name }

// State returns the current update state.
func (p *SoftwarePackage) State() SoftwareState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Digest returns the hex BLAKE2b-256 digest of the delivered package, or ""
// when none is held.
func (p *SoftwarePackage) Digest() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return ""
	}
	return hex.EncodeToString(p.digest[:])
}

// Active reports whether the package is activated.
func (p *SoftwarePackage) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// SoftwareUpdate manages the instances of the LwM2M Software Update object
// (9). Instances are created when a package is announced and removed when it
// is dropped. Instances removed from the registry directly are forgotten.
type SoftwareUpdate struct {
	mu sync.Mutex

	reg      *model.Registry
	def      *objdef.ObjectDef
	packages map[uint16]*SoftwarePackage

	// MaxPackageSize limits delivered packages; zero means unlimited.
	MaxPackageSize int
}

// NewSoftwareUpdate creates a manager that adds instances to reg.
func NewSoftwareUpdate(reg *model.Registry) (*SoftwareUpdate, error) {
	def, err := objdef.Load(uint16(lwm2m.ObjectSoftwareUpdate))
	if err != nil {
		return nil, err
	}
	return &SoftwareUpdate{
		reg:      reg,
		def:      def,
		packages: make(map[uint16]*SoftwarePackage),
	}, nil
}

// Add creates a new object instance for the named package, using the
// lowest free instance ID.
func (s *SoftwareUpdate) Add(name, version string) (*SoftwarePackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	for _, p := range s.packages {
		if p.name == name {
			return nil, fmt.Errorf("%w: %s", ErrPackageExists, name)
		}
	}

	iid, err := s.freeInstanceLocked()
	if err != nil {
		return nil, err
	}

	p := &SoftwarePackage{instanceID: iid, name: name, version: version}
	handlers := map[uint16]model.Handlers{
		lwm2m.SoftwarePackageName: {
			Read: readString(&p.mu, func() string { return p.name }),
		},
		lwm2m.SoftwarePackageVersion: {
			Read: readString(&p.mu, func() string { return p.version }),
		},
		lwm2m.SoftwarePackage: {
			Write: model.WriteFunc(func(_ context.Context, _ model.URI, v []byte) error {
				return s.deliver(p, v)
			}),
		},
		lwm2m.SoftwareInstall: {
			Execute: model.ExecuteFunc(p.install),
		},
		lwm2m.SoftwareUninstall: {
			Execute: model.ExecuteFunc(p.uninstall),
		},
		lwm2m.SoftwareUpdateState: {
			Read: readInt(&p.mu, func() int64 { return int64(p.state) }),
		},
		lwm2m.SoftwareUpdateResult: {
			Read: readInt(&p.mu, func() int64 { return p.result }),
		},
		lwm2m.SoftwareActivate: {
			Execute: model.ExecuteFunc(p.activate),
		},
		lwm2m.SoftwareDeactivate: {
			Execute: model.ExecuteFunc(p.deactivate),
		},
		lwm2m.SoftwareActivationState: {
			Read: readBool(&p.mu, func() bool { return p.active }),
		},
	}
	p.object, err = s.def.Instantiate(s.reg, iid, handlers)
	if err != nil {
		return nil, err
	}
	s.packages[iid] = p
	return p, nil
}

// Get returns the package of instance iid.
func (s *SoftwareUpdate) Get(iid uint16) (*SoftwarePackage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	p, ok := s.packages[iid]
	return p, ok
}

// Len returns the number of package instances.
func (s *SoftwareUpdate) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.packages)
}

// Remove deletes the instance of package iid from the registry.
func (s *SoftwareUpdate) Remove(iid uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	if _, ok := s.packages[iid]; !ok {
		return fmt.Errorf("%w: software package instance %d", model.ErrNotFound, iid)
	}
	if err := s.reg.RemoveObject(uint16(lwm2m.ObjectSoftwareUpdate), iid); err != nil {
		return err
	}
	delete(s.packages, iid)
	return nil
}

// pruneLocked forgets packages whose instance is no longer the one registered
// under its ID.
func (s *SoftwareUpdate) pruneLocked() {
	for iid, p := range s.packages {
		o, err := s.reg.FindObject(uint16(lwm2m.ObjectSoftwareUpdate), iid)
		if err != nil || o != p.object {
			delete(s.packages, iid)
		}
	}
}

// freeInstanceLocked returns the lowest instance ID unused in the registry.
func (s *SoftwareUpdate) freeInstanceLocked() (uint16, error) {
	for iid := range uint32(0xFFFF) {
		if _, err := s.reg.FindObject(uint16(lwm2m.ObjectSoftwareUpdate), uint16(iid)); errors.Is(err, model.ErrNotFound) {
			return uint16(iid), nil
		}
	}
	return 0, errors.New("no free software update instance")
}

func (s *SoftwareUpdate) deliver(p *SoftwarePackage, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != SoftwareInitial {
		return fmt.Errorf("%w: package write in state %d", model.ErrOperationNotSupported, p.state)
	}
	if s.MaxPackageSize > 0 && len(data) > s.MaxPackageSize {
		p.result = SoftwareResultNoStorage
		return nil
	}
	p.data = append([]byte(nil), data...)
	p.digest = blake2b.Sum256(data)
	p.state = SoftwareDelivered
	p.result = SoftwareResultDelivered
	return nil
}

func (p *SoftwarePackage) install(context.Context, model.URI, []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != SoftwareDelivered {
		return fmt.Errorf("%w: install in state %d", model.ErrOperationNotSupported, p.state)
	}
	p.state = SoftwareInstalled
	p.result = SoftwareResultInstalled
	return nil
}

func (p *SoftwarePackage) uninstall(context.Context, model.URI, []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = SoftwareInitial
	p.result = SoftwareResultUninstalled
	p.active = false
	p.data = nil
	return nil
}

func (p *SoftwarePackage) activate(context.Context, model.URI, []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != SoftwareInstalled {
		return fmt.Errorf("%w: activate in state %d", model.ErrOperationNotSupported, p.state)
	}
	p.active = true
	return nil
}

func (p *SoftwarePackage) deactivate(context.Context, model.URI, []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != SoftwareInstalled {
		return fmt.Errorf("%w: deactivate in state %d", model.ErrOperationNotSupported, p.state)
	}
	p.active = false
	return nil
}
