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

// FirmwareState is the value of the firmware update State resource.
type FirmwareState int64

// Firmware update states.
const (
	FirmwareIdle FirmwareState = iota
	FirmwareDownloading
	FirmwareDownloaded
	FirmwareUpdating
)

// String returns the state name.
func (s FirmwareState) String() string {
	switch s {
	case FirmwareIdle:
		return "IDLE"
	case FirmwareDownloading:
		return "DOWNLOADING"
	case FirmwareDownloaded:
		return "DOWNLOADED"
	case FirmwareUpdating:
		return "UPDATING"
	default:
		return fmt.Sprintf("STATE_%d", int64(s))
	}
}

// FirmwareResult is the value of the firmware Update Result resource.
type FirmwareResult int64

// Firmware update results.
const (
	ResultInitial FirmwareResult = iota
	ResultSuccess
	ResultNotEnoughFlash
	ResultOutOfRAM
	ResultConnectionLost
	ResultIntegrityFailure
	ResultUnsupportedPackage
	ResultInvalidURI
	ResultUpdateFailed
	ResultUnsupportedProtocol
)

// Firmware delivery methods.
const (
	DeliveryPull int64 = 0
	DeliveryPush int64 = 1
	DeliveryBoth int64 = 2
)

// FirmwareConfig contains configuration for creating a Firmware object.
type FirmwareConfig struct {
	// MaxPackageSize limits pushed packages; zero means unlimited.
	MaxPackageSize int

	// Fetch downloads a package from a URI. Without it only push delivery
	// is offered.
	Fetch func(ctx context.Context, uri string) ([]byte, error)

	// Verify checks the BLAKE2b-256 digest of a package before it is
	// accepted. Nil accepts every package.
	Verify func(digest [blake2b.Size256]byte) bool

	// Apply installs a downloaded package and returns its name and version.
	Apply func(ctx context.Context, pkg []byte) (name, version string, err error)

	// Protocols lists supported download protocols (0 CoAP, 1 CoAPS, 2 HTTP, 3 HTTPS).
	Protocols []int64
}

// Firmware is the single instance of the LwM2M Firmware Update object (5).
type Firmware struct {
	mu sync.Mutex

	object *model.Object
	cfg    FirmwareConfig

	state      FirmwareState
	result     FirmwareResult
	packageURI string
	pkg        []byte
	digest     [blake2b.Size256]byte
	name       string
	version    string
}

// NewFirmware creates the firmware update object and adds it to reg.
func NewFirmware(reg *model.Registry, cfg FirmwareConfig) (*Firmware, error) {
	def, err := objdef.Load(uint16(lwm2m.ObjectFirmwareUpdate))
	if err != nil {
		return nil, err
	}
	f := &Firmware{cfg: cfg}

	delivery := DeliveryPush
	if cfg.Fetch != nil {
		delivery = DeliveryBoth
	}

	handlers := map[uint16]model.Handlers{
		lwm2m.FirmwarePackage: {
			Write: model.WriteFunc(f.writePackage),
		},
		lwm2m.FirmwarePackageURI: {
			Read:  readString(&f.mu, func() string { return f.packageURI }),
			Write: model.WriteFunc(f.writePackageURI),
		},
		lwm2m.FirmwareUpdate: {
			Execute: model.ExecuteFunc(f.update),
		},
		lwm2m.FirmwareState: {
			Read: readInt(&f.mu, func() int64 { return int64(f.state) }),
		},
		lwm2m.FirmwareUpdateResult: {
			Read: readInt(&f.mu, func() int64 { return int64(f.result) }),
		},
		lwm2m.FirmwarePackageName: {
			Read: readString(&f.mu, func() string { return f.name }),
		},
		lwm2m.FirmwarePackageVersion: {
			Read: readString(&f.mu, func() string { return f.version }),
		},
		lwm2m.FirmwareDeliveryMethod: {
			Read: readInt(&f.mu, func() int64 { return delivery }),
		},
	}

	f.object, err = def.Instantiate(reg, 0, handlers)
	if err != nil {
		return nil, err
	}
	for i, p := range cfg.Protocols {
		h := model.Handlers{Read: readInt(&f.mu, func() int64 { return p })}
		if _, err := def.AddResourceInstance(reg, f.object, lwm2m.FirmwareProtocolSupport, uint16(i), h); err != nil {
			_ = reg.RemoveObject(f.object.ID(), f.object.InstanceID())
			return nil, fmt.Errorf("protocol %d: %w", p, err)
		}
	}
	return f, nil
}

// Object returns the registry object backing the firmware update.
func (f *Firmware) Object() *model.Object {
	return f.object
}

// State returns the current update state.
func (f *Firmware) State() FirmwareState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the result of the last download or update.
func (f *Firmware) Result() FirmwareResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Digest returns the hex BLAKE2b-256 digest of the downloaded package, or ""
// when no package is held.
func (f *Firmware) Digest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pkg == nil {
		return ""
	}
	return hex.EncodeToString(f.digest[:])
}

// writePackage accepts a pushed package. A single zero byte or an empty
// value resets the state machine.
func (f *Firmware) writePackage(_ context.Context, _ model.URI, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(value) == 0 || (len(value) == 1 && value[0] == 0) {
		f.reset()
		return nil
	}
	if f.state != FirmwareIdle {
		return fmt.Errorf("%w: package write in state %s", model.ErrOperationNotSupported, f.state)
	}
	f.store(value)
	return nil
}

// writePackageURI starts a pull download. An empty URI resets the state
// machine.
func (f *Firmware) writePackageURI(ctx context.Context, _ model.URI, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := string(value)
	if uri == "" {
		f.reset()
		return nil
	}
	if f.state != FirmwareIdle {
		return fmt.Errorf("%w: package URI write in state %s", model.ErrOperationNotSupported, f.state)
	}
	if len(uri) > lwm2m.ServerURIMaxLen {
		f.result = ResultInvalidURI
		return nil
	}
	if f.cfg.Fetch == nil {
		f.result = ResultUnsupportedProtocol
		return nil
	}

	f.packageURI = uri
	f.state = FirmwareDownloading
	data, err := f.cfg.Fetch(ctx, uri)
	if err != nil {
		f.state = FirmwareIdle
		f.result = ResultConnectionLost
		return contextErr(err)
	}
	f.store(data)
	return nil
}

// store digests and keeps a package. Called with mu held.
func (f *Firmware) store(data []byte) {
	if f.cfg.MaxPackageSize > 0 && len(data) > f.cfg.MaxPackageSize {
		f.state = FirmwareIdle
		f.result = ResultNotEnoughFlash
		return
	}
	digest := blake2b.Sum256(data)
	if f.cfg.Verify != nil && !f.cfg.Verify(digest) {
		f.state = FirmwareIdle
		f.result = ResultIntegrityFailure
		return
	}
	f.pkg = append([]byte(nil), data...)
	f.digest = digest
	f.state = FirmwareDownloaded
	f.result = ResultInitial
}

func (f *Firmware) reset() {
	f.state = FirmwareIdle
	f.result = ResultInitial
	f.packageURI = ""
	f.pkg = nil
	f.digest = [blake2b.Size256]byte{}
}

func (f *Firmware) update(ctx context.Context, _ model.URI, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != FirmwareDownloaded {
		return fmt.Errorf("%w: update in state %s", model.ErrOperationNotSupported, f.state)
	}
	f.state = FirmwareUpdating

	var (
		name, version string
		err           error
	)
	if f.cfg.Apply != nil {
		name, version, err = f.cfg.Apply(ctx, f.pkg)
	}
	f.state = FirmwareIdle
	if err != nil {
		f.result = ResultUpdateFailed
		return contextErr(err)
	}
	f.result = ResultSuccess
	f.name = name
	f.version = version
	f.pkg = nil
	return nil
}

// contextErr returns err when it reports cancellation. Other failures are
// reported through the Update Result resource only.
func contextErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
