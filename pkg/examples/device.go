package examples

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/lwm2m"
	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/objdef"
)

// Power source types reported by Available Power Sources.
const (
	PowerDC       int64 = 0
	PowerInternal int64 = 1
	PowerExternal int64 = 2
	PowerPoE      int64 = 4
	PowerUSB      int64 = 5
	PowerAC       int64 = 6
	PowerSolar    int64 = 7
)

// Error codes reported by the Error Code resource.
const (
	ErrorNone          int64 = 0
	ErrorLowBattery    int64 = 1
	ErrorExternalPower int64 = 2
	ErrorGPSFailure    int64 = 3
	ErrorLowSignal     int64 = 4
	ErrorOutOfMemory   int64 = 5
)

// PowerSource describes one power source of the device.
type PowerSource struct {
	Type      int64
	VoltageMV int64
	CurrentMA int64
}

// DeviceConfig contains configuration for creating a Device.
type DeviceConfig struct {
	Manufacturer      string
	ModelNumber       string
	SerialNumber      string
	FirmwareVersion   string
	SupportedBindings string
	Timezone          string
	UTCOffset         string

	PowerSources []PowerSource

	// OnReboot is called when the reboot resource is executed.
	OnReboot func()

	// OnFactoryReset is called when the factory reset resource is executed.
	OnFactoryReset func()
}

// Device is the single instance of the LwM2M Device object (3).
type Device struct {
	mu sync.Mutex

	object *model.Object
	cfg    DeviceConfig

	batteryLevel int64
	memoryFree   int64
	errorCode    int64
	clockOffset  time.Duration
	reboots      int
	now          func() time.Time
}

// NewDevice creates the device object and adds it to reg.
func NewDevice(reg *model.Registry, cfg DeviceConfig) (*Device, error) {
	def, err := objdef.Load(uint16(lwm2m.ObjectDevice))
	if err != nil {
		return nil, err
	}
	if cfg.SupportedBindings == "" {
		cfg.SupportedBindings = "U"
	}
	d := &Device{cfg: cfg, now: time.Now}

	static := func(v string) model.Handlers {
		return model.Handlers{Read: readString(&d.mu, func() string { return v })}
	}
	handlers := map[uint16]model.Handlers{
		lwm2m.DeviceManufacturer:    static(cfg.Manufacturer),
		lwm2m.DeviceModelNumber:     static(cfg.ModelNumber),
		lwm2m.DeviceSerialNumber:    static(cfg.SerialNumber),
		lwm2m.DeviceFirmwareVersion: static(cfg.FirmwareVersion),
		lwm2m.DeviceReboot: {
			Execute: model.ExecuteFunc(d.reboot),
		},
		lwm2m.DeviceFactoryReset: {
			Execute: model.ExecuteFunc(d.factoryReset),
		},
		lwm2m.DeviceBatteryLevel: {
			Read: readInt(&d.mu, func() int64 { return d.batteryLevel }),
		},
		lwm2m.DeviceMemoryFree: {
			Read: readInt(&d.mu, func() int64 { return d.memoryFree }),
		},
		lwm2m.DeviceErrorCode: {
			Read: readInt(&d.mu, func() int64 { return d.errorCode }),
		},
		lwm2m.DeviceResetErrorCode: {
			Execute: model.ExecuteFunc(d.resetErrorCode),
		},
		lwm2m.DeviceCurrentTime: {
			Read:  readInt(&d.mu, func() int64 { return d.currentTime().Unix() }),
			Write: writeInt(&d.mu, d.setCurrentTime),
		},
		lwm2m.DeviceUTCOffset: {
			Read:  readString(&d.mu, func() string { return d.cfg.UTCOffset }),
			Write: writeString(&d.mu, func(v string) error { d.cfg.UTCOffset = v; return nil }),
		},
		lwm2m.DeviceTimezone: {
			Read:  readString(&d.mu, func() string { return d.cfg.Timezone }),
			Write: writeString(&d.mu, func(v string) error { d.cfg.Timezone = v; return nil }),
		},
		lwm2m.DeviceSupportedBindings: static(cfg.SupportedBindings),
	}

	d.object, err = def.Instantiate(reg, 0, handlers)
	if err != nil {
		return nil, err
	}

	for i, ps := range cfg.PowerSources {
		riid := uint16(i)
		values := map[uint16]int64{
			lwm2m.DeviceAvailPowerSources:  ps.Type,
			lwm2m.DevicePowerSourceVoltage: ps.VoltageMV,
			lwm2m.DevicePowerSourceCurrent: ps.CurrentMA,
		}
		for rid, v := range values {
			h := model.Handlers{Read: readInt(&d.mu, func() int64 { return v })}
			if _, err := def.AddResourceInstance(reg, d.object, rid, riid, h); err != nil {
				_ = reg.RemoveObject(d.object.ID(), d.object.InstanceID())
				return nil, fmt.Errorf("power source %d: %w", i, err)
			}
		}
	}
	return d, nil
}

// Object returns the registry object backing the device.
func (d *Device) Object() *model.Object {
	return d.object
}

// SetBatteryLevel updates the battery level in percent. Levels below 10
// raise the low battery error code.
func (d *Device) SetBatteryLevel(pct int64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("battery level %d out of range", pct)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batteryLevel = pct
	if pct < 10 && d.errorCode == ErrorNone {
		d.errorCode = ErrorLowBattery
	}
	return nil
}

// SetMemoryFree updates the free memory in KB.
func (d *Device) SetMemoryFree(kb int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memoryFree = kb
}

// SetErrorCode sets the current error code.
func (d *Device) SetErrorCode(code int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errorCode = code
}

// ErrorCode returns the current error code.
func (d *Device) ErrorCode() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errorCode
}

// Reboots returns how often the device was rebooted through the registry.
func (d *Device) Reboots() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reboots
}

func (d *Device) currentTime() time.Time {
	return d.now().Add(d.clockOffset)
}

func (d *Device) setCurrentTime(unix int64) error {
	d.clockOffset = time.Unix(unix, 0).Sub(d.now())
	return nil
}

func (d *Device) reboot(context.Context, model.URI, []byte) error {
	d.mu.Lock()
	d.reboots++
	cb := d.cfg.OnReboot
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

func (d *Device) factoryReset(context.Context, model.URI, []byte) error {
	d.mu.Lock()
	d.clockOffset = 0
	d.errorCode = ErrorNone
	cb := d.cfg.OnFactoryReset
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

func (d *Device) resetErrorCode(context.Context, model.URI, []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errorCode = ErrorNone
	return nil
}
