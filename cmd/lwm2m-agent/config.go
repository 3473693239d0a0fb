package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the agent configuration. It is read from an optional YAML
// file; command-line flags override the file.
type Config struct {
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string `yaml:"log_format" validate:"oneof=text json"`
	Trace       string `yaml:"trace"`
	Interactive bool   `yaml:"interactive"`

	Server   ServerConfig   `yaml:"server"`
	Device   DeviceConfig   `yaml:"device"`
	Firmware FirmwareConfig `yaml:"firmware"`
	Observe  ObserveConfig  `yaml:"observe"`

	// Software lists packages announced as software update instances.
	Software []SoftwareConfig `yaml:"software" validate:"unique=Name,dive"`
}

// ServerConfig configures the server object instance.
type ServerConfig struct {
	ShortServerID    int64         `yaml:"short_server_id" validate:"min=1,max=65534"`
	Lifetime         time.Duration `yaml:"lifetime" validate:"min=1s"`
	DefaultMinPeriod time.Duration `yaml:"default_min_period" validate:"min=0"`
	DefaultMaxPeriod time.Duration `yaml:"default_max_period" validate:"min=0"`
	Binding          string        `yaml:"binding" validate:"oneof=U UQ S SQ US UQS"`
}

// DeviceConfig configures the device object.
type DeviceConfig struct {
	Manufacturer    string `yaml:"manufacturer" validate:"required"`
	Model           string `yaml:"model"`
	Serial          string `yaml:"serial"`
	FirmwareVersion string `yaml:"firmware_version"`
	Timezone        string `yaml:"timezone"`
	BatteryLevel    int64  `yaml:"battery_level" validate:"min=0,max=100"`
}

// FirmwareConfig configures the firmware update object.
type FirmwareConfig struct {
	MaxPackageSize int `yaml:"max_package_size" validate:"min=0"`
}

// ObserveConfig configures the observation manager.
type ObserveConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval" validate:"min=10ms"`
	MaxObservations int           `yaml:"max_observations" validate:"min=1"`
}

// SoftwareConfig announces one software package.
type SoftwareConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version" validate:"required"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Interactive: true,
		Server: ServerConfig{
			ShortServerID: 1,
			Lifetime:      24 * time.Hour,
			Binding:       "U",
		},
		Device: DeviceConfig{
			Manufacturer:    "lwm2mcore",
			Model:           "Reference Agent",
			Serial:          "0001",
			FirmwareVersion: "1.0.0",
			BatteryLevel:    100,
		},
		Observe: ObserveConfig{
			PollInterval:    time.Second,
			MaxObservations: 32,
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Server.DefaultMaxPeriod > 0 && c.Server.DefaultMaxPeriod < c.Server.DefaultMinPeriod {
		return fmt.Errorf("invalid config: server.default_max_period %s below default_min_period %s",
			c.Server.DefaultMaxPeriod, c.Server.DefaultMinPeriod)
	}
	return nil
}
