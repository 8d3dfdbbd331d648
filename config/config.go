package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is injected at build time by the dev tool.
var Version = "dev"

const (
	AdapterMCP2221 = "mcp2221"
	AdapterGeneric = "generic"
	AdapterNanoPi  = "nanopi"
	AdapterMock    = "mock"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Poll struct {
	MaxCount   int           `yaml:"max_count"`
	CountDelay time.Duration `yaml:"count_delay"`
}

type Config struct {
	Listen  string `yaml:"listen"`
	Adapter string `yaml:"adapter"`
	// Device is the periph bus name for the generic adapter, e.g. "/dev/i2c-1".
	Device    string `yaml:"device"`
	Bus       int    `yaml:"bus"`
	Address   uint8  `yaml:"address"`
	SpeedKHz  int64  `yaml:"speed_khz"`
	Poll      Poll   `yaml:"poll"`
	Advertise bool   `yaml:"advertise"`
}

func Default() Config {
	return Config{
		Listen:  ":5000",
		Adapter: AdapterMCP2221,
		Bus:     0,
		Address: 0x62,
		Poll: Poll{
			MaxCount:   999,
			CountDelay: 10 * time.Millisecond,
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterMCP2221, AdapterGeneric, AdapterNanoPi, AdapterMock:
	default:
		return fmt.Errorf("%w: unknown adapter %q", ErrInvalidConfig, c.Adapter)
	}
	if c.Address > 0x7f {
		return fmt.Errorf("%w: address %#x is not a 7-bit address", ErrInvalidConfig, c.Address)
	}
	if c.Poll.MaxCount < 1 {
		return fmt.Errorf("%w: poll max_count must be positive", ErrInvalidConfig)
	}
	if c.Poll.CountDelay < 0 {
		return fmt.Errorf("%w: poll count_delay must not be negative", ErrInvalidConfig)
	}
	return nil
}
