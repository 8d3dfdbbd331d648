package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rangefinder"
	"github.com/mklimuk/rangefinder/adapter"
	"github.com/mklimuk/rangefinder/config"
	"github.com/mklimuk/rangefinder/i2c"
	"github.com/mklimuk/rangefinder/lidar"
	"github.com/mklimuk/rangefinder/snsctx"
)

var sensorFlags = []cli.Flag{
	&cli.BoolFlag{Name: "verbose", Usage: "enable verbose logging"},
	&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "yaml configuration file"},
	&cli.StringFlag{Name: "adapter", Aliases: []string{"a"}, Value: config.AdapterMCP2221, Usage: "bus adapter: mcp2221, generic, nanopi or mock"},
	&cli.StringFlag{Name: "device", Usage: "periph bus name for the generic adapter"},
	&cli.IntFlag{Name: "bus", Usage: "bus number for the nanopi adapter"},
	&cli.IntFlag{Name: "index", Value: -1, Usage: "MCP2221 device index when several are attached"},
	&cli.UintFlag{Name: "address", Value: lidar.DefaultAddress, Usage: "7-bit sensor address"},
	&cli.Int64Flag{Name: "speed", Usage: "bus speed in kHz for the generic adapter"},
	&cli.IntFlag{Name: "max-count", Value: 999, Usage: "busy flag polls before giving up"},
	&cli.DurationFlag{Name: "count-delay", Value: 10 * time.Millisecond, Usage: "delay between busy flag polls"},
}

// sensor is the subset of the lidar façade the commands use.
type sensor interface {
	Reset(ctx context.Context) error
	ArmContinuous(ctx context.Context) error
	ReadDistance(ctx context.Context) (int, error)
	ReadVelocity(ctx context.Context) (int, error)
	Status(ctx context.Context) (lidar.Status, error)
}

func commandContext(c *cli.Context) context.Context {
	return snsctx.SetVerbose(c.Context, c.Bool("verbose"))
}

// loadConfig resolves the configuration file and explicitly set flags, flags winning.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.Int("bus")
	}
	if c.IsSet("address") {
		cfg.Address = uint8(c.Uint("address"))
	}
	if c.IsSet("speed") {
		cfg.SpeedKHz = c.Int64("speed")
	}
	if c.IsSet("max-count") {
		cfg.Poll.MaxCount = c.Int("max-count")
	}
	if c.IsSet("count-delay") {
		cfg.Poll.CountDelay = c.Duration("count-delay")
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if c.IsSet("advertise") {
		cfg.Advertise = c.Bool("advertise")
	}
	if c.IsSet("address") && c.Uint("address") > 0x7f {
		return cfg, fmt.Errorf("%w: address %#x is not a 7-bit address", config.ErrInvalidConfig, c.Uint("address"))
	}
	return cfg, cfg.Validate()
}

func openBus(c *cli.Context, cfg config.Config) (rangefinder.I2CBus, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Adapter {
	case config.AdapterMCP2221:
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		if err := a.Init(); err != nil {
			return nil, noop, fmt.Errorf("adapter initialization error: %w", err)
		}
		return a, noop, nil
	case config.AdapterGeneric:
		b, err := i2c.NewGenericBus(cfg.Device)
		if err != nil {
			return nil, noop, err
		}
		if cfg.SpeedKHz > 0 {
			if err := b.SetSpeed(cfg.SpeedKHz); err != nil {
				_ = b.Close()
				return nil, noop, err
			}
		}
		return b, b.Close, nil
	case config.AdapterNanoPi:
		b, err := i2c.NewNanoPiBus(cfg.Bus)
		if err != nil {
			return nil, noop, err
		}
		return b, b.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: adapter %q has no bus", config.ErrInvalidConfig, cfg.Adapter)
}

// openLidar builds the register-level façade on a hardware bus.
func openLidar(c *cli.Context, cfg config.Config) (*lidar.LidarLite, func() error, error) {
	bus, closer, err := openBus(c, cfg)
	if err != nil {
		return nil, closer, err
	}
	var regs rangefinder.RegisterBus = rangefinder.NewAddressedBus(bus)
	if rb, ok := bus.(rangefinder.RegisterBus); ok {
		regs = rb
	}
	d, err := lidar.NewLidarLite(regs,
		lidar.WithAddress(cfg.Address),
		lidar.WithMaxCount(cfg.Poll.MaxCount),
		lidar.WithCountDelay(cfg.Poll.CountDelay),
	)
	if err != nil {
		_ = closer()
		return nil, func() error { return nil }, err
	}
	return d, closer, nil
}

func openSensor(c *cli.Context, cfg config.Config) (sensor, func() error, error) {
	if cfg.Adapter == config.AdapterMock {
		slog.Warn("using simulated rangefinder")
		return simulatedSensor(time.Now()), func() error { return nil }, nil
	}
	return openLidar(c, cfg)
}

// simulatedSensor swings between 50 and 250 cm with a 20 s period.
func simulatedSensor(start time.Time) *lidar.MockRangefinder {
	const period = 20 * time.Second
	phase := func() float64 {
		return 2 * math.Pi * float64(time.Since(start)%period) / float64(period)
	}
	return lidar.NewMockRangefinder(
		func(ctx context.Context) (int, error) {
			return 150 + int(math.Round(100*math.Sin(phase()))), nil
		},
		func(ctx context.Context) (int, error) {
			// centimetres per 100 ms, the sensor's velocity unit in the default mode
			return int(math.Round(100 * 2 * math.Pi / period.Seconds() * math.Cos(phase()) / 10)), nil
		},
	)
}
