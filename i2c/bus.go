package i2c

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/rangefinder"
)

var (
	_ rangefinder.I2CBus      = &GenericBus{}
	_ rangefinder.RegisterBus = &GenericBus{}
)

// GenericBus is a Linux I2C bus (e.g. /dev/i2c-1) driven through periph.io.
// Register reads use a repeated start instead of a separate pointer write.
type GenericBus struct {
	mx  sync.Mutex
	bus i2c.Bus
}

// NewGenericBus opens the named bus; an empty name picks the first one registered.
func NewGenericBus(name string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus %q: %w", name, err)
	}
	return NewBus(bus), nil
}

// NewBus wraps an already opened periph bus.
func NewBus(bus i2c.Bus) *GenericBus {
	return &GenericBus{bus: bus}
}

// SetSpeed changes the bus clock. LIDAR-Lite devices accept up to 400 kHz.
func (b *GenericBus) SetSpeed(khz int64) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	if err := b.bus.SetSpeed(physic.Frequency(khz) * physic.KiloHertz); err != nil {
		return fmt.Errorf("could not set i2c bus speed to %d kHz: %w", khz, err)
	}
	return nil
}

func (b *GenericBus) tx(ctx context.Context, address byte, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mx.Lock()
	defer b.mx.Unlock()
	dev := i2c.Dev{Bus: b.bus, Addr: uint16(address)}
	return dev.Tx(w, r)
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := b.tx(ctx, address, nil, buffer); err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := b.tx(ctx, address, buffer, nil); err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) ReadRegister(ctx context.Context, device, register byte, buffer []byte) error {
	if err := b.tx(ctx, device, []byte{register}, buffer); err != nil {
		return fmt.Errorf("could not read register %#x on %#x: %w", register, device, err)
	}
	return nil
}

func (b *GenericBus) WriteRegister(ctx context.Context, device, register byte, data []byte) error {
	msg := append([]byte{register}, data...)
	if err := b.tx(ctx, device, msg, nil); err != nil {
		return fmt.Errorf("could not write register %#x on %#x: %w", register, device, err)
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	if c, ok := b.bus.(i2c.BusCloser); ok {
		return c.Close()
	}
	return nil
}
