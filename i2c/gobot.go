package i2c

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gobotI2C "gobot.io/x/gobot/v2/drivers/i2c"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/rangefinder"
)

var _ rangefinder.I2CBus = &GobotBus{}

// GobotBus drives devices through gobot generic I2C drivers, one per device address.
type GobotBus struct {
	mx       sync.Mutex
	adaptor  gobotI2C.Connector
	bus      int
	drivers  map[byte]*gobotI2C.GenericDriver
	finalize func() error
}

// NewNanoPiBus connects the NanoPi NEO I2C adaptor and uses the given bus number.
func NewNanoPiBus(bus int) (*GobotBus, error) {
	npi := nanopi.NewNeoAdaptor()
	err := npi.I2cBusAdaptor.Connect()
	if err != nil {
		return nil, fmt.Errorf("adaptor connect error: %w", err)
	}
	b := NewGobotBus(npi, bus)
	b.finalize = npi.I2cBusAdaptor.Finalize
	return b, nil
}

// NewGobotBus wraps an already connected gobot I2C connector.
func NewGobotBus(adaptor gobotI2C.Connector, bus int) *GobotBus {
	return &GobotBus{
		adaptor: adaptor,
		bus:     bus,
		drivers: make(map[byte]*gobotI2C.GenericDriver),
	}
}

func (b *GobotBus) driver(address byte) (*gobotI2C.GenericDriver, error) {
	if d, ok := b.drivers[address]; ok {
		return d, nil
	}
	d := gobotI2C.NewGenericDriver(b.adaptor, fmt.Sprintf("dev-%#x", address), int(address), func(c gobotI2C.Config) {
		c.SetBus(b.bus)
	})
	if err := d.Start(); err != nil {
		return nil, fmt.Errorf("could not start driver for %#x: %w", address, err)
	}
	b.drivers[address] = d
	return d, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	d, err := b.driver(address)
	if err != nil {
		return err
	}
	if err := d.Read(buffer); err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	d, err := b.driver(address)
	if err != nil {
		return err
	}
	if err := d.Write(buffer); err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close halts all drivers and finalizes the adaptor if this bus connected it.
func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var errs []error
	for addr, d := range b.drivers {
		if err := d.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("could not halt driver %#x: %w", addr, err))
		}
		delete(b.drivers, addr)
	}
	if b.finalize != nil {
		if err := b.finalize(); err != nil {
			errs = append(errs, fmt.Errorf("could not finalize adaptor: %w", err))
		}
	}
	return errors.Join(errs...)
}
