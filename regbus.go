package rangefinder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/rangefinder/snsctx"
)

var _ RegisterBus = &AddressedBus{}

// AddressedBus implements register access on top of a raw I2C transport by
// writing the register pointer before every transfer.
type AddressedBus struct {
	mx  sync.Mutex
	bus I2CBus
}

func NewAddressedBus(bus I2CBus) *AddressedBus {
	return &AddressedBus{bus: bus}
}

func (b *AddressedBus) ReadRegister(ctx context.Context, device, register byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	err := b.bus.WriteToAddr(ctx, device, []byte{register})
	if err != nil {
		return fmt.Errorf("could not set register pointer %#x on %#x: %w", register, device, err)
	}
	err = b.bus.ReadFromAddr(ctx, device, buffer)
	if err != nil {
		return fmt.Errorf("could not read register %#x on %#x: %w", register, device, err)
	}
	slog.Debug("register read", append(snsctx.Attrs(ctx), "device", device, "register", register, "data", buffer)...)
	return nil
}

func (b *AddressedBus) WriteRegister(ctx context.Context, device, register byte, data []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	msg := make([]byte, 0, len(data)+1)
	msg = append(msg, register)
	msg = append(msg, data...)
	err := b.bus.WriteToAddr(ctx, device, msg)
	if err != nil {
		return fmt.Errorf("could not write register %#x on %#x: %w", register, device, err)
	}
	slog.Debug("register write", append(snsctx.Attrs(ctx), "device", device, "register", register, "data", data)...)
	return nil
}

// Release frees the underlying transport.
func (b *AddressedBus) Release(ctx context.Context) error {
	return b.bus.Release(ctx)
}
