package rangefinder

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus is a raw transport able to address 7-bit devices.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// RegisterBus reads and writes byte-addressed registers of a device.
type RegisterBus interface {
	ReadRegister(ctx context.Context, device, register byte, buffer []byte) error
	WriteRegister(ctx context.Context, device, register byte, data []byte) error
}
